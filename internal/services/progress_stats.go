package services

import (
	"github.com/edubridge/engagement-service/internal/models"
)

// Pure aggregation helpers over progress records. Records arrive from
// the repository newest first; helpers that care about order say so.

// averageGrade returns the mean grade, 0 for no records.
func averageGrade(records []*models.Progress) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += r.Grade
	}
	return sum / float64(len(records))
}

// distinctSubjects counts unique subject names.
func distinctSubjects(records []*models.Progress) int {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		seen[r.Subject] = struct{}{}
	}
	return len(seen)
}

// attendanceAverage returns the mean attendance percentage across
// records that have sessions, 0 when none do.
func attendanceAverage(records []*models.Progress) float64 {
	var sum float64
	var counted int
	for _, r := range records {
		if r.AttendanceTotal > 0 {
			sum += r.AttendancePercentage()
			counted++
		}
	}
	if counted == 0 {
		return 0
	}
	return sum / float64(counted)
}

// gradeExtremes returns the highest and lowest grade, both 0 for no
// records.
func gradeExtremes(records []*models.Progress) (highest, lowest float64) {
	if len(records) == 0 {
		return 0, 0
	}
	highest, lowest = records[0].Grade, records[0].Grade
	for _, r := range records[1:] {
		if r.Grade > highest {
			highest = r.Grade
		}
		if r.Grade < lowest {
			lowest = r.Grade
		}
	}
	return highest, lowest
}

// subjectImprovement is newest grade minus oldest grade. Records must
// be newest first; fewer than two records means no trend, 0.
func subjectImprovement(records []*models.Progress) float64 {
	if len(records) < 2 {
		return 0
	}
	return records[0].Grade - records[len(records)-1].Grade
}

// passFailPartition counts passing subjects and collects the failing
// ones for the report's improvement list.
func passFailPartition(records []*models.Progress) (passed int, needsImprovement []models.SubjectGrade) {
	needsImprovement = []models.SubjectGrade{}
	for _, r := range records {
		if r.Grade >= models.PassingGrade {
			passed++
		} else {
			needsImprovement = append(needsImprovement, models.SubjectGrade{
				Subject: r.Subject,
				Grade:   r.Grade,
			})
		}
	}
	return passed, needsImprovement
}
