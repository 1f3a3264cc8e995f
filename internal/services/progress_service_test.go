package services

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/edubridge/engagement-service/internal/cache"
	"github.com/edubridge/engagement-service/internal/events"
	"github.com/edubridge/engagement-service/internal/models"
)

func setupProgressService(t *testing.T) (ProgressService, *fakeRepository, *events.MockEventPublisher) {
	t.Helper()
	repo := newFakeRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	students := NewStudentService(repo, testLogger())
	svc := NewProgressService(repo, students, testLogger(), publisher, cache.NewCacheManager(nil))
	return svc, repo, publisher
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestProgressRecord(t *testing.T) {
	svc, repo, publisher := setupProgressService(t)
	ctx := context.Background()

	teacher := repo.addUser("teacher", models.RoleTeacher)
	parent := repo.addUser("parent", models.RoleParent)
	student := repo.addStudent("student", parent.ID)

	progress, err := svc.Record(ctx, teacher.ID, &models.RecordProgressRequest{
		StudentID:         student.ID,
		Subject:           "Mathematics",
		AcademicYear:      "2025/2026",
		Term:              models.Term1,
		Grade:             78,
		AttendancePresent: 18,
		AttendanceTotal:   20,
		Assessments: []models.RecordAssessmentRequest{
			{Type: models.AssessmentQuiz, Title: "Quiz 1", Score: 8, MaxScore: 10, Date: time.Now()},
		},
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if progress.RecordedBy != teacher.ID {
		t.Errorf("recorded_by = %d, want %d", progress.RecordedBy, teacher.ID)
	}
	if len(progress.Assessments) != 1 {
		t.Errorf("expected 1 assessment, got %d", len(progress.Assessments))
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.EventProgressRecorded {
		t.Fatalf("expected one progress.recorded event, got %+v", published)
	}
}

func TestProgressRecordValidation(t *testing.T) {
	svc, repo, _ := setupProgressService(t)
	ctx := context.Background()

	teacher := repo.addUser("teacher", models.RoleTeacher)
	parent := repo.addUser("parent", models.RoleParent)
	student := repo.addStudent("student", parent.ID)

	// Present above total is impossible.
	_, err := svc.Record(ctx, teacher.ID, &models.RecordProgressRequest{
		StudentID:         student.ID,
		Subject:           "Science",
		AcademicYear:      "2025/2026",
		Term:              models.Term1,
		Grade:             50,
		AttendancePresent: 25,
		AttendanceTotal:   20,
	})
	if !errors.Is(err, ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed for attendance, got %v", err)
	}

	// Score above max is impossible.
	_, err = svc.Record(ctx, teacher.ID, &models.RecordProgressRequest{
		StudentID:    student.ID,
		Subject:      "Science",
		AcademicYear: "2025/2026",
		Term:         models.Term1,
		Grade:        50,
		Assessments: []models.RecordAssessmentRequest{
			{Type: models.AssessmentExam, Title: "Exam", Score: 110, MaxScore: 100, Date: time.Now()},
		},
	})
	if !errors.Is(err, ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed for score, got %v", err)
	}
}

func TestProgressAccessControl(t *testing.T) {
	svc, repo, _ := setupProgressService(t)
	ctx := context.Background()

	parent := repo.addUser("parent", models.RoleParent)
	otherParent := repo.addUser("otherparent", models.RoleParent)
	teacher := repo.addUser("teacher", models.RoleTeacher)

	ownChild := repo.addStudent("own", parent.ID)
	otherChild := repo.addStudent("other", otherParent.ID)

	// Parent with children [ownChild] asking for otherChild is refused.
	if _, err := svc.GetOverallProgress(ctx, parent.ID, otherChild.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.GetTermReport(ctx, parent.ID, otherChild.ID, "Term 1"); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for report, got %v", err)
	}

	// Own child and teacher access both pass.
	if _, err := svc.GetOverallProgress(ctx, parent.ID, ownChild.ID); err != nil {
		t.Errorf("parent should see own child: %v", err)
	}
	if _, err := svc.GetOverallProgress(ctx, teacher.ID, otherChild.ID); err != nil {
		t.Errorf("teacher should see any student: %v", err)
	}
}

func seedTermRecords(t *testing.T, repo *fakeRepository, teacherID, studentID uint, grades map[string]float64) {
	t.Helper()
	ctx := context.Background()
	for subject, grade := range grades {
		err := repo.Progress().Create(ctx, nil, &models.Progress{
			StudentID:         studentID,
			Subject:           subject,
			AcademicYear:      "2025/2026",
			Term:              models.Term1,
			Grade:             grade,
			AttendancePresent: 16,
			AttendanceTotal:   20,
			RecordedBy:        teacherID,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestTermReportStats(t *testing.T) {
	svc, repo, _ := setupProgressService(t)
	ctx := context.Background()

	teacher := repo.addUser("teacher", models.RoleTeacher)
	parent := repo.addUser("parent", models.RoleParent)
	student := repo.addStudent("student", parent.ID)

	seedTermRecords(t, repo, teacher.ID, student.ID, map[string]float64{
		"Mathematics": 95,
		"English":     40,
		"Science":     30,
	})

	report, err := svc.GetTermReport(ctx, parent.ID, student.ID, "Term 1")
	if err != nil {
		t.Fatalf("GetTermReport failed: %v", err)
	}

	if !almostEqual(report.Stats.TermAverage, 55) {
		t.Errorf("term average = %v, want 55", report.Stats.TermAverage)
	}
	if report.Stats.TotalSubjects != 3 {
		t.Errorf("total subjects = %d, want 3", report.Stats.TotalSubjects)
	}
	// 40 is exactly the passing grade and counts as a pass.
	if report.Stats.PassedSubjects != 2 {
		t.Errorf("passed = %d, want 2", report.Stats.PassedSubjects)
	}
	if len(report.Stats.NeedsImprovement) != 1 {
		t.Fatalf("needs improvement = %d subjects, want 1", len(report.Stats.NeedsImprovement))
	}
	if report.Stats.NeedsImprovement[0].Subject != "Science" {
		t.Errorf("needs improvement subject = %s, want Science", report.Stats.NeedsImprovement[0].Subject)
	}

	if _, err := svc.GetTermReport(ctx, parent.ID, student.ID, "Term 9"); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed for bad term, got %v", err)
	}
}

func TestOverallProgressStats(t *testing.T) {
	svc, repo, _ := setupProgressService(t)
	ctx := context.Background()

	teacher := repo.addUser("teacher", models.RoleTeacher)
	parent := repo.addUser("parent", models.RoleParent)
	student := repo.addStudent("student", parent.ID)

	seedTermRecords(t, repo, teacher.ID, student.ID, map[string]float64{
		"Mathematics": 80,
		"English":     60,
	})

	resp, err := svc.GetOverallProgress(ctx, parent.ID, student.ID)
	if err != nil {
		t.Fatalf("GetOverallProgress failed: %v", err)
	}
	if !almostEqual(resp.Stats.AverageGrade, 70) {
		t.Errorf("average grade = %v, want 70", resp.Stats.AverageGrade)
	}
	if resp.Stats.TotalSubjects != 2 {
		t.Errorf("total subjects = %d, want 2", resp.Stats.TotalSubjects)
	}
	if !almostEqual(resp.Stats.AttendanceAverage, 80) {
		t.Errorf("attendance average = %v, want 80", resp.Stats.AttendanceAverage)
	}
}

func TestSubjectImprovement(t *testing.T) {
	svc, repo, _ := setupProgressService(t)
	ctx := context.Background()

	teacher := repo.addUser("teacher", models.RoleTeacher)
	parent := repo.addUser("parent", models.RoleParent)
	student := repo.addStudent("student", parent.ID)

	// Two Mathematics records across terms, older first.
	base := time.Now().Add(-48 * time.Hour)
	for i, rec := range []struct {
		term  models.Term
		grade float64
	}{
		{models.Term1, 55},
		{models.Term2, 72},
	} {
		err := repo.Progress().Create(ctx, nil, &models.Progress{
			StudentID:    student.ID,
			Subject:      "Mathematics",
			AcademicYear: "2025/2026",
			Term:         rec.term,
			Grade:        rec.grade,
			RecordedBy:   teacher.ID,
			CreatedAt:    base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	resp, err := svc.GetSubjectProgress(ctx, parent.ID, student.ID, "Mathematics")
	if err != nil {
		t.Fatalf("GetSubjectProgress failed: %v", err)
	}
	if !almostEqual(resp.Stats.Improvement, 17) {
		t.Errorf("improvement = %v, want 17", resp.Stats.Improvement)
	}
	if !almostEqual(resp.Stats.HighestGrade, 72) || !almostEqual(resp.Stats.LowestGrade, 55) {
		t.Errorf("extremes = %v/%v, want 72/55", resp.Stats.HighestGrade, resp.Stats.LowestGrade)
	}
}

func TestGetAssessments(t *testing.T) {
	svc, repo, _ := setupProgressService(t)
	ctx := context.Background()

	teacher := repo.addUser("teacher", models.RoleTeacher)
	parent := repo.addUser("parent", models.RoleParent)
	student := repo.addStudent("student", parent.ID)

	err := repo.Progress().Create(ctx, nil, &models.Progress{
		StudentID:    student.ID,
		Subject:      "Science",
		AcademicYear: "2025/2026",
		Term:         models.Term1,
		Grade:        70,
		RecordedBy:   teacher.ID,
		Assessments: []models.ProgressAssessment{
			{Type: models.AssessmentQuiz, Title: "Q1", Score: 8, MaxScore: 10, Date: time.Now()},
			{Type: models.AssessmentTest, Title: "T1", Score: 30, MaxScore: 50, Date: time.Now()},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	resp, err := svc.GetAssessments(ctx, parent.ID, student.ID)
	if err != nil {
		t.Fatalf("GetAssessments failed: %v", err)
	}
	if len(resp.Assessments) != 2 {
		t.Fatalf("expected 2 assessments, got %d", len(resp.Assessments))
	}
	// 80% and 60% average to 70.
	if !almostEqual(resp.Average, 70) {
		t.Errorf("average = %v, want 70", resp.Average)
	}
}

func TestExportTermReport(t *testing.T) {
	svc, repo, _ := setupProgressService(t)
	ctx := context.Background()

	teacher := repo.addUser("teacher", models.RoleTeacher)
	parent := repo.addUser("parent", models.RoleParent)
	student := repo.addStudent("student", parent.ID)

	seedTermRecords(t, repo, teacher.ID, student.ID, map[string]float64{
		"Mathematics": 85,
	})

	data, err := svc.ExportTermReport(ctx, parent.ID, student.ID, "Term 1")
	if err != nil {
		t.Fatalf("ExportTermReport failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected workbook bytes")
	}
	// xlsx files are zip archives.
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Error("workbook does not look like an xlsx archive")
	}

	if _, err := svc.ExportTermReport(ctx, parent.ID, 9999, "Term 1"); err == nil {
		t.Error("expected error for unknown student")
	}
}
