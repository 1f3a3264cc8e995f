package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/edubridge/engagement-service/internal/cache"
	"github.com/edubridge/engagement-service/internal/events"
	"github.com/edubridge/engagement-service/internal/models"
	"github.com/edubridge/engagement-service/internal/repositories"
	"github.com/edubridge/engagement-service/internal/validator"
)

// progressService implements ProgressService
type progressService struct {
	repo           repositories.Repository
	students       StudentService
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
	cacheManager   *cache.CacheManager
}

// NewProgressService creates a new progress service
func NewProgressService(
	repo repositories.Repository,
	students StudentService,
	logger *slog.Logger,
	eventPublisher events.EventPublisher,
	cacheManager *cache.CacheManager,
) ProgressService {
	return &progressService{
		repo:           repo,
		students:       students,
		logger:         logger,
		validator:      validator.New(),
		eventPublisher: eventPublisher,
		cacheManager:   cacheManager,
	}
}

// Record stores a subject record with its assessments.
func (s *progressService) Record(ctx context.Context, teacherID uint, req *models.RecordProgressRequest) (*models.Progress, error) {
	if errs := s.validator.ValidateProgressRecord(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	exists, err := s.repo.Student().Exists(ctx, nil, req.StudentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check student: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: student %d", ErrNotFound, req.StudentID)
	}

	progress := &models.Progress{
		StudentID:         req.StudentID,
		Subject:           req.Subject,
		AcademicYear:      req.AcademicYear,
		Term:              req.Term,
		Grade:             req.Grade,
		AttendancePresent: req.AttendancePresent,
		AttendanceTotal:   req.AttendanceTotal,
		TeacherRemarks:    req.TeacherRemarks,
		RecordedBy:        teacherID,
	}

	for _, a := range req.Assessments {
		progress.Assessments = append(progress.Assessments, models.ProgressAssessment{
			Type:     a.Type,
			Title:    a.Title,
			Score:    a.Score,
			MaxScore: a.MaxScore,
			Date:     a.Date,
			Feedback: a.Feedback,
		})
	}

	if err := s.repo.Progress().Create(ctx, nil, progress); err != nil {
		return nil, fmt.Errorf("failed to create progress record: %w", err)
	}

	cache.InvalidateStudentStats(ctx, s.cacheManager, req.StudentID)

	event := events.NewEvent(events.EventProgressRecorded, events.ProgressRecordedEvent{
		ProgressID: progress.ID,
		StudentID:  progress.StudentID,
		Subject:    progress.Subject,
		Term:       string(progress.Term),
	})
	if err := s.eventPublisher.Publish(ctx, events.TopicProgress, event); err != nil {
		s.logger.Error("Failed to publish progress.recorded event", "error", err, "progress_id", progress.ID)
	}

	s.logger.Info("Progress recorded",
		"progress_id", progress.ID,
		"student_id", progress.StudentID,
		"subject", progress.Subject,
		"term", progress.Term)

	return progress, nil
}

// authorize resolves the caller's right to read the student's records.
func (s *progressService) authorize(ctx context.Context, userID, studentID uint) error {
	allowed, err := s.students.CanViewStudent(ctx, userID, studentID)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("%w: student %d", ErrForbidden, studentID)
	}
	return nil
}

// GetOverallProgress returns every record with cross-subject stats.
func (s *progressService) GetOverallProgress(ctx context.Context, userID, studentID uint) (*models.OverallProgressResponse, error) {
	if err := s.authorize(ctx, userID, studentID); err != nil {
		return nil, err
	}

	records, err := s.repo.Progress().GetByStudent(ctx, nil, studentID, repositories.ProgressFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to get progress records: %w", err)
	}

	resp := &models.OverallProgressResponse{
		Records: dereference(records),
		Stats: models.OverallStats{
			AverageGrade:      averageGrade(records),
			TotalSubjects:     distinctSubjects(records),
			AttendanceAverage: attendanceAverage(records),
		},
	}

	return resp, nil
}

// GetSubjectProgress returns one subject's history with trend stats.
func (s *progressService) GetSubjectProgress(ctx context.Context, userID, studentID uint, subject string) (*models.SubjectProgressResponse, error) {
	if err := s.authorize(ctx, userID, studentID); err != nil {
		return nil, err
	}

	records, err := s.repo.Progress().GetByStudent(ctx, nil, studentID, repositories.ProgressFilters{Subject: &subject})
	if err != nil {
		return nil, fmt.Errorf("failed to get subject records: %w", err)
	}

	highest, lowest := gradeExtremes(records)
	resp := &models.SubjectProgressResponse{
		Subject: subject,
		Records: dereference(records),
		Stats: models.SubjectStats{
			AverageGrade: averageGrade(records),
			HighestGrade: highest,
			LowestGrade:  lowest,
			Improvement:  subjectImprovement(records),
		},
	}

	return resp, nil
}

// GetAttendance returns per-record attendance with the overall average.
func (s *progressService) GetAttendance(ctx context.Context, userID, studentID uint) (*models.AttendanceResponse, error) {
	if err := s.authorize(ctx, userID, studentID); err != nil {
		return nil, err
	}

	records, err := s.repo.Progress().GetByStudent(ctx, nil, studentID, repositories.ProgressFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to get progress records: %w", err)
	}

	resp := &models.AttendanceResponse{
		Records: []models.AttendanceRecord{},
		Average: attendanceAverage(records),
	}
	for _, r := range records {
		resp.Records = append(resp.Records, models.AttendanceRecord{
			Subject:      r.Subject,
			Term:         r.Term,
			AcademicYear: r.AcademicYear,
			Present:      r.AttendancePresent,
			Total:        r.AttendanceTotal,
			Percentage:   r.AttendancePercentage(),
		})
	}

	return resp, nil
}

// GetAssessments flattens every assessment across records.
func (s *progressService) GetAssessments(ctx context.Context, userID, studentID uint) (*models.AssessmentsResponse, error) {
	if err := s.authorize(ctx, userID, studentID); err != nil {
		return nil, err
	}

	records, err := s.repo.Progress().GetByStudent(ctx, nil, studentID, repositories.ProgressFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to get progress records: %w", err)
	}

	resp := &models.AssessmentsResponse{Assessments: []models.AssessmentEntry{}}
	var sum float64
	for _, r := range records {
		for _, a := range r.Assessments {
			percent := 0.0
			if a.MaxScore > 0 {
				percent = a.Score / a.MaxScore * 100
			}
			sum += percent
			resp.Assessments = append(resp.Assessments, models.AssessmentEntry{
				Subject:  r.Subject,
				Term:     r.Term,
				Type:     a.Type,
				Title:    a.Title,
				Score:    a.Score,
				MaxScore: a.MaxScore,
				Percent:  percent,
				Date:     a.Date,
				Feedback: a.Feedback,
			})
		}
	}
	if len(resp.Assessments) > 0 {
		resp.Average = sum / float64(len(resp.Assessments))
	}

	return resp, nil
}

// GetTermReport builds the per-term report card.
func (s *progressService) GetTermReport(ctx context.Context, userID, studentID uint, term string) (*models.TermReportResponse, error) {
	if !models.ValidTerm(term) {
		return nil, fmt.Errorf("%w: unknown term %q", ErrValidationFailed, term)
	}

	if err := s.authorize(ctx, userID, studentID); err != nil {
		return nil, err
	}

	t := models.Term(term)
	records, err := s.repo.Progress().GetByStudent(ctx, nil, studentID, repositories.ProgressFilters{Term: &t})
	if err != nil {
		return nil, fmt.Errorf("failed to get term records: %w", err)
	}

	passed, needsImprovement := passFailPartition(records)
	resp := &models.TermReportResponse{
		Term:    t,
		Records: dereference(records),
		Stats: models.ReportStats{
			TermAverage:      averageGrade(records),
			TotalSubjects:    len(records),
			PassedSubjects:   passed,
			NeedsImprovement: needsImprovement,
		},
	}

	return resp, nil
}

// ExportTermReport renders the term report as an xlsx workbook.
func (s *progressService) ExportTermReport(ctx context.Context, userID, studentID uint, term string) ([]byte, error) {
	report, err := s.GetTermReport(ctx, userID, studentID, term)
	if err != nil {
		return nil, err
	}

	student, err := s.repo.Student().GetByID(ctx, nil, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: student %d", ErrNotFound, studentID)
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	f.SetCellValue(sheet, "A1", "Term Report")
	f.SetCellValue(sheet, "A2", "Student")
	f.SetCellValue(sheet, "B2", student.Name)
	f.SetCellValue(sheet, "A3", "Grade")
	f.SetCellValue(sheet, "B3", student.Grade)
	f.SetCellValue(sheet, "A4", "Term")
	f.SetCellValue(sheet, "B4", string(report.Term))

	headers := []string{"Subject", "Academic Year", "Grade", "Attendance %", "Status", "Remarks"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 6)
		f.SetCellValue(sheet, cell, h)
	}

	row := 7
	for _, r := range report.Records {
		status := "Pass"
		if r.Grade < models.PassingGrade {
			status = "Needs Improvement"
		}
		remarks := ""
		if r.TeacherRemarks != nil {
			remarks = *r.TeacherRemarks
		}

		values := []interface{}{r.Subject, r.AcademicYear, r.Grade, r.AttendancePercentage(), status, remarks}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheet, cell, v)
		}
		row++
	}

	row++
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Term Average")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row), report.Stats.TermAverage)
	row++
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Subjects Passed")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("%d of %d", report.Stats.PassedSubjects, report.Stats.TotalSubjects))

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render report workbook: %w", err)
	}

	s.logger.Info("Term report exported", "student_id", studentID, "term", term)
	return buf.Bytes(), nil
}

func dereference(records []*models.Progress) []models.Progress {
	out := make([]models.Progress, len(records))
	for i, r := range records {
		out[i] = *r
	}
	return out
}
