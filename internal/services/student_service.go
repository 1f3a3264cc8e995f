package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/edubridge/engagement-service/internal/models"
	"github.com/edubridge/engagement-service/internal/repositories"
	"github.com/edubridge/engagement-service/internal/validator"
)

// studentService implements StudentService
type studentService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

// NewStudentService creates a new student service
func NewStudentService(repo repositories.Repository, logger *slog.Logger) StudentService {
	return &studentService{
		repo:      repo,
		logger:    logger,
		validator: validator.New(),
	}
}

// Create enrolls a student under a parent account.
func (s *studentService) Create(ctx context.Context, req *models.CreateStudentRequest) (*models.Student, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	parent, err := s.repo.User().GetByID(ctx, nil, req.ParentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: parent %d", ErrNotFound, req.ParentID)
		}
		return nil, fmt.Errorf("failed to get parent: %w", err)
	}
	if parent.Role != models.RoleParent {
		return nil, fmt.Errorf("%w: user %d is not a parent account", ErrValidationFailed, req.ParentID)
	}

	exists, err := s.repo.Student().ExistsByCode(ctx, nil, req.StudentCode)
	if err != nil {
		return nil, fmt.Errorf("failed to check student code: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: student code already in use", ErrConflict)
	}

	student := &models.Student{
		Name:        req.Name,
		Grade:       req.Grade,
		StudentCode: req.StudentCode,
		ParentID:    req.ParentID,
	}

	if err := s.repo.Student().Create(ctx, nil, student); err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	s.logger.Info("Student created", "student_id", student.ID, "parent_id", student.ParentID)
	return student, nil
}

// GetByID returns the student if the caller may view them.
func (s *studentService) GetByID(ctx context.Context, userID, studentID uint) (*models.Student, error) {
	allowed, err := s.CanViewStudent(ctx, userID, studentID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: student %d", ErrForbidden, studentID)
	}

	student, err := s.repo.Student().GetByID(ctx, nil, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: student %d", ErrNotFound, studentID)
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	return student, nil
}

// ListByParent returns the parent's enrolled children.
func (s *studentService) ListByParent(ctx context.Context, parentID uint) ([]*models.Student, error) {
	students, err := s.repo.Student().GetByParent(ctx, nil, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

// CanViewStudent applies the access rule for academic data: teachers
// and admins see every student, parents only their own children.
func (s *studentService) CanViewStudent(ctx context.Context, userID, studentID uint) (bool, error) {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return false, fmt.Errorf("failed to get user: %w", err)
	}

	if user.Role == models.RoleTeacher || user.Role == models.RoleAdmin {
		return true, nil
	}

	isChild, err := s.repo.Student().IsChildOf(ctx, nil, userID, studentID)
	if err != nil {
		return false, fmt.Errorf("failed to check parent link: %w", err)
	}

	return isChild, nil
}
