package services

import (
	"context"
	"errors"
	"testing"

	"github.com/edubridge/engagement-service/internal/models"
)

func setupStudentService(t *testing.T) (StudentService, *fakeRepository) {
	t.Helper()
	repo := newFakeRepository()
	return NewStudentService(repo, testLogger()), repo
}

func TestStudentCreate(t *testing.T) {
	svc, repo := setupStudentService(t)
	ctx := context.Background()

	parent := repo.addUser("parent", models.RoleParent)
	teacher := repo.addUser("teacher", models.RoleTeacher)

	student, err := svc.Create(ctx, &models.CreateStudentRequest{
		Name:        "Kofi",
		Grade:       "4",
		StudentCode: "STU-001",
		ParentID:    parent.ID,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if student.ParentID != parent.ID {
		t.Errorf("student linked to %d, want %d", student.ParentID, parent.ID)
	}

	// Duplicate code rejected.
	_, err = svc.Create(ctx, &models.CreateStudentRequest{
		Name:        "Other",
		Grade:       "4",
		StudentCode: "STU-001",
		ParentID:    parent.ID,
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate code, got %v", err)
	}

	// Students attach to parent accounts only.
	_, err = svc.Create(ctx, &models.CreateStudentRequest{
		Name:        "Misattached",
		Grade:       "4",
		StudentCode: "STU-002",
		ParentID:    teacher.ID,
	})
	if !errors.Is(err, ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed for non-parent owner, got %v", err)
	}
}

func TestCanViewStudent(t *testing.T) {
	svc, repo := setupStudentService(t)
	ctx := context.Background()

	parent := repo.addUser("parent", models.RoleParent)
	otherParent := repo.addUser("otherparent", models.RoleParent)
	teacher := repo.addUser("teacher", models.RoleTeacher)
	admin := repo.addUser("admin", models.RoleAdmin)

	ownChild := repo.addStudent("own", parent.ID)
	otherChild := repo.addStudent("other", otherParent.ID)

	tests := []struct {
		name      string
		userID    uint
		studentID uint
		want      bool
	}{
		{"parent own child", parent.ID, ownChild.ID, true},
		{"parent someone else's child", parent.ID, otherChild.ID, false},
		{"teacher any student", teacher.ID, otherChild.ID, true},
		{"admin any student", admin.ID, ownChild.ID, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.CanViewStudent(ctx, tt.userID, tt.studentID)
			if err != nil {
				t.Fatalf("CanViewStudent failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("CanViewStudent = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStudentGetByIDAccess(t *testing.T) {
	svc, repo := setupStudentService(t)
	ctx := context.Background()

	parent := repo.addUser("parent", models.RoleParent)
	stranger := repo.addUser("stranger", models.RoleParent)
	child := repo.addStudent("child", parent.ID)

	if _, err := svc.GetByID(ctx, parent.ID, child.ID); err != nil {
		t.Errorf("parent should see own child: %v", err)
	}

	if _, err := svc.GetByID(ctx, stranger.ID, child.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestListByParent(t *testing.T) {
	svc, repo := setupStudentService(t)
	ctx := context.Background()

	parent := repo.addUser("parent", models.RoleParent)
	other := repo.addUser("other", models.RoleParent)
	repo.addStudent("a", parent.ID)
	repo.addStudent("b", parent.ID)
	repo.addStudent("c", other.ID)

	students, err := svc.ListByParent(ctx, parent.ID)
	if err != nil {
		t.Fatalf("ListByParent failed: %v", err)
	}
	if len(students) != 2 {
		t.Errorf("expected 2 students, got %d", len(students))
	}
}
