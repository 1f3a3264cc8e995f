package postgres

import (
	"context"

	"github.com/edubridge/engagement-service/internal/models"
	"github.com/edubridge/engagement-service/internal/repositories"
	"gorm.io/gorm"
)

type studentRepository struct {
	db *gorm.DB
}

func NewStudentPostgreSQL(db *gorm.DB) repositories.StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(student).Error; err != nil {
		return handleDBError(err, "create student")
	}
	return nil
}

func (r *studentRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Student, error) {
	db := r.getDB(tx)
	var student models.Student

	if err := db.WithContext(ctx).First(&student, id).Error; err != nil {
		return nil, handleDBError(err, "get student by id")
	}

	return &student, nil
}

func (r *studentRepository) GetByParent(ctx context.Context, tx *gorm.DB, parentID uint) ([]*models.Student, error) {
	db := r.getDB(tx)
	var students []*models.Student

	if err := db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("name ASC").
		Find(&students).Error; err != nil {
		return nil, handleDBError(err, "get students by parent")
	}

	return students, nil
}

func (r *studentRepository) IsChildOf(ctx context.Context, tx *gorm.DB, parentID, studentID uint) (bool, error) {
	db := r.getDB(tx)
	var count int64

	if err := db.WithContext(ctx).
		Model(&models.Student{}).
		Where("id = ? AND parent_id = ?", studentID, parentID).
		Count(&count).Error; err != nil {
		return false, handleDBError(err, "check student ownership")
	}

	return count > 0, nil
}

func (r *studentRepository) ExistsByCode(ctx context.Context, tx *gorm.DB, code string) (bool, error) {
	db := r.getDB(tx)
	var count int64

	if err := db.WithContext(ctx).
		Model(&models.Student{}).
		Where("student_code = ?", code).
		Count(&count).Error; err != nil {
		return false, handleDBError(err, "check student code exists")
	}

	return count > 0, nil
}

func (r *studentRepository) Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	db := r.getDB(tx)
	var count int64

	if err := db.WithContext(ctx).
		Model(&models.Student{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, handleDBError(err, "check student exists")
	}

	return count > 0, nil
}

func (r *studentRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}
