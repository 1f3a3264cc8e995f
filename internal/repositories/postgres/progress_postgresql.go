package postgres

import (
	"context"

	"github.com/edubridge/engagement-service/internal/models"
	"github.com/edubridge/engagement-service/internal/repositories"
	"gorm.io/gorm"
)

type progressRepository struct {
	db *gorm.DB
}

func NewProgressPostgreSQL(db *gorm.DB) repositories.ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Create(ctx context.Context, tx *gorm.DB, progress *models.Progress) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(progress).Error; err != nil {
		return handleDBError(err, "create progress record")
	}
	return nil
}

func (r *progressRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Progress, error) {
	db := r.getDB(tx)
	var progress models.Progress

	if err := db.WithContext(ctx).
		Preload("Assessments").
		First(&progress, id).Error; err != nil {
		return nil, handleDBError(err, "get progress record by id")
	}

	return &progress, nil
}

func (r *progressRepository) GetByStudent(ctx context.Context, tx *gorm.DB, studentID uint, filters repositories.ProgressFilters) ([]*models.Progress, error) {
	db := r.getDB(tx)
	var records []*models.Progress

	query := db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Preload("Assessments")

	if filters.Subject != nil {
		query = query.Where("subject = ?", *filters.Subject)
	}
	if filters.Term != nil {
		query = query.Where("term = ?", *filters.Term)
	}

	if err := query.
		Order("created_at DESC, id DESC").
		Find(&records).Error; err != nil {
		return nil, handleDBError(err, "get progress records by student")
	}

	return records, nil
}

func (r *progressRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}
