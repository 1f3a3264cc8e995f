package postgres

import (
	"context"

	"github.com/edubridge/engagement-service/internal/models"
	"github.com/edubridge/engagement-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type resourceRepository struct {
	db *gorm.DB
}

func NewResourcePostgreSQL(db *gorm.DB) repositories.ResourceRepository {
	return &resourceRepository{db: db}
}

func (r *resourceRepository) Create(ctx context.Context, tx *gorm.DB, resource *models.Resource) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(resource).Error; err != nil {
		return handleDBError(err, "create resource")
	}
	return nil
}

func (r *resourceRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Resource, error) {
	db := r.getDB(tx)
	var resource models.Resource

	if err := db.WithContext(ctx).
		Preload("Uploader").
		First(&resource, id).Error; err != nil {
		return nil, handleDBError(err, "get resource by id")
	}

	return &resource, nil
}

func (r *resourceRepository) Update(ctx context.Context, tx *gorm.DB, resource *models.Resource) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(resource).Error; err != nil {
		return handleDBError(err, "update resource")
	}
	return nil
}

func (r *resourceRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Resource{}, id).Error; err != nil {
		return handleDBError(err, "delete resource")
	}
	return nil
}

func (r *resourceRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.ResourceFilters) ([]*models.Resource, int64, error) {
	db := r.getDB(tx)
	var resources []*models.Resource
	var total int64

	query := db.WithContext(ctx).Model(&models.Resource{})
	query = r.applyResourceFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count resources")
	}

	sortKeyToColumn := map[string]string{
		"created_at": "created_at",
		"title":      "title",
		"downloads":  "downloads",
		"rating":     "average_rating",
	}
	query = applyPaginationAndSorting(query, filters.Limit, filters.Offset, filters.SortBy, filters.SortOrder, sortKeyToColumn, "created_at")

	if err := query.Find(&resources).Error; err != nil {
		return nil, 0, handleDBError(err, "list resources")
	}

	return resources, total, nil
}

func (r *resourceRepository) Popular(ctx context.Context, tx *gorm.DB, limit int) ([]*models.Resource, error) {
	db := r.getDB(tx)
	var resources []*models.Resource

	if limit <= 0 {
		limit = 10
	}

	if err := db.WithContext(ctx).
		Where("status = ?", models.ResourceActive).
		Order("downloads DESC, average_rating DESC").
		Limit(limit).
		Find(&resources).Error; err != nil {
		return nil, handleDBError(err, "get popular resources")
	}

	return resources, nil
}

func (r *resourceRepository) IncrementDownloads(ctx context.Context, tx *gorm.DB, id uint) (int64, error) {
	db := r.getDB(tx)

	// Single UPDATE so concurrent downloads never lose increments
	var resource models.Resource
	result := db.WithContext(ctx).
		Model(&resource).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "downloads"}}}).
		Where("id = ?", id).
		Update("downloads", gorm.Expr("downloads + 1"))
	if result.Error != nil {
		return 0, handleDBError(result.Error, "increment downloads")
	}
	if result.RowsAffected == 0 {
		return 0, handleDBError(gorm.ErrRecordNotFound, "increment downloads")
	}

	return resource.Downloads, nil
}

func (r *resourceRepository) UpsertRating(ctx context.Context, tx *gorm.DB, rating *models.ResourceRating) error {
	db := r.getDB(tx)

	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "resource_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "review", "updated_at"}),
		}).
		Create(rating).Error; err != nil {
		return handleDBError(err, "upsert resource rating")
	}

	return nil
}

func (r *resourceRepository) GetRatings(ctx context.Context, tx *gorm.DB, resourceID uint) ([]*models.ResourceRating, error) {
	db := r.getDB(tx)
	var ratings []*models.ResourceRating

	if err := db.WithContext(ctx).
		Where("resource_id = ?", resourceID).
		Find(&ratings).Error; err != nil {
		return nil, handleDBError(err, "get resource ratings")
	}

	return ratings, nil
}

func (r *resourceRepository) UpdateRatingAggregate(ctx context.Context, tx *gorm.DB, resourceID uint, average float64, count int) error {
	db := r.getDB(tx)

	if err := db.WithContext(ctx).
		Model(&models.Resource{}).
		Where("id = ?", resourceID).
		Updates(map[string]interface{}{
			"average_rating": average,
			"rating_count":   count,
		}).Error; err != nil {
		return handleDBError(err, "update rating aggregate")
	}

	return nil
}

func (r *resourceRepository) applyResourceFilters(query *gorm.DB, filters repositories.ResourceFilters) *gorm.DB {
	if filters.Category != nil {
		query = query.Where("category = ?", *filters.Category)
	}
	if filters.Subject != nil {
		query = query.Where("subject = ?", *filters.Subject)
	}
	if filters.Grade != nil {
		query = query.Where("grade = ?", *filters.Grade)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Search != nil && *filters.Search != "" {
		like := "%" + *filters.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", like, like)
	}

	return query
}

func (r *resourceRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}
