package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/edubridge/engagement-service/internal/cache"
	"github.com/edubridge/engagement-service/internal/models"
	"github.com/edubridge/engagement-service/internal/repositories"
	"github.com/edubridge/engagement-service/internal/validator"
)

const (
	defaultPageSize  = 20
	maxPageSize      = 100
	defaultPopularN  = 10
	maxPopularN      = 50
	ratingPrecision  = 100 // round averages to two decimals
)

// resourceService implements ResourceService
type resourceService struct {
	repo         repositories.Repository
	logger       *slog.Logger
	validator    *validator.Validator
	cacheManager *cache.CacheManager
}

// NewResourceService creates a new resource service
func NewResourceService(repo repositories.Repository, logger *slog.Logger, cacheManager *cache.CacheManager) ResourceService {
	return &resourceService{
		repo:         repo,
		logger:       logger,
		validator:    validator.New(),
		cacheManager: cacheManager,
	}
}

// Upload stores a new resource owned by the uploader.
func (s *resourceService) Upload(ctx context.Context, uploaderID uint, req *models.UploadResourceRequest) (*models.Resource, error) {
	if errs := s.validator.ValidateResourceUpload(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	resource := &models.Resource{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Subject:     req.Subject,
		Grade:       req.Grade,
		FileURL:     req.FileURL,
		FileType:    req.FileType,
		FileSize:    req.FileSize,
		UploadedBy:  uploaderID,
		Status:      models.ResourceActive,
	}

	if len(req.Tags) > 0 {
		tags, err := json.Marshal(req.Tags)
		if err != nil {
			return nil, fmt.Errorf("failed to encode tags: %w", err)
		}
		resource.Tags = tags
	}

	if err := s.repo.Resource().Create(ctx, nil, resource); err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	cache.InvalidateResourceCache(ctx, s.cacheManager, resource.ID)

	s.logger.Info("Resource uploaded", "resource_id", resource.ID, "uploaded_by", uploaderID, "category", resource.Category)
	return resource, nil
}

// GetByID returns one resource.
func (s *resourceService) GetByID(ctx context.Context, id uint) (*models.Resource, error) {
	resource, err := s.repo.Resource().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: resource %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	return resource, nil
}

// List returns active resources matching the filters with a total count.
func (s *resourceService) List(ctx context.Context, params *models.ListResourcesParams) ([]*models.Resource, int64, error) {
	if errs := s.validator.Validate(params); len(errs) > 0 {
		return nil, 0, fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	size := params.Size
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	page := params.Page
	if page < 1 {
		page = 1
	}
	// Write the effective values back so callers can echo them.
	params.Page = page
	params.Size = size

	status := models.ResourceActive
	filters := repositories.ResourceFilters{
		Status:    &status,
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
	if params.Category != "" {
		c := models.ResourceCategory(params.Category)
		filters.Category = &c
	}
	if params.Subject != "" {
		filters.Subject = &params.Subject
	}
	if params.Grade != "" {
		filters.Grade = &params.Grade
	}
	if params.Search != "" {
		filters.Search = &params.Search
	}

	resources, total, err := s.repo.Resource().List(ctx, nil, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list resources: %w", err)
	}

	return resources, total, nil
}

// Update applies partial changes; only the uploader or an admin may edit.
func (s *resourceService) Update(ctx context.Context, id, userID uint, req *models.UpdateResourceRequest) (*models.Resource, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	resource, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeOwnerOrAdmin(ctx, resource, userID); err != nil {
		return nil, err
	}

	if req.Title != nil {
		resource.Title = *req.Title
	}
	if req.Description != nil {
		resource.Description = req.Description
	}
	if req.Category != nil {
		resource.Category = *req.Category
	}
	if req.Subject != nil {
		resource.Subject = *req.Subject
	}
	if req.Grade != nil {
		resource.Grade = *req.Grade
	}
	if req.Status != nil {
		resource.Status = *req.Status
	}
	if req.Tags != nil {
		tags, err := json.Marshal(req.Tags)
		if err != nil {
			return nil, fmt.Errorf("failed to encode tags: %w", err)
		}
		resource.Tags = tags
	}

	if err := s.repo.Resource().Update(ctx, nil, resource); err != nil {
		return nil, fmt.Errorf("failed to update resource: %w", err)
	}

	cache.InvalidateResourceCache(ctx, s.cacheManager, id)

	s.logger.Info("Resource updated", "resource_id", id, "user_id", userID)
	return resource, nil
}

// Delete removes the resource; only the uploader or an admin may delete.
func (s *resourceService) Delete(ctx context.Context, id, userID uint) error {
	resource, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.authorizeOwnerOrAdmin(ctx, resource, userID); err != nil {
		return err
	}

	if err := s.repo.Resource().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete resource: %w", err)
	}

	cache.InvalidateResourceCache(ctx, s.cacheManager, id)

	s.logger.Info("Resource deleted", "resource_id", id, "user_id", userID)
	return nil
}

// Download bumps the counter and returns the file location.
func (s *resourceService) Download(ctx context.Context, id uint) (*models.DownloadResponse, error) {
	resource, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	downloads, err := s.repo.Resource().IncrementDownloads(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: resource %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to increment downloads: %w", err)
	}

	cache.InvalidateResourceCache(ctx, s.cacheManager, id)

	return &models.DownloadResponse{
		FileURL:   resource.FileURL,
		Downloads: downloads,
	}, nil
}

// Rate upserts the user's rating and recomputes the aggregate from all
// stored ratings, so re-rating replaces rather than double-counts.
func (s *resourceService) Rate(ctx context.Context, id, userID uint, req *models.RateResourceRequest) (*models.Resource, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	rating := &models.ResourceRating{
		ResourceID: id,
		UserID:     userID,
		Rating:     req.Rating,
		Review:     req.Review,
	}

	if err := s.repo.Resource().UpsertRating(ctx, nil, rating); err != nil {
		return nil, fmt.Errorf("failed to save rating: %w", err)
	}

	ratings, err := s.repo.Resource().GetRatings(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings: %w", err)
	}

	var sum float64
	for _, r := range ratings {
		sum += float64(r.Rating)
	}
	average := 0.0
	if len(ratings) > 0 {
		average = math.Round(sum/float64(len(ratings))*ratingPrecision) / ratingPrecision
	}

	if err := s.repo.Resource().UpdateRatingAggregate(ctx, nil, id, average, len(ratings)); err != nil {
		return nil, fmt.Errorf("failed to update rating aggregate: %w", err)
	}

	cache.InvalidateResourceCache(ctx, s.cacheManager, id)

	resource, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Resource rated", "resource_id", id, "user_id", userID, "rating", req.Rating, "average", average)
	return resource, nil
}

// Popular returns the most downloaded active resources, cache-aside.
func (s *resourceService) Popular(ctx context.Context, limit int) ([]*models.Resource, error) {
	if limit <= 0 {
		limit = defaultPopularN
	}
	if limit > maxPopularN {
		limit = maxPopularN
	}

	key := fmt.Sprintf("popular:%d", limit)

	var cached []*models.Resource
	if err := s.cacheManager.Resource.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	resources, err := s.repo.Resource().Popular(ctx, nil, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get popular resources: %w", err)
	}

	if err := s.cacheManager.Resource.Set(ctx, key, resources, cache.ResourceCacheConfig.TTL); err != nil {
		s.logger.Warn("Failed to cache popular resources", "error", err)
	}

	return resources, nil
}

func (s *resourceService) authorizeOwnerOrAdmin(ctx context.Context, resource *models.Resource, userID uint) error {
	if resource.UploadedBy == userID {
		return nil
	}

	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user.Role != models.RoleAdmin {
		return fmt.Errorf("%w: resource %d", ErrForbidden, resource.ID)
	}

	return nil
}
