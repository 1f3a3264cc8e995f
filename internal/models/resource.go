package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ResourceCategory string

const (
	CategoryStudyMaterials ResourceCategory = "study-materials"
	CategoryHomework       ResourceCategory = "homework"
	CategoryExamPrep       ResourceCategory = "exam-preparation"
	CategoryExtraLearning  ResourceCategory = "extra-learning"
	CategoryVideoLectures  ResourceCategory = "video-lectures"
	CategoryAssignments    ResourceCategory = "assignments"
)

type ResourceStatus string

const (
	ResourceActive      ResourceStatus = "active"
	ResourceArchived    ResourceStatus = "archived"
	ResourceUnderReview ResourceStatus = "under-review"
)

type Resource struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	Title       string           `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string          `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	Category    ResourceCategory `json:"category" gorm:"not null;index;size:30" validate:"required,oneof=study-materials homework exam-preparation extra-learning video-lectures assignments"`
	Subject     string           `json:"subject" gorm:"not null;size:100;index" validate:"required"`
	Grade       string           `json:"grade" gorm:"not null;size:20;index" validate:"required"`

	FileURL  string `json:"file_url" gorm:"not null;size:500" validate:"required,max=500"`
	FileType string `json:"file_type" gorm:"size:50"`
	FileSize int64  `json:"file_size" gorm:"default:0" validate:"min=0"`

	UploadedBy uint           `json:"uploaded_by" gorm:"not null;index"`
	Downloads  int64          `json:"downloads" gorm:"default:0"`
	Tags       datatypes.JSON `json:"tags,omitempty" gorm:"type:jsonb"`

	AverageRating float64        `json:"average_rating" gorm:"default:0"`
	RatingCount   int            `json:"rating_count" gorm:"default:0"`
	Status        ResourceStatus `json:"status" gorm:"default:active;index;size:20" validate:"omitempty,oneof=active archived under-review"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Uploader *User            `json:"uploader,omitempty" gorm:"foreignKey:UploadedBy"`
	Ratings  []ResourceRating `json:"ratings,omitempty" gorm:"foreignKey:ResourceID;constraint:OnDelete:CASCADE"`
}

// ResourceRating is one user's rating of a resource. A user rates a
// resource at most once; re-rating replaces the previous row.
type ResourceRating struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ResourceID uint      `json:"resource_id" gorm:"not null;uniqueIndex:idx_resource_rating_user"`
	UserID     uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_resource_rating_user"`
	Rating     int       `json:"rating" gorm:"not null" validate:"required,min=1,max=5"`
	Review     *string   `json:"review" gorm:"type:text" validate:"omitempty,max=1000"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Resource) TableName() string {
	return "resources"
}

func (ResourceRating) TableName() string {
	return "resource_ratings"
}
