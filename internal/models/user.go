package models

import (
	"time"
)

type UserRole string

const (
	RoleParent  UserRole = "parent"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserInactive  UserStatus = "inactive"
	UserSuspended UserStatus = "suspended"
)

type User struct {
	ID       uint       `json:"id" gorm:"primaryKey"`
	Name     string     `json:"name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	Email    string     `json:"email" gorm:"uniqueIndex;not null;size:255" validate:"required,email"`
	Password string     `json:"-" gorm:"not null;size:255"`
	Role     UserRole   `json:"role" gorm:"default:parent;index;size:20" validate:"omitempty,oneof=parent teacher admin"`
	Status   UserStatus `json:"status" gorm:"default:active;size:20" validate:"omitempty,oneof=active inactive suspended"`

	// Profile info
	Phone     *string `json:"phone" gorm:"size:30"`
	AvatarURL *string `json:"avatar_url" gorm:"size:500"`

	// Students owned by this account (parent role only)
	Children []Student `json:"children,omitempty" gorm:"foreignKey:ParentID"`

	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool {
	return u.Status == UserActive
}
