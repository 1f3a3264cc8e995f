package models

import "time"

type Student struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	Grade       string `json:"grade" gorm:"not null;size:20" validate:"required"`
	StudentCode string `json:"student_code" gorm:"uniqueIndex;not null;size:50" validate:"required"`

	// Owning parent account. Deleting a parent never cascades here.
	ParentID uint  `json:"parent_id" gorm:"not null;index"`
	Parent   *User `json:"parent,omitempty" gorm:"foreignKey:ParentID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Student) TableName() string {
	return "students"
}
