package models

import (
	"time"

	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotificationGeneral    NotificationType = "general"
	NotificationAcademic   NotificationType = "academic"
	NotificationAttendance NotificationType = "attendance"
	NotificationEvent      NotificationType = "event"
	NotificationHomework   NotificationType = "homework"
	NotificationBehavior   NotificationType = "behavior"
)

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityNormal NotificationPriority = "normal"
	PriorityHigh   NotificationPriority = "high"
	PriorityUrgent NotificationPriority = "urgent"
)

// DefaultNotificationTTL is applied at create time when the caller
// leaves ExpiresAt unset.
const DefaultNotificationTTL = 30 * 24 * time.Hour

type Notification struct {
	ID       uint  `json:"id" gorm:"primaryKey"`
	UserID   uint  `json:"user_id" gorm:"not null;index"`
	SenderID *uint `json:"sender_id" gorm:"index"`

	Title    string               `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Body     string               `json:"body" gorm:"not null;type:text" validate:"required,min=1,max=2000"`
	Type     NotificationType     `json:"type" gorm:"default:general;index;size:20" validate:"omitempty,notification_type"`
	Priority NotificationPriority `json:"priority" gorm:"default:normal;index;size:20" validate:"omitempty,notification_priority"`

	Read   bool       `json:"read" gorm:"default:false;index"`
	ReadAt *time.Time `json:"read_at"`

	Link     *string        `json:"link" gorm:"size:500" validate:"omitempty,max=500"`
	Metadata datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb"`

	ExpiresAt *time.Time `json:"expires_at" gorm:"index"`
	CreatedAt time.Time  `json:"created_at" gorm:"index"`

	// Relations
	Recipient *User `json:"recipient,omitempty" gorm:"foreignKey:UserID"`
	Sender    *User `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
}

func (Notification) TableName() string {
	return "notifications"
}

// IsExpired reports whether the notification is past its expiry.
// Notifications without an expiry never expire.
func (n *Notification) IsExpired() bool {
	if n.ExpiresAt == nil || n.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(*n.ExpiresAt)
}

// PriorityColor returns the display color hex for the priority badge.
func (n *Notification) PriorityColor() string {
	switch n.Priority {
	case PriorityLow:
		return "#28a745"
	case PriorityHigh:
		return "#ffc107"
	case PriorityUrgent:
		return "#dc3545"
	default:
		return "#007bff"
	}
}

// TypeIcon returns the icon name used by clients for the notification type.
func (n *Notification) TypeIcon() string {
	switch n.Type {
	case NotificationAcademic:
		return "graduation-cap"
	case NotificationAttendance:
		return "calendar-check"
	case NotificationEvent:
		return "calendar"
	case NotificationHomework:
		return "book"
	case NotificationBehavior:
		return "exclamation-circle"
	default:
		return "bell"
	}
}

// ValidNotificationType reports whether s is a known type value.
func ValidNotificationType(s string) bool {
	switch NotificationType(s) {
	case NotificationGeneral, NotificationAcademic, NotificationAttendance,
		NotificationEvent, NotificationHomework, NotificationBehavior:
		return true
	}
	return false
}

// ValidNotificationPriority reports whether s is a known priority value.
func ValidNotificationPriority(s string) bool {
	switch NotificationPriority(s) {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
