package models

import (
	"time"
)

// ===== AUTH DTOs =====

type RegisterRequest struct {
	Name     string   `json:"name" validate:"required,min=1,max=100"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=8,max=72"`
	Role     UserRole `json:"role" validate:"omitempty,user_role"`
	Phone    *string  `json:"phone" validate:"omitempty,max=30"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type UpdateProfileRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Phone           *string `json:"phone" validate:"omitempty,max=30"`
	AvatarURL       *string `json:"avatar_url" validate:"omitempty,max=500"`
	CurrentPassword *string `json:"current_password" validate:"omitempty"`
	NewPassword     *string `json:"new_password" validate:"omitempty,min=8,max=72"`
}

// ===== MESSAGE DTOs =====

type SendMessageRequest struct {
	ReceiverID uint   `json:"receiver_id" validate:"required"`
	Content    string `json:"content" validate:"required,min=1,max=5000"`
}

// ConversationSummary is one row of the conversations listing: the
// counterpart, the newest message either side sent, and how many of
// their messages the caller has not read yet.
type ConversationSummary struct {
	UserID      uint      `json:"user_id"`
	UserName    string    `json:"user_name"`
	UserRole    UserRole  `json:"user_role"`
	LastMessage *Message  `json:"last_message"`
	UnreadCount int64     `json:"unread_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// ===== NOTIFICATION DTOs =====

type CreateNotificationRequest struct {
	UserID    uint                 `json:"user_id" validate:"required"`
	Title     string               `json:"title" validate:"required,min=1,max=200"`
	Body      string               `json:"body" validate:"required,min=1,max=2000"`
	Type      NotificationType     `json:"type" validate:"omitempty,notification_type"`
	Priority  NotificationPriority `json:"priority" validate:"omitempty,notification_priority"`
	Link      *string              `json:"link" validate:"omitempty,max=500"`
	ExpiresAt *time.Time           `json:"expires_at"`
}

// NotificationView decorates a notification with the client display
// hints derived from its priority and type.
type NotificationView struct {
	Notification
	PriorityColor string `json:"priority_color"`
	TypeIcon      string `json:"type_icon"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// ===== STUDENT DTOs =====

type CreateStudentRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Grade       string `json:"grade" validate:"required"`
	StudentCode string `json:"student_code" validate:"required,max=50"`
	ParentID    uint   `json:"parent_id" validate:"required"`
}

// ===== PROGRESS DTOs =====

type RecordProgressRequest struct {
	StudentID         uint                      `json:"student_id" validate:"required"`
	Subject           string                    `json:"subject" validate:"required,min=1,max=100"`
	AcademicYear      string                    `json:"academic_year" validate:"required"`
	Term              Term                      `json:"term" validate:"required,term"`
	Grade             float64                   `json:"grade" validate:"min=0,max=100"`
	AttendancePresent int                       `json:"attendance_present" validate:"min=0"`
	AttendanceTotal   int                       `json:"attendance_total" validate:"min=0"`
	TeacherRemarks    *string                   `json:"teacher_remarks" validate:"omitempty,max=2000"`
	Assessments       []RecordAssessmentRequest `json:"assessments" validate:"dive"`
}

type RecordAssessmentRequest struct {
	Type     AssessmentType `json:"type" validate:"required,oneof=quiz test exam assignment project"`
	Title    string         `json:"title" validate:"required,min=1,max=200"`
	Score    float64        `json:"score" validate:"min=0"`
	MaxScore float64        `json:"max_score" validate:"required,gt=0"`
	Date     time.Time      `json:"date" validate:"required"`
	Feedback *string        `json:"feedback" validate:"omitempty,max=1000"`
}

type OverallStats struct {
	AverageGrade      float64 `json:"average_grade"`
	TotalSubjects     int     `json:"total_subjects"`
	AttendanceAverage float64 `json:"attendance_average"`
}

type OverallProgressResponse struct {
	Records []Progress   `json:"records"`
	Stats   OverallStats `json:"stats"`
}

type SubjectStats struct {
	AverageGrade float64 `json:"average_grade"`
	HighestGrade float64 `json:"highest_grade"`
	LowestGrade  float64 `json:"lowest_grade"`
	Improvement  float64 `json:"improvement"`
}

type SubjectProgressResponse struct {
	Subject string       `json:"subject"`
	Records []Progress   `json:"records"`
	Stats   SubjectStats `json:"stats"`
}

type AttendanceRecord struct {
	Subject      string  `json:"subject"`
	Term         Term    `json:"term"`
	AcademicYear string  `json:"academic_year"`
	Present      int     `json:"present"`
	Total        int     `json:"total"`
	Percentage   float64 `json:"percentage"`
}

type AttendanceResponse struct {
	Records []AttendanceRecord `json:"records"`
	Average float64            `json:"average"`
}

type AssessmentEntry struct {
	Subject  string         `json:"subject"`
	Term     Term           `json:"term"`
	Type     AssessmentType `json:"type"`
	Title    string         `json:"title"`
	Score    float64        `json:"score"`
	MaxScore float64        `json:"max_score"`
	Percent  float64        `json:"percent"`
	Date     time.Time      `json:"date"`
	Feedback *string        `json:"feedback,omitempty"`
}

type AssessmentsResponse struct {
	Assessments []AssessmentEntry `json:"assessments"`
	Average     float64           `json:"average"`
}

type SubjectGrade struct {
	Subject string  `json:"subject"`
	Grade   float64 `json:"grade"`
}

type ReportStats struct {
	TermAverage      float64        `json:"term_average"`
	TotalSubjects    int            `json:"total_subjects"`
	PassedSubjects   int            `json:"passed_subjects"`
	NeedsImprovement []SubjectGrade `json:"needs_improvement"`
}

type TermReportResponse struct {
	Term    Term        `json:"term"`
	Records []Progress  `json:"records"`
	Stats   ReportStats `json:"stats"`
}

// ===== RESOURCE DTOs =====

type UploadResourceRequest struct {
	Title       string           `json:"title" validate:"required,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	Category    ResourceCategory `json:"category" validate:"required,oneof=study-materials homework exam-preparation extra-learning video-lectures assignments"`
	Subject     string           `json:"subject" validate:"required"`
	Grade       string           `json:"grade" validate:"required"`
	FileURL     string           `json:"file_url" validate:"required,max=500"`
	FileType    string           `json:"file_type" validate:"omitempty,max=50"`
	FileSize    int64            `json:"file_size" validate:"min=0"`
	Tags        []string         `json:"tags" validate:"omitempty,max=20,dive,max=50"`
}

type UpdateResourceRequest struct {
	Title       *string           `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string           `json:"description" validate:"omitempty,max=2000"`
	Category    *ResourceCategory `json:"category" validate:"omitempty,oneof=study-materials homework exam-preparation extra-learning video-lectures assignments"`
	Subject     *string           `json:"subject" validate:"omitempty"`
	Grade       *string           `json:"grade" validate:"omitempty"`
	Status      *ResourceStatus   `json:"status" validate:"omitempty,oneof=active archived under-review"`
	Tags        []string          `json:"tags" validate:"omitempty,max=20,dive,max=50"`
}

type ListResourcesParams struct {
	Category string `json:"category" form:"category" validate:"omitempty,oneof=study-materials homework exam-preparation extra-learning video-lectures assignments"`
	Subject  string `json:"subject" form:"subject"`
	Grade    string `json:"grade" form:"grade"`
	Search   string `json:"search" form:"search"`
	Page     int    `json:"page" form:"page" validate:"min=0"`
	Size     int    `json:"size" form:"size" validate:"min=0,max=100"`
}

type ListResourcesResponse struct {
	Resources []*Resource `json:"resources"`
	Total     int64       `json:"total"`
	Page      int         `json:"page"`
	Size      int         `json:"size"`
}

type RateResourceRequest struct {
	Rating int     `json:"rating" validate:"required,min=1,max=5"`
	Review *string `json:"review" validate:"omitempty,max=1000"`
}

type DownloadResponse struct {
	FileURL   string `json:"file_url"`
	Downloads int64  `json:"downloads"`
}

// ===== ERROR RESPONSES =====

type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
