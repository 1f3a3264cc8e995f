package models

import "time"

type Term string

const (
	Term1 Term = "Term 1"
	Term2 Term = "Term 2"
	Term3 Term = "Term 3"
)

type AssessmentType string

const (
	AssessmentQuiz       AssessmentType = "quiz"
	AssessmentTest       AssessmentType = "test"
	AssessmentExam       AssessmentType = "exam"
	AssessmentAssignment AssessmentType = "assignment"
	AssessmentProject    AssessmentType = "project"
)

// PassingGrade is the threshold for a subject to count as passed in
// term reports.
const PassingGrade = 40.0

// Progress is one subject's record for a student in a given term.
type Progress struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	StudentID    uint    `json:"student_id" gorm:"not null;index:idx_progress_student_term"`
	Subject      string  `json:"subject" gorm:"not null;size:100;index" validate:"required,min=1,max=100"`
	AcademicYear string  `json:"academic_year" gorm:"not null;size:20" validate:"required"`
	Term         Term    `json:"term" gorm:"not null;size:20;index:idx_progress_student_term" validate:"required,term"`
	Grade        float64 `json:"grade" gorm:"not null" validate:"min=0,max=100"`

	AttendancePresent int `json:"attendance_present" gorm:"default:0" validate:"min=0"`
	AttendanceTotal   int `json:"attendance_total" gorm:"default:0" validate:"min=0"`

	TeacherRemarks *string `json:"teacher_remarks" gorm:"type:text" validate:"omitempty,max=2000"`
	RecordedBy     uint    `json:"recorded_by" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Student     *Student             `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Assessments []ProgressAssessment `json:"assessments" gorm:"foreignKey:ProgressID;constraint:OnDelete:CASCADE"`
}

// ProgressAssessment is one graded piece of work inside a progress record.
type ProgressAssessment struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	ProgressID uint           `json:"progress_id" gorm:"not null;index"`
	Type       AssessmentType `json:"type" gorm:"not null;size:20" validate:"required,oneof=quiz test exam assignment project"`
	Title      string         `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Score      float64        `json:"score" gorm:"not null" validate:"min=0"`
	MaxScore   float64        `json:"max_score" gorm:"not null" validate:"required,gt=0"`
	Date       time.Time      `json:"date" gorm:"not null;index"`
	Feedback   *string        `json:"feedback" gorm:"type:text" validate:"omitempty,max=1000"`
}

func (Progress) TableName() string {
	return "progress_records"
}

func (ProgressAssessment) TableName() string {
	return "progress_assessments"
}

// AttendancePercentage returns attendance as a 0-100 percentage,
// 0 when no sessions were recorded.
func (p *Progress) AttendancePercentage() float64 {
	if p.AttendanceTotal == 0 {
		return 0
	}
	return float64(p.AttendancePresent) / float64(p.AttendanceTotal) * 100
}

// AverageAssessmentScore returns the mean assessment score normalized
// to 0-100, 0 when there are no assessments.
func (p *Progress) AverageAssessmentScore() float64 {
	if len(p.Assessments) == 0 {
		return 0
	}
	var sum float64
	for _, a := range p.Assessments {
		if a.MaxScore > 0 {
			sum += a.Score / a.MaxScore * 100
		}
	}
	return sum / float64(len(p.Assessments))
}

// OverallGrade weights assessments at 70% and attendance at 30%.
func (p *Progress) OverallGrade() float64 {
	return p.AverageAssessmentScore()*0.7 + p.AttendancePercentage()*0.3
}

// ValidTerm reports whether s is a known term value.
func ValidTerm(s string) bool {
	switch Term(s) {
	case Term1, Term2, Term3:
		return true
	}
	return false
}
