package validator

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/edubridge/engagement-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single field validation failure
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// BusinessValidator wraps struct validation with domain rules
type BusinessValidator struct {
	validate *validator.Validate
}

// Validator is the validation entry point services hold.
type Validator = BusinessValidator

// New creates the validator with all domain rules registered.
func New() *Validator {
	return NewBusinessValidator()
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates a struct against its validate tags
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	var errors ValidationErrors

	err := bv.validate.Struct(s)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			errors = append(errors, ValidationError{
				Field:   err.Field(),
				Message: bv.getErrorMessage(err),
				Value:   err.Value(),
				Rule:    err.Tag(),
			})
		}
	}

	return errors
}

// registerBusinessRules registers custom domain rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	bv.validate.RegisterValidation("notification_type", func(fl validator.FieldLevel) bool {
		return models.ValidNotificationType(fl.Field().String())
	})

	bv.validate.RegisterValidation("notification_priority", func(fl validator.FieldLevel) bool {
		return models.ValidNotificationPriority(fl.Field().String())
	})

	bv.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		switch models.UserRole(fl.Field().String()) {
		case models.RoleParent, models.RoleTeacher, models.RoleAdmin:
			return true
		}
		return false
	})

	bv.validate.RegisterValidation("term", func(fl validator.FieldLevel) bool {
		return models.ValidTerm(fl.Field().String())
	})

	// Expiry must be in the future when provided
	bv.validate.RegisterValidation("future_date", func(fl validator.FieldLevel) bool {
		field := fl.Field()

		if field.Kind() == reflect.Ptr && field.IsNil() {
			return true // Optional field
		}

		var t time.Time
		if field.Kind() == reflect.Ptr {
			t = field.Elem().Interface().(time.Time)
		} else {
			t = field.Interface().(time.Time)
		}

		return t.After(time.Now())
	})
}

// getErrorMessage returns user-friendly error messages
func (bv *BusinessValidator) getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", err.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())
	case "notification_type":
		return "must be general, academic, attendance, event, homework or behavior"
	case "notification_priority":
		return "must be low, normal, high or urgent"
	case "user_role":
		return "must be parent, teacher or admin"
	case "term":
		return "must be Term 1, Term 2 or Term 3"
	case "future_date":
		return "must be in the future"
	default:
		return fmt.Sprintf("validation failed for rule '%s'", err.Tag())
	}
}

// ValidateSendMessage validates a message send request
func (bv *BusinessValidator) ValidateSendMessage(req *models.SendMessageRequest) ValidationErrors {
	errors := bv.Validate(req)

	if strings.TrimSpace(req.Content) == "" {
		errors = append(errors, ValidationError{
			Field:   "content",
			Message: "cannot be blank",
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateNotificationCreate validates notification creation
func (bv *BusinessValidator) ValidateNotificationCreate(req *models.CreateNotificationRequest) ValidationErrors {
	errors := bv.Validate(req)

	if req.ExpiresAt != nil && !req.ExpiresAt.IsZero() && req.ExpiresAt.Before(time.Now()) {
		errors = append(errors, ValidationError{
			Field:   "expires_at",
			Message: "must be in the future",
			Value:   req.ExpiresAt,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateProgressRecord validates a progress record request
func (bv *BusinessValidator) ValidateProgressRecord(req *models.RecordProgressRequest) ValidationErrors {
	errors := bv.Validate(req)

	if req.AttendancePresent > req.AttendanceTotal {
		errors = append(errors, ValidationError{
			Field:   "attendance_present",
			Message: "cannot exceed attendance_total",
			Value:   req.AttendancePresent,
			Rule:    "business_logic",
		})
	}

	for i, a := range req.Assessments {
		if a.Score > a.MaxScore {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("assessments[%d].score", i),
				Message: "cannot exceed max_score",
				Value:   a.Score,
				Rule:    "business_logic",
			})
		}
	}

	return errors
}

// ValidateResourceUpload validates a resource upload request
func (bv *BusinessValidator) ValidateResourceUpload(req *models.UploadResourceRequest) ValidationErrors {
	errors := bv.Validate(req)

	for i, tag := range req.Tags {
		if strings.TrimSpace(tag) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("tags[%d]", i),
				Message: "tag cannot be empty",
				Value:   tag,
				Rule:    "business_logic",
			})
		}
	}

	return errors
}
