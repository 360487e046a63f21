// Package intake validates and stores third-party report submissions.
package intake

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/domain"
)

const tagAbsHTTPURL = "abs_http_url"

// Submission is the typed request schema for a new report.
type Submission struct {
	Title             string             `json:"title"           validate:"required,min=5,max=200"`
	Content           string             `json:"content"         validate:"max=2000"`
	LocationName      string             `json:"location_name"   validate:"required,min=2,max=100"`
	Latitude          *float64           `json:"latitude"        validate:"omitempty,min=-90,max=90"`
	Longitude         *float64           `json:"longitude"       validate:"omitempty,min=-180,max=180"`
	Category          domain.CategoryRef `json:"category"        validate:"-"`
	SubmitterEmail    string             `json:"submitter_email" validate:"required,max=320,email"`
	SourceURL         string             `json:"source_url"      validate:"required,url,abs_http_url"`
	ImageURL          string             `json:"image_url"       validate:"omitempty,url"`
	VerificationToken string             `json:"recaptcha_token" validate:"-"`
	RemoteIP          string             `json:"-"               validate:"-"`
}

// ValidReport is a submission that passed field validation. Coordinates
// are nil when the submitter omitted them.
type ValidReport struct {
	Title             string
	Content           string
	LocationName      string
	Latitude          *float64
	Longitude         *float64
	Category          domain.CategoryRef
	SubmitterEmail    string
	SourceURL         string
	ImageURL          string
	VerificationToken string
	RemoteIP          string
}

// Validator checks submissions against the schema.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator with field errors keyed by JSON name.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation(tagAbsHTTPURL, isAbsHTTPURL); err != nil {
		panic(fmt.Sprintf("register %s: %v", tagAbsHTTPURL, err))
	}
	return &Validator{validate: v}
}

// Validate trims the submission and checks every field. On failure it
// returns a *domain.ValidationError listing each rejected field.
func (v *Validator) Validate(s Submission) (ValidReport, error) {
	s = trimSubmission(s)
	verr := &domain.ValidationError{}

	if err := v.validate.Struct(s); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return ValidReport{}, fmt.Errorf("validate submission: %w", err)
		}
		for _, fe := range fieldErrs {
			verr.Add(fe.Field(), fieldMessage(fe))
		}
	}

	if s.Category.IsZero() {
		verr.Add("category", "category is required")
	} else if msg := s.Category.Validate(); msg != "" {
		verr.Add("category", msg)
	}

	if (s.Latitude == nil) != (s.Longitude == nil) {
		verr.Add("coordinates", "latitude and longitude must be given together")
	}

	if verr.HasErrors() {
		return ValidReport{}, verr
	}

	return ValidReport{
		Title:             s.Title,
		Content:           s.Content,
		LocationName:      s.LocationName,
		Latitude:          s.Latitude,
		Longitude:         s.Longitude,
		Category:          s.Category,
		SubmitterEmail:    s.SubmitterEmail,
		SourceURL:         s.SourceURL,
		ImageURL:          s.ImageURL,
		VerificationToken: s.VerificationToken,
		RemoteIP:          s.RemoteIP,
	}, nil
}

func trimSubmission(s Submission) Submission {
	s.Title = strings.TrimSpace(s.Title)
	s.Content = strings.TrimSpace(s.Content)
	s.LocationName = strings.TrimSpace(s.LocationName)
	s.SubmitterEmail = strings.TrimSpace(s.SubmitterEmail)
	s.SourceURL = strings.TrimSpace(s.SourceURL)
	s.ImageURL = strings.TrimSpace(s.ImageURL)
	s.VerificationToken = strings.TrimSpace(s.VerificationToken)
	s.Category.Value = strings.TrimSpace(s.Category.Value)
	return s
}

func isAbsHTTPURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case tagAbsHTTPURL:
		return "must be an absolute http or https URL"
	default:
		return "is invalid"
	}
}
