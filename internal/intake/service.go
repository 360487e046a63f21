package intake

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/domain"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/logger"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/metrics"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/verification"
)

// SuccessMessage is returned with every accepted submission.
const SuccessMessage = "Report submitted successfully and is awaiting moderation"

// Submission outcome labels.
const (
	OutcomeAccepted         = "accepted"
	OutcomeInvalid          = "invalid"
	OutcomeInvalidReference = "invalid_reference"
	OutcomeVerification     = "verification_failed"
	OutcomeStorage          = "storage_error"
)

// CategoryLookup resolves category references.
type CategoryLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	GetByKey(ctx context.Context, key string) (*domain.Category, error)
}

// ReportCreator persists new reports.
type ReportCreator interface {
	Create(ctx context.Context, report *domain.Report) error
}

// Options configures a Service.
type Options struct {
	// RequireVerification is honoured as false only when Debug is true.
	RequireVerification bool
	Debug               bool
	DefaultLatitude     float64
	DefaultLongitude    float64
}

// SubmitResult is returned for an accepted submission.
type SubmitResult struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Service accepts submissions and stores them as pending reports.
type Service struct {
	validator  *Validator
	verifier   verification.Verifier
	categories CategoryLookup
	reports    ReportCreator
	opts       Options
	log        logger.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewService creates an intake service. A nil verifier fails every
// submission that requires verification.
func NewService(
	validator *Validator,
	verifier verification.Verifier,
	categories CategoryLookup,
	reports ReportCreator,
	opts Options,
	log logger.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		validator:  validator,
		verifier:   verifier,
		categories: categories,
		reports:    reports,
		opts:       opts,
		log:        log,
		metrics:    m,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates, verifies and stores a submission. Nothing is stored
// when any step fails.
func (s *Service) Submit(ctx context.Context, sub Submission) (SubmitResult, error) {
	valid, err := s.validator.Validate(sub)
	if err != nil {
		s.metrics.RecordSubmission(OutcomeInvalid)
		return SubmitResult{}, err
	}

	if verifyErr := s.verify(ctx, valid); verifyErr != nil {
		s.metrics.RecordSubmission(OutcomeVerification)
		return SubmitResult{}, verifyErr
	}

	category, err := s.resolveCategory(ctx, valid.Category)
	if err != nil {
		s.metrics.RecordSubmission(outcomeFor(err))
		return SubmitResult{}, err
	}

	report := s.buildReport(valid, category)
	if createErr := s.reports.Create(ctx, report); createErr != nil {
		s.metrics.RecordSubmission(outcomeFor(createErr))
		return SubmitResult{}, fmt.Errorf("store report: %w", createErr)
	}

	s.metrics.RecordSubmission(OutcomeAccepted)
	s.log.Info("Report submitted",
		logger.ReportID(report.ID),
		logger.String("category_key", category.Key),
	)

	return SubmitResult{ID: report.ID, Message: SuccessMessage}, nil
}

func (s *Service) verify(ctx context.Context, valid ValidReport) error {
	if !s.opts.RequireVerification && s.opts.Debug {
		s.metrics.RecordVerification(verification.OutcomeSkipped)
		return nil
	}

	var err error
	if s.verifier == nil {
		err = verification.ErrMisconfigured
	} else {
		err = s.verifier.Verify(ctx, valid.VerificationToken, valid.RemoteIP)
	}
	s.metrics.RecordVerification(verification.Classify(err))

	if err != nil {
		s.log.Warn("Submission failed verification", logger.Error(err))
		if !errors.Is(err, domain.ErrVerification) {
			return fmt.Errorf("%w: %w", domain.ErrVerification, err)
		}
		return err
	}
	return nil
}

func (s *Service) resolveCategory(ctx context.Context, ref domain.CategoryRef) (*domain.Category, error) {
	var (
		category *domain.Category
		err      error
	)
	switch ref.Kind {
	case domain.CategoryRefID:
		category, err = s.categories.GetByID(ctx, ref.Value)
	case domain.CategoryRefKey:
		category, err = s.categories.GetByKey(ctx, ref.Value)
	default:
		return nil, fmt.Errorf("category kind %q: %w", ref.Kind, domain.ErrInvalidReference)
	}

	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("category %s %q: %w", ref.Kind, ref.Value, domain.ErrInvalidReference)
		}
		return nil, fmt.Errorf("resolve category: %w", err)
	}
	return category, nil
}

func (s *Service) buildReport(valid ValidReport, category *domain.Category) *domain.Report {
	lat, lon := s.opts.DefaultLatitude, s.opts.DefaultLongitude
	if valid.Latitude != nil && valid.Longitude != nil {
		lat, lon = *valid.Latitude, *valid.Longitude
	}

	return &domain.Report{
		ID:             uuid.New().String(),
		Title:          valid.Title,
		Content:        valid.Content,
		LocationName:   valid.LocationName,
		Latitude:       lat,
		Longitude:      lon,
		CategoryID:     category.ID,
		SubmitterEmail: valid.SubmitterEmail,
		SourceURL:      valid.SourceURL,
		ImageURL:       valid.ImageURL,
		Status:         domain.StatusPending,
		CreatedAt:      s.now(),
	}
}

func outcomeFor(err error) string {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return OutcomeInvalid
	case errors.Is(err, domain.ErrInvalidReference):
		return OutcomeInvalidReference
	case errors.Is(err, domain.ErrVerification):
		return OutcomeVerification
	default:
		return OutcomeStorage
	}
}
