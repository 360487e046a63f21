package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/domain"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/logger"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/metrics"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/notify"
)

// Decision outcome labels.
const (
	OutcomeApplied  = "applied"
	OutcomeConflict = "conflict"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// DefaultDecisionTimeout bounds a decision once it has started.
const DefaultDecisionTimeout = 10 * time.Second

// StatusStore applies conditional status transitions.
type StatusStore interface {
	TransitionStatus(
		ctx context.Context, id string, target domain.Status, notes *string, at time.Time,
	) (*domain.Report, bool, error)
	GetByID(ctx context.Context, id string) (*domain.Report, error)
}

// DecisionRequest is a moderator decision on one report.
// Moderator is the authenticated subject and is only logged.
type DecisionRequest struct {
	ReportID  string
	Decision  string
	Notes     *string
	Moderator string
}

// Engine applies approve/reject decisions to pending reports.
type Engine struct {
	store     StatusStore
	publisher notify.Publisher
	log       logger.Logger
	metrics   *metrics.Metrics
	timeout   time.Duration
	now       func() time.Time
}

// NewEngine creates a transition engine. publisher may be nil.
func NewEngine(store StatusStore, publisher notify.Publisher, log logger.Logger, m *metrics.Metrics) *Engine {
	return &Engine{
		store:     store,
		publisher: publisher,
		log:       log,
		metrics:   m,
		timeout:   DefaultDecisionTimeout,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Decide moves a pending report to approved or rejected. It returns
// *domain.ConflictError when the report is no longer pending and
// domain.ErrNotFound when it does not exist. Once started, the store call
// is not cancelled by ctx.
func (e *Engine) Decide(ctx context.Context, req DecisionRequest) (*domain.Report, error) {
	decision, id, notes, err := validateDecision(req)
	if err != nil {
		e.metrics.RecordDecision(strings.ToLower(strings.TrimSpace(req.Decision)), OutcomeInvalid)
		return nil, err
	}
	action := string(decision)

	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
	defer cancel()

	report, applied, err := e.store.TransitionStatus(runCtx, id, decision.Target(), notes, e.now())
	if err != nil {
		e.metrics.RecordDecision(action, OutcomeError)
		return nil, fmt.Errorf("apply %s: %w", action, err)
	}

	if !applied {
		return nil, e.explainMiss(runCtx, id, action)
	}

	e.metrics.RecordDecision(action, OutcomeApplied)
	e.log.Info("Moderation decision applied",
		logger.ReportID(id),
		logger.Decision(action),
		logger.Status(string(report.Status)),
		logger.String("moderator", req.Moderator),
	)

	if decision == domain.DecisionApprove {
		e.publish(runCtx, report)
	}
	return report, nil
}

// explainMiss distinguishes a missing report from one that is no longer
// pending.
func (e *Engine) explainMiss(ctx context.Context, id, action string) error {
	current, err := e.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			e.metrics.RecordDecision(action, OutcomeNotFound)
			return fmt.Errorf("report %s: %w", id, domain.ErrNotFound)
		}
		e.metrics.RecordDecision(action, OutcomeError)
		return fmt.Errorf("reload report: %w", err)
	}

	e.metrics.RecordDecision(action, OutcomeConflict)
	e.log.Info("Moderation decision on non-pending report",
		logger.ReportID(id),
		logger.Decision(action),
		logger.Status(string(current.Status)),
	)
	return &domain.ConflictError{ReportID: id, Current: current.Status}
}

func (e *Engine) publish(ctx context.Context, report *domain.Report) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, notify.ReportPublished(report, e.now())); err != nil {
		e.log.Warn("Failed to publish notification",
			logger.ReportID(report.ID),
			logger.Error(err),
		)
	}
}

func validateDecision(req DecisionRequest) (domain.Decision, string, *string, error) {
	verr := &domain.ValidationError{}

	decision, err := domain.ParseDecision(req.Decision)
	if err != nil {
		verr.Add("action", "must be approve or reject")
	}

	id := strings.TrimSpace(req.ReportID)
	if id == "" {
		verr.Add("id", "is required")
	} else if _, parseErr := uuid.Parse(id); parseErr != nil {
		verr.Add("id", "must be a UUID")
	}

	if verr.HasErrors() {
		return "", "", nil, verr
	}

	var notes *string
	if req.Notes != nil {
		if trimmed := strings.TrimSpace(*req.Notes); trimmed != "" {
			notes = &trimmed
		}
	}
	return decision, id, notes, nil
}
