// Package verification confirms bot-verification tokens with an external
// reCAPTCHA-compatible service.
package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/domain"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/logger"
)

// Outcome labels reported by Classify.
const (
	OutcomePassed       = "passed"
	OutcomeMissingToken = "missing_token"
	OutcomeRejected     = "rejected"
	OutcomeUnavailable  = "unavailable"
	OutcomeMisconfig    = "misconfigured"
	OutcomeSkipped      = "skipped"
)

const maxResponseBytes = 64 << 10

var (
	// ErrMissingToken means the submission carried no token.
	ErrMissingToken = fmt.Errorf("%w: token is required", domain.ErrVerification)
	// ErrRejected means the verifier judged the token invalid.
	ErrRejected = fmt.Errorf("%w: token rejected", domain.ErrVerification)
	// ErrUnavailable means no definite answer was obtained.
	ErrUnavailable = fmt.Errorf("%w: verifier unavailable", domain.ErrVerification)
	// ErrMisconfigured means the verifier secret is not set.
	ErrMisconfigured = fmt.Errorf("%w: verifier secret not configured", domain.ErrVerification)
)

// Verifier confirms a human-verification token.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// Config configures a RecaptchaVerifier.
type Config struct {
	Secret         string
	URL            string
	Timeout        time.Duration
	MinScore       float64
	ExpectedAction string
	Breaker        BreakerConfig
}

// RecaptchaVerifier calls the siteverify endpoint.
type RecaptchaVerifier struct {
	cfg     Config
	client  *http.Client
	breaker *Breaker
	log     logger.Logger
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	Score      *float64 `json:"score,omitempty"`
	Action     string   `json:"action,omitempty"`
	Hostname   string   `json:"hostname,omitempty"`
	ErrorCodes []string `json:"error-codes,omitempty"`
}

// NewRecaptchaVerifier creates a verifier. A nil client gets one bounded by
// cfg.Timeout.
func NewRecaptchaVerifier(cfg Config, client *http.Client, log logger.Logger) *RecaptchaVerifier {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	breakerCfg := cfg.Breaker
	breakerCfg.OnStateChange = func(from, to State) {
		log.Warn("Verification circuit state changed",
			logger.String("from", from.String()),
			logger.String("to", to.String()),
		)
	}

	return &RecaptchaVerifier{
		cfg:     cfg,
		client:  client,
		breaker: NewBreaker(breakerCfg),
		log:     log,
	}
}

// Verify returns nil only when the verifier positively confirmed the token.
// Every other outcome wraps domain.ErrVerification.
func (v *RecaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrMissingToken
	}
	if v.cfg.Secret == "" {
		v.log.Error("Verification secret is not configured")
		return ErrMisconfigured
	}

	if v.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.cfg.Timeout)
		defer cancel()
	}

	var resp *siteverifyResponse
	err := v.breaker.Execute(func() error {
		var callErr error
		resp, callErr = v.call(ctx, token, remoteIP)
		return callErr
	}, func(err error) bool {
		return errors.Is(err, ErrUnavailable)
	})
	if err != nil {
		if errors.Is(err, ErrCircuitOpen) {
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return err
	}

	return v.judge(resp)
}

func (v *RecaptchaVerifier) call(ctx context.Context, token, remoteIP string) (*siteverifyResponse, error) {
	form := url.Values{}
	form.Set("secret", v.cfg.Secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.cfg.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpResp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	if httpResp.StatusCode < http.StatusOK || httpResp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, httpResp.StatusCode)
	}

	var parsed siteverifyResponse
	if decodeErr := json.NewDecoder(io.LimitReader(httpResp.Body, maxResponseBytes)).Decode(&parsed); decodeErr != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrUnavailable, decodeErr)
	}
	return &parsed, nil
}

func (v *RecaptchaVerifier) judge(resp *siteverifyResponse) error {
	if !resp.Success {
		v.log.Info("Verification token rejected", logger.Strings("error_codes", resp.ErrorCodes))
		return ErrRejected
	}
	if resp.Score != nil && *resp.Score < v.cfg.MinScore {
		v.log.Info("Verification score below threshold", logger.Any("score", *resp.Score))
		return fmt.Errorf("%w: score %.2f below %.2f", ErrRejected, *resp.Score, v.cfg.MinScore)
	}
	if v.cfg.ExpectedAction != "" && resp.Action != "" && resp.Action != v.cfg.ExpectedAction {
		return fmt.Errorf("%w: unexpected action %q", ErrRejected, resp.Action)
	}
	return nil
}

// BreakerState exposes the breaker state for health reporting.
func (v *RecaptchaVerifier) BreakerState() State {
	return v.breaker.State()
}

// Classify maps a Verify result to an outcome label.
func Classify(err error) string {
	switch {
	case err == nil:
		return OutcomePassed
	case errors.Is(err, ErrMissingToken):
		return OutcomeMissingToken
	case errors.Is(err, ErrMisconfigured):
		return OutcomeMisconfig
	case errors.Is(err, ErrRejected):
		return OutcomeRejected
	default:
		return OutcomeUnavailable
	}
}
