// Package handlers implements the newsdesk HTTP handlers.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/domain"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/intake"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/logger"
)

const actionView = "view"

// Submitter accepts new report submissions.
type Submitter interface {
	Submit(ctx context.Context, sub intake.Submission) (intake.SubmitResult, error)
}

// ViewRecorder counts report views.
type ViewRecorder interface {
	Record(ctx context.Context, reportID string, signal domain.VisitorSignal) (bool, error)
}

// ReportHandler serves the public report endpoints.
type ReportHandler struct {
	intake Submitter
	views  ViewRecorder
	logger logger.Logger
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(submitter Submitter, views ViewRecorder, log logger.Logger) *ReportHandler {
	return &ReportHandler{intake: submitter, views: views, logger: log}
}

type submitRequest struct {
	Title          string              `json:"title"`
	Content        string              `json:"content"`
	LocationName   string              `json:"location_name"`
	Latitude       *float64            `json:"latitude"`
	Longitude      *float64            `json:"longitude"`
	CategoryID     string              `json:"category_id"`
	Category       *domain.CategoryRef `json:"category"`
	SubmitterEmail string              `json:"submitter_email"`
	SourceURL      string              `json:"source_url"`
	ImageURL       string              `json:"image_url"`
	RecaptchaToken string              `json:"recaptcha_token"`
}

// categoryRef prefers the explicit tagged reference. A bare category_id
// that parses as a UUID is an id, anything else a key.
func (r submitRequest) categoryRef() domain.CategoryRef {
	if r.Category != nil && !r.Category.IsZero() {
		return *r.Category
	}
	raw := strings.TrimSpace(r.CategoryID)
	if raw == "" {
		return domain.CategoryRef{}
	}
	if _, err := uuid.Parse(raw); err == nil {
		return domain.NewCategoryID(raw)
	}
	return domain.NewCategoryKey(raw)
}

// Submit handles POST /api/v1/reports.
func (h *ReportHandler) Submit(c *gin.Context) {
	log := logger.FromContext(c.Request.Context())

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug("Invalid submission body", logger.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.intake.Submit(c.Request.Context(), intake.Submission{
		Title:             req.Title,
		Content:           req.Content,
		LocationName:      req.LocationName,
		Latitude:          req.Latitude,
		Longitude:         req.Longitude,
		Category:          req.categoryRef(),
		SubmitterEmail:    req.SubmitterEmail,
		SourceURL:         req.SourceURL,
		ImageURL:          req.ImageURL,
		VerificationToken: req.RecaptchaToken,
		RemoteIP:          c.ClientIP(),
	})
	if err != nil {
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": verr.Fields})
		case errors.Is(err, domain.ErrInvalidReference):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category"})
		case errors.Is(err, domain.ErrVerification):
			log.Warn("Submission verification failed", logger.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit report"})
		default:
			log.Error("Failed to submit report", logger.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit report"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": result.Message,
		"id":      result.ID,
	})
}

type actionRequest struct {
	Action string `json:"action"`
}

// RecordAction handles POST /api/v1/reports/:id/actions. The only action
// is "view"; success is false when the view was deduplicated.
func (h *ReportHandler) RecordAction(c *gin.Context) {
	log := logger.FromContext(c.Request.Context())
	id := c.Param("id")

	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}
	if strings.ToLower(strings.TrimSpace(req.Action)) != actionView {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Unknown action"})
		return
	}

	counted, err := h.views.Record(c.Request.Context(), id, visitorSignal(c))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Report not found"})
			return
		}
		log.Error("Failed to record view", logger.ReportID(id), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to record view"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": counted})
}
