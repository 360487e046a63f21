package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/auth"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/domain"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/logger"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/moderation"
)

// QueueReader reads the moderation queue.
type QueueReader interface {
	List(ctx context.Context, query moderation.QueueQuery) ([]domain.ReportSummary, error)
	Get(ctx context.Context, id, locale string) (*domain.ReportSummary, error)
}

// Decider applies moderator decisions.
type Decider interface {
	Decide(ctx context.Context, req moderation.DecisionRequest) (*domain.Report, error)
}

// ModerationHandler serves the moderator endpoints.
type ModerationHandler struct {
	queue         QueueReader
	engine        Decider
	defaultLocale string
	logger        logger.Logger
}

// NewModerationHandler creates a ModerationHandler.
func NewModerationHandler(queue QueueReader, engine Decider, defaultLocale string, log logger.Logger) *ModerationHandler {
	return &ModerationHandler{queue: queue, engine: engine, defaultLocale: defaultLocale, logger: log}
}

func (h *ModerationHandler) locale(c *gin.Context) string {
	return requestLocale(c, h.defaultLocale)
}

// List handles GET /api/v1/moderation/reports.
func (h *ModerationHandler) List(c *gin.Context) {
	query, err := moderation.ParseQueueQuery(
		c.Query("status"),
		c.Query("search"),
		c.Query("limit"),
		c.Query("offset"),
		h.locale(c),
	)
	if err != nil {
		writeValidation(c, err)
		return
	}

	summaries, err := h.queue.List(c.Request.Context(), query)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			writeValidation(c, err)
			return
		}
		logger.FromContext(c.Request.Context()).Error("Failed to list moderation queue", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reports"})
		return
	}

	if summaries == nil {
		summaries = []domain.ReportSummary{}
	}
	c.JSON(http.StatusOK, summaries)
}

// Get handles GET /api/v1/moderation/reports/:id.
func (h *ModerationHandler) Get(c *gin.Context) {
	id := c.Param("id")

	summary, err := h.queue.Get(c.Request.Context(), id, h.locale(c))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
			return
		}
		logger.FromContext(c.Request.Context()).Error("Failed to get report",
			logger.ReportID(id),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get report"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

type decisionRequest struct {
	ID     string  `json:"id"`
	Action string  `json:"action"`
	Notes  *string `json:"notes"`
}

// Decide handles PATCH and POST /api/v1/moderation/reports.
func (h *ModerationHandler) Decide(c *gin.Context) {
	log := logger.FromContext(c.Request.Context())

	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	report, err := h.engine.Decide(c.Request.Context(), moderation.DecisionRequest{
		ReportID:  req.ID,
		Decision:  req.Action,
		Notes:     req.Notes,
		Moderator: auth.Subject(c),
	})
	if err != nil {
		var (
			verr     *domain.ValidationError
			conflict *domain.ConflictError
		)
		switch {
		case errors.As(err, &verr):
			writeValidation(c, err)
		case errors.As(err, &conflict):
			c.JSON(http.StatusConflict, gin.H{
				"error":          "Report is no longer pending",
				"current_status": conflict.Current,
			})
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		default:
			log.Error("Failed to apply decision",
				logger.ReportID(req.ID),
				logger.Decision(req.Action),
				logger.Error(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update report"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Report " + string(report.Status),
		"data":    report,
	})
}

func writeValidation(c *gin.Context, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": verr.Fields})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
