package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/ledger-auditor/internal/domain/entity"
)

// dateLayout is the format of the from/to query parameters
const dateLayout = "2006-01-02"

// EntryStore persists ingested entries
type EntryStore interface {
	Save(ctx context.Context, entry entity.Entry) error
}

// HistoryReader reads the audit history of an entry
type HistoryReader interface {
	GetByEntryID(ctx context.Context, entryID string) ([]*entity.ResultRecord, error)
}

// RealTimeFeed accepts batches for real-time auditing and reacts to frequency changes
type RealTimeFeed interface {
	Accepting() bool
	Submit(ctx context.Context, entries []entity.Entry) error
	Reload() error
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	deps   Dependencies
	logger Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(deps Dependencies, logger Logger) *Handlers {
	return &Handlers{deps: deps, logger: logger}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// EntriesRequest is the body of the batch audit and ingest endpoints
type EntriesRequest struct {
	Entries []entity.Entry `json:"entries" binding:"required"`
}

// BatchAuditResponse is the result of a synchronous batch audit
type BatchAuditResponse struct {
	Results      []entity.VerificationResult `json:"results"`
	StatusCounts entity.StatusCounts         `json:"status_counts"`
}

// IngestResponse reports how many entries were stored and whether they were queued
type IngestResponse struct {
	Stored int  `json:"stored"`
	Queued bool `json:"queued"`
}

// PeriodQuery holds the optional period bounds of a full audit
type PeriodQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// GetConfig handles GET /api/config
func (h *Handlers) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Success: true, Data: h.deps.Audits.Config()})
}

// UpdateConfig handles PATCH /api/config
func (h *Handlers) UpdateConfig(c *gin.Context) {
	var patch entity.AuditConfigurationPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.badRequest(c, "invalid configuration body", err)
		return
	}

	cfg, err := h.deps.Audits.Configure(c.Request.Context(), patch)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidConfiguration) {
			h.badRequest(c, err.Error(), err)
			return
		}
		h.internalError(c, "failed to update configuration", err)
		return
	}

	if patch.Frequency != nil && h.deps.Feed != nil {
		if err := h.deps.Feed.Reload(); err != nil {
			h.internalError(c, "configuration saved but monitor reload failed", err)
			return
		}
	}

	h.logger.Info("Audit configuration updated", "frequency", cfg.Frequency, "level", cfg.ValidationLevel)
	c.JSON(http.StatusOK, Response{Success: true, Data: cfg})
}

// AuditBatch handles POST /api/audit/batch
func (h *Handlers) AuditBatch(c *gin.Context) {
	var req EntriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	results, err := h.deps.Audits.AuditBatch(c.Request.Context(), req.Entries)
	if err != nil {
		h.internalError(c, "audit failed: "+err.Error(), err)
		return
	}

	var counts entity.StatusCounts
	for _, r := range results {
		counts.Add(r.Status)
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    BatchAuditResponse{Results: results, StatusCounts: counts},
	})
}

// IngestEntries handles POST /api/entries. Entries are stored, then queued
// for auditing when the monitor runs in real-time mode.
func (h *Handlers) IngestEntries(c *gin.Context) {
	var req EntriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	for _, e := range req.Entries {
		if e.ID == "" || e.ClientID == "" {
			h.badRequest(c, "every entry needs id and client_id", nil)
			return
		}
	}

	ctx := c.Request.Context()
	for _, e := range req.Entries {
		if err := h.deps.Entries.Save(ctx, e); err != nil {
			h.internalError(c, "failed to store entry "+e.ID, err)
			return
		}
	}

	queued := false
	if h.deps.Feed != nil && h.deps.Feed.Accepting() && len(req.Entries) > 0 {
		if err := h.deps.Feed.Submit(ctx, req.Entries); err != nil {
			h.internalError(c, "failed to queue entries", err)
			return
		}
		queued = true
	}

	c.JSON(http.StatusAccepted, Response{
		Success: true,
		Data:    IngestResponse{Stored: len(req.Entries), Queued: queued},
	})
}

// EntryHistory handles GET /api/entries/:id/history
func (h *Handlers) EntryHistory(c *gin.Context) {
	records, err := h.deps.History.GetByEntryID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.internalError(c, "failed to read history", err)
		return
	}
	if len(records) == 0 {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "no audit history for entry"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: records})
}

// RunFullAudit handles POST /api/clients/:id/audit
func (h *Handlers) RunFullAudit(c *gin.Context) {
	clientID := c.Param("id")

	var q PeriodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.badRequest(c, "invalid query parameters", err)
		return
	}
	period, err := q.period()
	if err != nil {
		h.badRequest(c, err.Error(), err)
		return
	}

	h.logger.Info("Triggering full audit", "client_id", clientID)

	summary, err := h.deps.Audits.RunFullAudit(c.Request.Context(), clientID, period)
	if err != nil {
		h.internalError(c, "audit failed: "+err.Error(), err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: summary})
}

// ClassifyClient handles POST /api/clients/:id/classify
func (h *Handlers) ClassifyClient(c *gin.Context) {
	report, err := h.deps.Classification.ClassifyClient(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.internalError(c, "classification failed: "+err.Error(), err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: report})
}

// period parses the query into a Period. Both bounds are required together.
func (q PeriodQuery) period() (*entity.Period, error) {
	if q.From == "" && q.To == "" {
		return nil, nil
	}
	if q.From == "" || q.To == "" {
		return nil, errors.New("from and to must be given together")
	}

	from, err := time.Parse(dateLayout, q.From)
	if err != nil {
		return nil, errors.New("invalid from date, expected YYYY-MM-DD")
	}
	to, err := time.Parse(dateLayout, q.To)
	if err != nil {
		return nil, errors.New("invalid to date, expected YYYY-MM-DD")
	}
	if to.Before(from) {
		return nil, errors.New("to must not be before from")
	}
	return &entity.Period{From: from, To: to}, nil
}

func (h *Handlers) badRequest(c *gin.Context, msg string, err error) {
	h.logger.Error("Bad request", "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}

func (h *Handlers) internalError(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, Response{Success: false, Error: msg})
}
