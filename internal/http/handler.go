package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jaemin/maintbilling/internal/http/middleware"
	"github.com/jaemin/maintbilling/internal/schedule"
	"github.com/jaemin/maintbilling/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	billings *service.BillingService
	log      zerolog.Logger
}

func NewHandler(billings *service.BillingService, log zerolog.Logger) *Handler {
	return &Handler{billings: billings, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.POST("/billings/generate", h.generate)
	protected.GET("/billings", h.listMonth)
	protected.GET("/billings/warnings", h.warnings)
	protected.GET("/billings/missing", h.missing)
	protected.POST("/billings/export", h.exportMonth)
	protected.POST("/billings/import", h.importWorkbook)
	protected.POST("/billings/:id/confirm", h.confirm)
	protected.POST("/billings/:id/lock", h.lock)
	protected.POST("/billings/:id/cancel", h.cancel)
	protected.POST("/billings/:id/override", h.override)
	protected.GET("/billings/:id/statement", h.statement)
	protected.GET("/summary/month", h.monthlySummary)
	protected.GET("/summary/year", h.yearlySummary)
}

type generateRequest struct {
	Month   string `json:"month" binding:"required"`
	Persist bool   `json:"persist"`
}

func (h *Handler) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	month, err := parseMonth(req.Month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month, expected YYYY-MM"})
		return
	}

	result, err := h.billings.GenerateMonth(c.Request.Context(), month, req.Persist)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) listMonth(c *gin.Context) {
	month, err := parseMonth(c.Query("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month, expected YYYY-MM"})
		return
	}

	records, err := h.billings.ListMonth(c.Request.Context(), month)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"month": month, "billings": records})
}

func (h *Handler) warnings(c *gin.Context) {
	month, err := parseMonth(c.Query("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month, expected YYYY-MM"})
		return
	}

	reports, err := h.billings.WarningsForMonth(c.Request.Context(), month)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"month": month, "warnings": reports})
}

func (h *Handler) missing(c *gin.Context) {
	month, err := parseMonth(c.Query("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month, expected YYYY-MM"})
		return
	}

	missing, err := h.billings.MissingForMonth(c.Request.Context(), month)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"month": month, "missing": missing})
}

func (h *Handler) confirm(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid billing id"})
		return
	}

	updated, err := h.billings.Confirm(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) lock(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid billing id"})
		return
	}

	updated, err := h.billings.Lock(c.Request.Context(), id, principal.Name)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) cancel(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid billing id"})
		return
	}

	if err := h.billings.Cancel(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

type overrideRequest struct {
	Amount      *string `json:"amount"`
	SalesDate   *string `json:"sales_date"`
	RequestDate *string `json:"request_date"`
	Memo        *string `json:"memo"`
	AllowLocked bool    `json:"allow_locked"`
}

func (h *Handler) override(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid billing id"})
		return
	}

	var req overrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.OverrideInput{
		BillingID:   id,
		Memo:        req.Memo,
		AllowLocked: req.AllowLocked,
		By:          principal.Name,
	}
	if req.Amount != nil {
		amount, err := decimal.NewFromString(strings.TrimSpace(*req.Amount))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
			return
		}
		input.Amount = &amount
	}
	if req.SalesDate != nil {
		date, err := parseDate(*req.SalesDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sales_date"})
			return
		}
		input.SalesDate = &date
	}
	if req.RequestDate != nil {
		date, err := parseDate(*req.RequestDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request_date"})
			return
		}
		input.RequestDate = &date
	}

	updated, err := h.billings.Override(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) monthlySummary(c *gin.Context) {
	month, err := parseMonth(c.Query("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month, expected YYYY-MM"})
		return
	}

	summary, err := h.billings.MonthlySummary(c.Request.Context(), month)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) yearlySummary(c *gin.Context) {
	year, err := strconv.Atoi(strings.TrimSpace(c.Query("year")))
	if err != nil || year < 2000 || year > 2200 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return
	}

	summary, err := h.billings.YearlySummary(c.Request.Context(), year)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

type exportRequest struct {
	Month string `json:"month" binding:"required"`
}

func (h *Handler) exportMonth(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	month, err := parseMonth(req.Month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month, expected YYYY-MM"})
		return
	}

	result, err := h.billings.ExportMonth(c.Request.Context(), month)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, xlsxContentType, result.Content)
}

func (h *Handler) importWorkbook(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.billings.ImportWorkbook(c.Request.Context(), data)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) statement(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid billing id"})
		return
	}

	result, err := h.billings.Statement(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrBillingLocked), errors.Is(err, service.ErrAlreadyFinalized):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("billing request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseID(c *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(c.Param("id")))
}

func parseMonth(raw string) (schedule.Month, error) {
	return schedule.ParseMonth(strings.TrimSpace(raw))
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
