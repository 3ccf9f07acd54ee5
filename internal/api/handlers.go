package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"quickflip/server/internal/database"
	"quickflip/server/internal/deals"
	"quickflip/server/internal/models"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type Handler struct {
	service *deals.Service
	logger  *logrus.Logger
}

func NewHandler(service *deals.Service, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "QuickFlip API"})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// TestDatabase checks storage connectivity by reading a single buyer.
func (h *Handler) TestDatabase(c *gin.Context) {
	buyers, err := h.service.SampleBuyers(c.Request.Context(), 1)
	if err != nil {
		entryFrom(c).WithError(err).Error("Database connectivity check failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "buyers_sample": buyers})
}

func (h *Handler) RegisterBuyer(c *gin.Context) {
	var req buyerRequest
	if !h.bind(c, &req) {
		return
	}

	id, err := h.service.RegisterBuyer(c.Request.Context(), req.toModel())
	if err != nil {
		h.fail(c, err, "Failed to register buyer")
		return
	}

	c.JSON(http.StatusOK, gin.H{"buyer_id": id})
}

func (h *Handler) SubmitProperty(c *gin.Context) {
	var req propertyRequest
	if !h.bind(c, &req) {
		return
	}

	resp, err := h.service.SubmitProperty(c.Request.Context(), req.toModel())
	if err != nil {
		h.fail(c, err, "Failed to submit property")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetDeal(c *gin.Context) {
	deal, err := h.service.GetDeal(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Failed to get deal")
		return
	}
	c.JSON(http.StatusOK, deal)
}

func (h *Handler) ListDeals(c *gin.Context) {
	status := models.DealStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultListLimit)))
	if err != nil || limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	list, err := h.service.ListDeals(c.Request.Context(), status, limit)
	if err != nil {
		h.fail(c, err, "Failed to list deals")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) ReviewDeal(c *gin.Context) {
	var req reviewRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.service.ReviewDeal(c.Request.Context(), c.Param("id"), req.toModel())
	if err != nil {
		h.fail(c, err, "Failed to review deal")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) CloseDeal(c *gin.Context) {
	var req closeRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.service.CloseDeal(c.Request.Context(), c.Param("id"), req.toModel())
	if err != nil {
		h.fail(c, err, "Failed to close deal")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		entryFrom(c).WithError(err).Warn("Invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return false
	}
	return true
}

// fail maps service errors onto HTTP statuses. Storage failures surface their
// message as a 500.
func (h *Handler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Deal not found"})
	case errors.Is(err, deals.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		entryFrom(c).WithError(err).Error(msg)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
