package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/saai/forecast-backend/internal/service"
)

type PredictionHandler struct {
	service *service.ForecastService
}

func NewPredictionHandler(svc *service.ForecastService) *PredictionHandler {
	return &PredictionHandler{service: svc}
}

type predictRequest struct {
	ProductCode string `json:"product_code" binding:"required"`
}

// PredictDemand serves the on-demand prediction path: cache first, then
// compute. Token validation happens upstream; the gateway forwards the
// tenant in X-Tenant-ID.
func (h *PredictionHandler) PredictDemand(c *gin.Context) {
	tenantID := tenantFrom(c)
	if tenantID == "" {
		errorResponse(c, http.StatusBadRequest, "missing tenant")
		return
	}

	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "product_code is required")
		return
	}

	prediction, err := h.service.Predict(c.Request.Context(), tenantID, req.ProductCode)
	if err != nil {
		if errors.Is(err, service.ErrNoHistory) {
			errorResponse(c, http.StatusBadRequest, "not enough sales history to forecast demand for "+req.ProductCode)
			return
		}
		log.Error().Err(err).Str("tenant", tenantID).Str("product", req.ProductCode).
			Msg("prediction failed")
		errorResponse(c, http.StatusInternalServerError, "failed to generate prediction")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product_code":     prediction.ProductCode,
		"demand_tomorrow":  prediction.DemandTomorrow,
		"demand_next_week": prediction.DemandNextWeek,
		"method":           prediction.Method,
		"confidence":       prediction.Confidence,
	})
}

func (h *PredictionHandler) ListPredictions(c *gin.Context) {
	tenantID := tenantFrom(c)
	if tenantID == "" {
		errorResponse(c, http.StatusBadRequest, "missing tenant")
		return
	}

	limit := 100
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "100")); err == nil && v > 0 {
		limit = v
	}

	predictions, err := h.service.ListPredictions(c.Request.Context(), tenantID, limit)
	if err != nil {
		log.Error().Err(err).Str("tenant", tenantID).Msg("list predictions failed")
		errorResponse(c, http.StatusInternalServerError, "failed to list predictions")
		return
	}

	c.JSON(http.StatusOK, gin.H{"predictions": predictions, "count": len(predictions)})
}

func (h *PredictionHandler) GetPrediction(c *gin.Context) {
	tenantID := tenantFrom(c)
	if tenantID == "" {
		errorResponse(c, http.StatusBadRequest, "missing tenant")
		return
	}

	code := strings.TrimSpace(c.Param("code"))
	prediction, err := h.service.GetPrediction(c.Request.Context(), tenantID, code)
	if err != nil {
		log.Error().Err(err).Str("tenant", tenantID).Str("product", code).
			Msg("get prediction failed")
		errorResponse(c, http.StatusInternalServerError, "failed to read prediction")
		return
	}
	if prediction == nil {
		errorResponse(c, http.StatusNotFound, "no live prediction for "+code)
		return
	}

	c.JSON(http.StatusOK, prediction)
}

func (h *PredictionHandler) GetAlertPreview(c *gin.Context) {
	tenantID := tenantFrom(c)
	if tenantID == "" {
		errorResponse(c, http.StatusBadRequest, "missing tenant")
		return
	}

	code := strings.TrimSpace(c.Param("code"))
	alert, err := h.service.AlertPreview(c.Request.Context(), tenantID, code)
	if err != nil {
		log.Error().Err(err).Str("tenant", tenantID).Str("product", code).
			Msg("alert preview failed")
		errorResponse(c, http.StatusInternalServerError, "failed to evaluate alert")
		return
	}
	if alert == nil {
		errorResponse(c, http.StatusNotFound, "no live prediction for "+code)
		return
	}

	c.JSON(http.StatusOK, alert)
}

func (h *PredictionHandler) ListNotifications(c *gin.Context) {
	tenantID := tenantFrom(c)
	if tenantID == "" {
		errorResponse(c, http.StatusBadRequest, "missing tenant")
		return
	}

	limit := 50
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil && v > 0 {
		limit = v
	}

	notifications, err := h.service.ListNotifications(c.Request.Context(), tenantID, limit)
	if err != nil {
		log.Error().Err(err).Str("tenant", tenantID).Msg("list notifications failed")
		errorResponse(c, http.StatusInternalServerError, "failed to list notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "count": len(notifications)})
}

func tenantFrom(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader("X-Tenant-ID"))
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"error": message})
}
