package delivery

import (
	"context"
	"net/http"
	"time"

	"smartmart_service/internal/usecase"
	"smartmart_service/pkg/db"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type DashboardHandler struct {
	useCase usecase.DashboardUseCase
	log     *logrus.Logger
}

func NewDashboardHandler(uc usecase.DashboardUseCase, logger *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *DashboardHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/dashboard/metrics", h.GetMetrics)
}

func (h *DashboardHandler) GetMetrics(c *gin.Context) {
	metrics, err := h.useCase.GetMetrics(c.Request.Context())
	if err != nil {
		HandleError(c, h.log, "Failed to compute dashboard metrics", err)
		return
	}
	SuccessResponse(c, http.StatusOK, metrics)
}

type StatusHandler struct {
	pinger db.Pinger
	log    *logrus.Logger
}

func NewStatusHandler(pinger db.Pinger, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{pinger: pinger, log: logger}
}

func (h *StatusHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/", h.Root)
	router.GET("/healthz", h.Health)
}

func (h *StatusHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "running", "message": "SmartMart API is online"})
}

func (h *StatusHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.pinger.PingContext(ctx); err != nil {
		h.log.Warnf("Health check failed: %v", err)
		ErrorResponse(c, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
