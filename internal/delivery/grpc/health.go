package grpc

import (
	"context"
	"time"

	"smartmart_service/pkg/db"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name reported next to the server-wide "" entry.
const ServiceName = "smartmart.SmartMart"

// HealthHandler reports SERVING while the database answers pings.
type HealthHandler struct {
	server   *health.Server
	pinger   db.Pinger
	interval time.Duration
	log      *logrus.Logger
}

func NewHealthHandler(pinger db.Pinger, interval time.Duration, logger *logrus.Logger) *HealthHandler {
	h := &HealthHandler{
		server:   health.NewServer(),
		pinger:   pinger,
		interval: interval,
		log:      logger,
	}
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

// Server returns the underlying health service, for registration and direct checks.
func (h *HealthHandler) Server() *health.Server {
	return h.server
}

// Probe pings the database once and updates the reported status.
func (h *HealthHandler) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := h.pinger.PingContext(ctx); err != nil {
		h.log.Warnf("gRPC Handler: Health probe failed: %v", err)
		h.set(healthpb.HealthCheckResponse_NOT_SERVING)
		return healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.set(healthpb.HealthCheckResponse_SERVING)
	return healthpb.HealthCheckResponse_SERVING
}

// Run probes every interval until ctx is done, then marks the service as shutting down.
func (h *HealthHandler) Run(ctx context.Context) {
	h.Probe(ctx)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			h.log.Info("gRPC Handler: Health prober stopped")
			return
		case <-ticker.C:
			h.Probe(ctx)
		}
	}
}

func (h *HealthHandler) set(status healthpb.HealthCheckResponse_ServingStatus) {
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
}

// NewServer builds the gRPC server with the health service and reflection.
func NewServer(h *HealthHandler, logger *logrus.Logger) *grpc.Server {
	s := grpc.NewServer()
	healthpb.RegisterHealthServer(s, h.server)
	reflection.Register(s)
	logger.Info("gRPC health and reflection services registered")
	return s
}
