package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"fleetrent-backend/internal/logger"
	"fleetrent-backend/internal/repository"
)

// ServiceName is the health service name reported next to the overall "" entry.
const ServiceName = "fleetrent.BookingEngine"

// HealthMonitor reports SERVING while the database answers pings.
type HealthMonitor struct {
	server   *health.Server
	db       repository.Pinger
	interval time.Duration
	timeout  time.Duration
}

func NewHealthMonitor(db repository.Pinger, interval time.Duration) *HealthMonitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	m := &HealthMonitor{
		server:   health.NewServer(),
		db:       db,
		interval: interval,
		timeout:  2 * time.Second,
	}
	m.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return m
}

// Server is the grpc.health.v1 implementation to register.
func (m *HealthMonitor) Server() *health.Server {
	return m.server
}

// Check pings the database once and updates the reported status.
func (m *HealthMonitor) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := m.db.Ping(ctx); err != nil {
		logger.Warn("Database ping failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	m.set(status)
	return status
}

// Run checks on every interval until ctx is done, then reports NOT_SERVING.
func (m *HealthMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			m.server.Shutdown()
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

func (m *HealthMonitor) set(status healthpb.HealthCheckResponse_ServingStatus) {
	m.server.SetServingStatus("", status)
	m.server.SetServingStatus(ServiceName, status)
}
