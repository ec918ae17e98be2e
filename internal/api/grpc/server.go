package grpc

import (
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"fleetrent-backend/internal/api/grpc/interceptor"
)

// NewServer builds the gRPC server with health and reflection registered.
func NewServer(monitor *HealthMonitor) *grpc.Server {
	logging := interceptor.NewLoggingInterceptor(
		healthpb.Health_Check_FullMethodName,
	)

	s := grpc.NewServer(
		grpc.UnaryInterceptor(logging.Unary()),
	)
	healthpb.RegisterHealthServer(s, monitor.Server())

	// Register reflection service for grpcurl
	reflection.Register(s)
	return s
}
