package interceptor

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"fleetrent-backend/internal/logger"
)

// LoggingInterceptor logs every unary call and turns handler panics into
// codes.Internal.
type LoggingInterceptor struct {
	// Methods logged at debug level, typically health probes.
	quiet map[string]bool
}

func NewLoggingInterceptor(quietMethods ...string) *LoggingInterceptor {
	quiet := make(map[string]bool, len(quietMethods))
	for _, m := range quietMethods {
		quiet[m] = true
	}
	return &LoggingInterceptor{quiet: quiet}
}

// Unary returns a server interceptor function to log unary RPCs
func (i *LoggingInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("gRPC handler panicked", "method", info.FullMethod, "panic", r)
				err = status.Error(codes.Internal, "internal error")
			}

			code := status.Code(err)
			args := []any{"method", info.FullMethod, "code", code.String(), "duration_ms", time.Since(start).Milliseconds()}
			switch {
			case code == codes.Internal || code == codes.Unknown:
				logger.Error("gRPC call failed", append(args, "error", err)...)
			case i.quiet[info.FullMethod]:
				logger.Debug("gRPC call", args...)
			default:
				logger.Info("gRPC call", args...)
			}
		}()

		return handler(ctx, req)
	}
}
