// Package health reports whether the entity store is reachable, over gRPC
// for orchestrators and over HTTP for the API.
package health

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"gotube/internal/common"
)

// ServiceName is the gRPC health service name reported next to the overall "" entry.
const ServiceName = "gotube.api"

type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	pinger  Pinger
	health  *grpchealth.Server
	timeout time.Duration
	logger  *zap.Logger
}

func NewServer(pinger Pinger, logger *zap.Logger) *Server {
	return &Server{
		pinger:  pinger,
		health:  grpchealth.NewServer(),
		timeout: 2 * time.Second,
		logger:  logger,
	}
}

// Register mounts the health service and reflection on gs.
func (s *Server) Register(gs *grpc.Server) {
	healthpb.RegisterHealthServer(gs, s.health)
	reflection.Register(gs)
}

// Check pings the store once and publishes the result.
func (s *Server) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.pinger.Ping(ctx); err != nil {
		s.logger.Warn("store ping failed", zap.Error(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	return status == healthpb.HealthCheckResponse_SERVING
}

// Run re-checks every interval until ctx is done, then marks everything as not serving.
func (s *Server) Run(ctx context.Context, interval time.Duration) {
	s.Check(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.health.Shutdown()
			return
		case <-ticker.C:
			s.Check(ctx)
		}
	}
}

// HealthServer exposes the underlying gRPC health implementation.
func (s *Server) HealthServer() healthpb.HealthServer {
	return s.health
}

// HTTPHandler answers GET /healthcheck.
func (s *Server) HTTPHandler(w http.ResponseWriter, r *http.Request) {
	if !s.Check(r.Context()) {
		common.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"}, "store is unreachable")
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"}, "healthy")
}

// UnaryLogger logs every unary gRPC call.
func UnaryLogger(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.Duration("duration", time.Since(start)),
		}
		if err != nil {
			logger.Warn("grpc request failed", append(fields, zap.Error(err))...)
		} else {
			logger.Debug("grpc request", fields...)
		}
		return resp, err
	}
}
