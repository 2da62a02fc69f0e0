package server

import (
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// HealthGRPC serves grpc.health.v1 for orchestrators that probe over gRPC.
type HealthGRPC struct {
	server *grpc.Server
	health *health.Server
	logger *slog.Logger
}

func NewHealthGRPC(logger *slog.Logger) *HealthGRPC {
	if logger == nil {
		logger = slog.Default()
	}
	gs := grpc.NewServer()
	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(gs, hs)
	// Empty string means overall server health.
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	return &HealthGRPC{server: gs, health: hs, logger: logger}
}

// Serve blocks until the listener fails or Stop is called.
func (h *HealthGRPC) Serve(lis net.Listener) error {
	h.logger.Info("grpc health listening", "addr", lis.Addr().String())
	return h.server.Serve(lis)
}

// Stop marks everything NOT_SERVING and drains open streams.
func (h *HealthGRPC) Stop() {
	h.health.Shutdown()
	h.server.GracefulStop()
}
