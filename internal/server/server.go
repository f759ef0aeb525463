package server

import (
	"net"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the gRPC health service name reported for the payment API.
const ServiceName = "fixgo.payments"

// HealthServer exposes the dependency monitor over the standard gRPC health
// protocol so orchestrators can probe the service without HTTP.
type HealthServer struct {
	grpcServer *grpc.Server
	health     *health.Server
	logger     zerolog.Logger
}

func NewHealthServer(logger zerolog.Logger) *HealthServer {
	s := &HealthServer{
		grpcServer: grpc.NewServer(),
		health:     health.NewServer(),
		logger:     logger.With().Str("component", "grpc").Logger(),
	}
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	reflection.Register(s.grpcServer)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// SetServing flips both the named service and the overall server status.
func (s *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ServiceName, status)
	s.health.SetServingStatus("", status)
}

func (s *HealthServer) Serve(lis net.Listener) error {
	s.logger.Info().Str("addr", lis.Addr().String()).Msg("grpc health server listening")
	return s.grpcServer.Serve(lis)
}

func (s *HealthServer) ListenAndServe(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
