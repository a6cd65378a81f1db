package grpc

import (
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/bibbank/breachrisk/pkg/auth"
	"github.com/bibbank/breachrisk/pkg/tlsutil"
)

// ServerConfig configures the gRPC listener.
type ServerConfig struct {
	Port        int
	ServiceName string
	TLS         tlsutil.Config
	Reflection  bool
}

// Server wraps a gRPC server with health checks and the risk handler.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	logger     *slog.Logger
	cfg        ServerConfig
}

// NewServer creates a gRPC Server. A nil jwtService disables authentication;
// otherwise TrainModel additionally requires the admin role.
func NewServer(handler *Handler, cfg ServerConfig, jwtService *auth.JWTService, logger *slog.Logger) (*Server, error) {
	var opts []grpc.ServerOption

	if jwtService != nil {
		interceptor := auth.UnaryAuthInterceptor(jwtService,
			[]string{
				"/grpc.health.v1.Health/Check",
				"/grpc.health.v1.Health/Watch",
			},
			map[string][]string{
				MethodTrainModel: {auth.RoleAdmin},
			},
		)
		opts = append(opts, grpc.UnaryInterceptor(interceptor))
	}

	if cfg.TLS.Enabled() {
		creds, err := cfg.TLS.GRPCCredentials()
		if err != nil {
			return nil, fmt.Errorf("grpc tls: %w", err)
		}
		opts = append(opts, grpc.Creds(creds))
		logger.Info("gRPC TLS enabled", "cert", cfg.TLS.CertFile, "mtls", cfg.TLS.ClientCAFile != "")
	} else {
		logger.Info("gRPC TLS not configured, running without TLS")
	}

	grpcServer := grpc.NewServer(opts...)

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	RegisterRiskServiceServer(grpcServer, handler)

	if cfg.Reflection {
		reflection.Register(grpcServer)
	}

	return &Server{
		grpcServer: grpcServer,
		health:     healthSrv,
		logger:     logger,
		cfg:        cfg,
	}, nil
}

// SetReady flips the health status once a model is being served.
func (s *Server) SetReady(ready bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ready {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ServiceName, st)
	s.health.SetServingStatus(s.cfg.ServiceName, st)
}

// Serve accepts connections on lis until Stop.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("gRPC server starting", "addr", lis.Addr().String())
	if err := s.grpcServer.Serve(lis); err != nil {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// Start listens on the configured port and serves.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("grpc listen on %s: %w", addr, err)
	}
	return s.Serve(lis)
}

// Stop gracefully stops the gRPC server.
func (s *Server) Stop() {
	s.logger.Info("gRPC server stopping")
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
