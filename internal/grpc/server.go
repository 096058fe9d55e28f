package grpcserver

import (
	"context"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"cityMover/internal/auth"
	"cityMover/internal/db"
)

const (
	healthCheckMethod = "/grpc.health.v1.Health/Check"
	healthWatchMethod = "/grpc.health.v1.Health/Watch"
	// StorageService is the service name reported for the database.
	StorageService = "citymover.storage"
)

// HealthServer answers grpc.health.v1 checks from the database status.
// The empty service name and StorageService both reflect the database.
type HealthServer struct {
	grpc_health_v1.UnimplementedHealthServer
	check    func(ctx context.Context) db.Status
	interval time.Duration
	log      *zap.Logger
}

// NewHealthServer creates a HealthServer. Watch polls check every interval.
func NewHealthServer(check func(ctx context.Context) db.Status, interval time.Duration, log *zap.Logger) *HealthServer {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &HealthServer{check: check, interval: interval, log: log.Named("health")}
}

func (h *HealthServer) servingStatus(ctx context.Context, service string) (grpc_health_v1.HealthCheckResponse_ServingStatus, error) {
	if service != "" && service != StorageService {
		return grpc_health_v1.HealthCheckResponse_SERVICE_UNKNOWN, status.Errorf(codes.NotFound, "unknown service %q", service)
	}
	st := h.check(ctx)
	if !st.Healthy() {
		h.log.Warn("database unhealthy", zap.String("db_file", st.DBFile), zap.String("error", st.Error))
		return grpc_health_v1.HealthCheckResponse_NOT_SERVING, nil
	}
	return grpc_health_v1.HealthCheckResponse_SERVING, nil
}

// Check implements grpc_health_v1.HealthServer.
func (h *HealthServer) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	s, err := h.servingStatus(ctx, req.GetService())
	if err != nil {
		return nil, err
	}
	return &grpc_health_v1.HealthCheckResponse{Status: s}, nil
}

// Watch implements grpc_health_v1.HealthServer. It sends the current status and
// then every change until the client goes away.
func (h *HealthServer) Watch(req *grpc_health_v1.HealthCheckRequest, stream grpc_health_v1.Health_WatchServer) error {
	ctx := stream.Context()
	last := grpc_health_v1.HealthCheckResponse_UNKNOWN
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		s, err := h.servingStatus(ctx, req.GetService())
		if err != nil {
			s = grpc_health_v1.HealthCheckResponse_SERVICE_UNKNOWN
		}
		if s != last {
			if err := stream.Send(&grpc_health_v1.HealthCheckResponse{Status: s}); err != nil {
				return err
			}
			last = s
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// NewServer builds the gRPC server with the auth interceptor and the health
// service registered. Health calls bypass authentication.
func NewServer(verifier auth.TokenVerifier, health *HealthServer) *grpc.Server {
	srv := grpc.NewServer(
		grpc.UnaryInterceptor(auth.NewUnaryAuthInterceptor(verifier, healthCheckMethod)),
		grpc.StreamInterceptor(streamAuth(verifier, healthWatchMethod)),
	)
	grpc_health_v1.RegisterHealthServer(srv, health)
	return srv
}

// streamAuth guards streaming methods the way the unary interceptor guards unary ones.
func streamAuth(v auth.TokenVerifier, allow ...string) grpc.StreamServerInterceptor {
	open := make(map[string]struct{}, len(allow))
	for _, m := range allow {
		open[m] = struct{}{}
	}
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if _, ok := open[info.FullMethod]; ok {
			return handler(srv, ss)
		}
		tok, err := auth.TokenFromMD(ss.Context())
		if err != nil {
			return status.Errorf(codes.Unauthenticated, "auth error: %v", err)
		}
		if _, err := v.Verify(ss.Context(), tok); err != nil {
			return status.Errorf(codes.Unauthenticated, "auth error: %v", err)
		}
		return handler(srv, ss)
	}
}

// StartGRPC starts the gRPC server on the given address and returns a shutdown function.
func StartGRPC(addr string, srv *grpc.Server) (func(context.Context) error, error) {
	if addr == "" {
		addr = ":50051"
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	go func() { _ = srv.Serve(lis) }()

	var once sync.Once
	return func(ctx context.Context) error {
		var err error
		once.Do(func() {
			done := make(chan struct{})
			go func() { srv.GracefulStop(); close(done) }()
			select {
			case <-done:
			case <-ctx.Done():
				srv.Stop()
				err = ctx.Err()
			}
		})
		return err
	}, nil
}
