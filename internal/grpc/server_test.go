package grpcserver

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"cityMover/internal/auth"
	"cityMover/internal/db"
	"cityMover/internal/testutil"
)

func dial(t *testing.T, srv *grpc.Server) grpc_health_v1.HealthClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return grpc_health_v1.NewHealthClient(conn)
}

func TestHealthCheck_ReflectsDatabase(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "grpchealth")
	check := func(ctx context.Context) db.Status { return db.CheckStatus(ctx, d, "grpchealth") }
	verifier := auth.NewAuthenticator(auth.NewIssuer("s", time.Hour), auth.NewMemoryStore())
	client := dial(t, NewServer(verifier, NewHealthServer(check, 10*time.Millisecond, nil)))
	ctx := context.Background()

	for _, svc := range []string{"", StorageService} {
		resp, err := client.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: svc})
		if err != nil {
			t.Fatalf("Check(%q): %v", svc, err)
		}
		if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
			t.Fatalf("Check(%q) = %v, want SERVING", svc, resp.GetStatus())
		}
	}

	if _, err := client.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: "nope"}); status.Code(err) != codes.NotFound {
		t.Fatalf("unknown service: %v", err)
	}

	if err := d.Close(); err != nil {
		t.Fatalf("close db: %v", err)
	}
	resp, err := client.Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("Check after close: %v", err)
	}
	if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("status after close = %v, want NOT_SERVING", resp.GetStatus())
	}
}

func TestHealthWatch_StreamsChanges(t *testing.T) {
	healthy := make(chan bool, 1)
	healthy <- true
	current := true
	check := func(context.Context) db.Status {
		select {
		case current = <-healthy:
		default:
		}
		if current {
			return db.Status{Status: db.StatusHealthy}
		}
		return db.Status{Status: db.StatusError, Error: "down"}
	}
	verifier := auth.NewAuthenticator(auth.NewIssuer("s", time.Hour), auth.NewMemoryStore())
	client := dial(t, NewServer(verifier, NewHealthServer(check, 5*time.Millisecond, nil)))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	stream, err := client.Watch(ctx, &grpc_health_v1.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	first, err := stream.Recv()
	if err != nil || first.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Fatalf("first status: %v %v", first, err)
	}
	healthy <- false
	second, err := stream.Recv()
	if err != nil || second.GetStatus() != grpc_health_v1.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("second status: %v %v", second, err)
	}
}
