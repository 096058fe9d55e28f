package auth

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"cityMover/models"
)

// TokenVerifier validates a bearer token and returns its principal.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

// UserLookup is the subset of the user repository used to re-check roles.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// TokenFromMD extracts the bearer token from incoming gRPC metadata.
func TokenFromMD(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", ErrMissingToken
	}
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return "", ErrMissingToken
	}
	return BearerToken(vals[0])
}

// NewUnaryAuthInterceptor returns a gRPC unary interceptor that validates the
// bearer token in incoming metadata and injects the Principal into the context.
// Methods listed in allowUnauthenticated bypass authentication (e.g., health checks).
func NewUnaryAuthInterceptor(v TokenVerifier, allowUnauthenticated ...string) grpc.UnaryServerInterceptor {
	allow := make(map[string]struct{}, len(allowUnauthenticated))
	for _, m := range allowUnauthenticated {
		allow[strings.TrimSpace(m)] = struct{}{}
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := allow[info.FullMethod]; ok {
			return handler(ctx, req)
		}
		tok, err := TokenFromMD(ctx)
		if err != nil {
			return nil, status.Errorf(codes.Unauthenticated, "auth error: %v", err)
		}
		p, err := v.Verify(ctx, tok)
		if err != nil {
			return nil, status.Errorf(codes.Unauthenticated, "auth error: %v", err)
		}
		return handler(WithPrincipal(ctx, p), req)
	}
}

// RequireStoredRole ensures the principal has role AND that the underlying user
// still exists with that role. This prevents acting on a stale token after the
// account changed.
func RequireStoredRole(ctx context.Context, users UserLookup, role models.Role) (*Principal, error) {
	p, err := RequireRole(ctx, role)
	if err != nil {
		return nil, err
	}
	if users == nil {
		return nil, errors.New("users repository not configured")
	}
	u, err := users.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil || u.Role != role {
		return nil, ErrForbidden
	}
	return p, nil
}
