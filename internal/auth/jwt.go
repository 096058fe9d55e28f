package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"cityMover/models"
)

var (
	ErrMissingToken = errors.New("missing authorization")
	ErrInvalidToken = errors.New("invalid token")
	ErrRevoked      = errors.New("session revoked")
	ErrForbidden    = errors.New("forbidden")
)

// Principal represents the logged-in user carried by a JWT.
type Principal struct {
	UserID    int64
	Username  string
	Role      models.Role
	TokenID   string // jti; revoked on logout
	ExpiresAt time.Time
}

type principalKey struct{}

// WithPrincipal stores the principal in context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext retrieves the principal from context (if any).
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

// RequirePrincipal ensures a principal is present in context.
func RequirePrincipal(ctx context.Context) (*Principal, error) {
	p, ok := FromContext(ctx)
	if !ok {
		return nil, ErrMissingToken
	}
	return p, nil
}

// RequireRole ensures the principal has the given role.
func RequireRole(ctx context.Context, role models.Role) (*Principal, error) {
	p, err := RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if p.Role != role {
		return nil, fmt.Errorf("%w: only %s can perform this action", ErrForbidden, role)
	}
	return p, nil
}

type claims struct {
	UserID int64  `json:"uid"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs and validates HS256 session tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an Issuer. A non-positive ttl defaults to 72h.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for u and returns it with the principal it encodes.
func (i *Issuer) Issue(u *models.User) (string, *Principal, error) {
	if len(i.secret) == 0 {
		return "", nil, errors.New("jwt secret is empty")
	}
	if u == nil || u.ID == 0 || u.Username == "" {
		return "", nil, errors.New("cannot issue token for incomplete user")
	}
	now := i.now()
	p := &Principal{
		UserID:    u.ID,
		Username:  u.Username,
		Role:      u.Role,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(i.ttl).Truncate(time.Second),
	}
	c := claims{
		UserID: p.UserID,
		Name:   p.Username,
		Role:   string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        p.TokenID,
			Subject:   p.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(p.ExpiresAt),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return tok, p, nil
}

// Parse validates a token and extracts its principal.
func (i *Issuer) Parse(tokenStr string) (*Principal, error) {
	if len(i.secret) == 0 {
		return nil, errors.New("jwt secret is empty")
	}
	tok, err := jwt.ParseWithClaims(tokenStr, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil || !tok.Valid {
		if err == nil {
			err = errors.New("token not valid")
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	c, _ := tok.Claims.(*claims)
	if c == nil || c.UserID == 0 || c.Name == "" || c.ID == "" || !models.Role(c.Role).Valid() {
		return nil, fmt.Errorf("%w: invalid claims", ErrInvalidToken)
	}
	p := &Principal{UserID: c.UserID, Username: c.Name, Role: models.Role(c.Role), TokenID: c.ID}
	if c.ExpiresAt != nil {
		p.ExpiresAt = c.ExpiresAt.Time
	}
	return p, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", fmt.Errorf("%w: invalid authorization header", ErrInvalidToken)
	}
	tok := strings.TrimSpace(parts[1])
	if tok == "" {
		return "", ErrMissingToken
	}
	return tok, nil
}
