package auth

import (
	"context"
	"fmt"

	"cityMover/models"
)

// Authenticator ties token issuing to session revocation. A token is accepted
// only if it parses and its id has not been revoked by a logout.
type Authenticator struct {
	issuer   *Issuer
	sessions Store
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(issuer *Issuer, sessions Store) *Authenticator {
	return &Authenticator{issuer: issuer, sessions: sessions}
}

// Login starts a session for u.
func (a *Authenticator) Login(u *models.User) (string, *Principal, error) {
	return a.issuer.Issue(u)
}

// Verify parses the token and rejects revoked sessions.
func (a *Authenticator) Verify(ctx context.Context, token string) (*Principal, error) {
	p, err := a.issuer.Parse(token)
	if err != nil {
		return nil, err
	}
	revoked, err := a.sessions.IsRevoked(ctx, p.TokenID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrRevoked
	}
	return p, nil
}

// Logout revokes the principal's token until it expires.
func (a *Authenticator) Logout(ctx context.Context, p *Principal) error {
	if p == nil || p.TokenID == "" {
		return ErrMissingToken
	}
	if err := a.sessions.Revoke(ctx, p.TokenID, p.ExpiresAt); err != nil {
		return fmt.Errorf("logout %s: %w", p.Username, err)
	}
	return nil
}
