package auth

import (
	"context"
	"fmt"
	"time"

	apierrors "github.com/yukikurage/workspace-rbac-api/internal/errors"
)

var (
	ErrInvalidToken          = apierrors.New(apierrors.KindAuth, apierrors.ErrCodeInvalidToken, "Could not validate credentials")
	ErrExpiredToken          = apierrors.New(apierrors.KindAuth, apierrors.ErrCodeExpiredToken, "Token has expired")
	ErrRevokedToken          = apierrors.New(apierrors.KindAuth, apierrors.ErrCodeRevokedToken, "Token has been revoked")
	ErrTokenStateUnavailable = apierrors.New(apierrors.KindAuth, apierrors.ErrCodeInvalidToken, "Could not verify token state")
)

// IssuedToken is a signed access token and its claims.
type IssuedToken struct {
	AccessToken string
	Claims      *Claims
}

// TokenObserver is notified of token lifecycle events.
type TokenObserver interface {
	ObserveTokenOperation(operation, result string)
}

// TokenService issues, validates and revokes access tokens. A token is valid
// only while its signature checks out, it has not expired, and its jti is
// still present in the store.
type TokenService struct {
	jwt        *JWTService
	store      TokenStoreInterface
	defaultTTL time.Duration
	observer   TokenObserver
}

// NewTokenService wires the signer and the revocation store. observer may be nil.
func NewTokenService(jwtService *JWTService, store TokenStoreInterface, defaultTTL time.Duration, observer TokenObserver) *TokenService {
	return &TokenService{
		jwt:        jwtService,
		store:      store,
		defaultTTL: defaultTTL,
		observer:   observer,
	}
}

// Issue signs a token for subjectID and records its jti. If the jti cannot be
// stored no token is returned. ttl <= 0 selects the default TTL.
func (s *TokenService) Issue(ctx context.Context, subjectID uint64, ttl time.Duration) (*IssuedToken, error) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	signed, claims, err := s.jwt.Sign(subjectID, ttl)
	if err != nil {
		s.observe("issue", "error")
		return nil, err
	}

	if err := s.store.Store(ctx, claims.ID, subjectID, ttl); err != nil {
		s.observe("issue", "error")
		return nil, fmt.Errorf("record token: %w", err)
	}

	s.observe("issue", "success")
	return &IssuedToken{AccessToken: signed, Claims: claims}, nil
}

// Parse checks signature and expiry without consulting the store.
func (s *TokenService) Parse(token string) (*Claims, error) {
	return s.jwt.Parse(token)
}

// Validate performs the full check, failing closed when the store cannot be reached.
func (s *TokenService) Validate(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		s.observe("validate", "invalid")
		return nil, err
	}

	valid, err := s.store.IsValid(ctx, claims.ID)
	if err != nil {
		s.observe("validate", "unavailable")
		return nil, fmt.Errorf("%w: %v", ErrTokenStateUnavailable, err)
	}
	if !valid {
		s.observe("validate", "revoked")
		return nil, ErrRevokedToken
	}

	s.observe("validate", "success")
	return claims, nil
}

// ParseForRevocation verifies the signature but accepts expired tokens.
func (s *TokenService) ParseForRevocation(token string) (*Claims, error) {
	return s.jwt.ParseIgnoringExpiry(token)
}

// Revoke invalidates one jti. Idempotent.
func (s *TokenService) Revoke(ctx context.Context, jti string, subjectID uint64) error {
	if err := s.store.Revoke(ctx, jti, subjectID); err != nil {
		s.observe("revoke", "error")
		return err
	}
	s.observe("revoke", "success")
	return nil
}

// RevokeAll invalidates every jti issued to subjectID. Idempotent.
func (s *TokenService) RevokeAll(ctx context.Context, subjectID uint64) (int, error) {
	n, err := s.store.RevokeAll(ctx, subjectID)
	if err != nil {
		s.observe("revoke_all", "error")
		return 0, err
	}
	s.observe("revoke_all", "success")
	return n, nil
}

func (s *TokenService) observe(operation, result string) {
	if s.observer != nil {
		s.observer.ObserveTokenOperation(operation, result)
	}
}
