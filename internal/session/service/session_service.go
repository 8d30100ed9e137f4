// Package service validates, issues and invalidates officer sessions.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	officerdomain "github.com/Reyansh-Niranjan/CogniSecure/internal/officer/domain"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/security"
	sessiondomain "github.com/Reyansh-Niranjan/CogniSecure/internal/session/domain"
)

// Sentinel errors for session validation; callers map them to gRPC codes.
var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionInvalidated = errors.New("session has been invalidated")
	ErrSessionExpired     = errors.New("session has expired")
	ErrOfficerInactive    = errors.New("officer account is inactive")
	ErrOfficerNotFound    = errors.New("officer not found")
)

// DefaultTTL is the session lifetime used when none is configured.
const DefaultTTL = 24 * time.Hour

// Identity is the caller resolved from a valid session.
type Identity struct {
	OfficerID string
	SessionID string
	Role      officerdomain.Role
}

// Issued is returned once by Issue; Token is never stored.
type Issued struct {
	Token     string
	SessionID string
	ExpiresAt time.Time
}

// SessionRepo is the minimal session repository needed by the session service.
type SessionRepo interface {
	GetByTokenHash(ctx context.Context, tokenHash string) (*sessiondomain.Session, error)
	Create(ctx context.Context, s *sessiondomain.Session) error
	Invalidate(ctx context.Context, id string) error
	InvalidateAllByOfficer(ctx context.Context, officerID string) error
}

// OfficerRepo is the minimal officer repository needed by the session service.
type OfficerRepo interface {
	GetByID(ctx context.Context, id string) (*officerdomain.Officer, error)
}

// Service validates and manages officer sessions. Validation is re-run on every request; nothing is cached.
type Service struct {
	sessions SessionRepo
	officers OfficerRepo
	ttl      time.Duration
	now      func() time.Time
}

// NewService returns a session Service. A non-positive ttl uses DefaultTTL.
func NewService(sessions SessionRepo, officers OfficerRepo, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		sessions: sessions,
		officers: officers,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Validate resolves token to the calling officer. It has no side effects.
// Checks run in order: existence, valid flag, expiry, officer active.
func (s *Service) Validate(ctx context.Context, token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrSessionNotFound
	}
	ses, err := s.sessions.GetByTokenHash(ctx, security.HashSessionToken(token))
	if err != nil {
		return nil, fmt.Errorf("session lookup: %w", err)
	}
	if ses == nil {
		return nil, ErrSessionNotFound
	}
	if !ses.Valid {
		return nil, ErrSessionInvalidated
	}
	if ses.Expired(s.now()) {
		return nil, ErrSessionExpired
	}
	off, err := s.officers.GetByID(ctx, ses.OfficerID)
	if err != nil {
		return nil, fmt.Errorf("officer lookup: %w", err)
	}
	if off == nil || !off.Active {
		return nil, ErrOfficerInactive
	}
	return &Identity{OfficerID: off.ID, SessionID: ses.ID, Role: off.Role}, nil
}

// Issue creates a session for an active officer and returns the raw token. The token is shown to the caller once.
func (s *Service) Issue(ctx context.Context, officerID, ipAddress, userAgent string) (*Issued, error) {
	off, err := s.officers.GetByID(ctx, officerID)
	if err != nil {
		return nil, fmt.Errorf("officer lookup: %w", err)
	}
	if off == nil {
		return nil, ErrOfficerNotFound
	}
	if !off.Active {
		return nil, ErrOfficerInactive
	}
	token, err := security.GenerateSessionToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	now := s.now()
	ses := &sessiondomain.Session{
		ID:        uuid.New().String(),
		OfficerID: off.ID,
		TokenHash: security.HashSessionToken(token),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
		Valid:     true,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
	if err := s.sessions.Create(ctx, ses); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &Issued{Token: token, SessionID: ses.ID, ExpiresAt: ses.ExpiresAt}, nil
}

// Logout invalidates the session behind token. Unknown or already invalid sessions succeed.
func (s *Service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	ses, err := s.sessions.GetByTokenHash(ctx, security.HashSessionToken(token))
	if err != nil {
		return fmt.Errorf("session lookup: %w", err)
	}
	if ses == nil || !ses.Valid {
		return nil
	}
	if err := s.sessions.Invalidate(ctx, ses.ID); err != nil {
		return fmt.Errorf("invalidate session: %w", err)
	}
	return nil
}

// RevokeAll invalidates every session of officerID.
func (s *Service) RevokeAll(ctx context.Context, officerID string) error {
	if err := s.sessions.InvalidateAllByOfficer(ctx, officerID); err != nil {
		return fmt.Errorf("invalidate sessions: %w", err)
	}
	return nil
}
