package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/digikraal/ledgerview/pkg/config"
)

const refreshTokenBytes = 32

var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	errAccessIDRequired    = errors.New("access id is required")
)

// Store persists refresh sessions keyed by access token id.
type Store interface {
	SaveSession(ctx context.Context, accessID, value string, ttl time.Duration) error
	LoadSession(ctx context.Context, accessID string) (string, bool, error)
	DeleteSession(ctx context.Context, accessID string) error
}

// AccessSessionChecker exposes the read-only surface needed by middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// Manager issues and rotates refresh tokens. Every session records the user
// it was issued to and can only be rotated by that user.
type Manager struct {
	store Store
	ttl   time.Duration
}

// NewManager requires a refresh TTL longer than the access token lifetime.
func NewManager(store Store, cfg config.JWTConfig) (*Manager, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	ttl := cfg.RefreshTokenTTL()
	accessTTL := time.Duration(cfg.ExpirationMinutes) * time.Minute
	switch {
	case ttl <= 0:
		return nil, errors.New("refresh token ttl must be positive")
	case ttl <= accessTTL:
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", ttl, accessTTL)
	}
	return &Manager{store: store, ttl: ttl}, nil
}

// Generate stores a fresh refresh token for accessID and returns it.
func (m *Manager) Generate(ctx context.Context, accessID string, userID uuid.UUID) (string, error) {
	if blank(accessID) {
		return "", errAccessIDRequired
	}
	if userID == uuid.Nil {
		return "", errors.New("user id is required")
	}
	token, err := newRefreshToken()
	if err != nil {
		return "", err
	}
	if err := m.store.SaveSession(ctx, accessID, record{owner: userID, token: token}.String(), m.ttl); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return token, nil
}

// Rotate exchanges the refresh token held for oldAccessID for a new access id
// and refresh token. The old session is removed once the new one is stored.
func (m *Manager) Rotate(ctx context.Context, oldAccessID string, userID uuid.UUID, provided string) (string, string, error) {
	if blank(oldAccessID) || blank(provided) || userID == uuid.Nil {
		return "", "", ErrInvalidRefreshToken
	}

	stored, found, err := m.store.LoadSession(ctx, oldAccessID)
	if err != nil {
		return "", "", fmt.Errorf("load session: %w", err)
	}
	if !found {
		return "", "", ErrInvalidRefreshToken
	}
	rec, ok := decodeSession(stored)
	if !ok || !rec.matches(userID, provided) {
		return "", "", ErrInvalidRefreshToken
	}

	accessID := NewAccessID()
	token, err := m.Generate(ctx, accessID, userID)
	if err != nil {
		return "", "", err
	}
	if err := m.store.DeleteSession(ctx, oldAccessID); err != nil {
		return "", "", fmt.Errorf("delete session: %w", err)
	}
	return accessID, token, nil
}

func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if blank(accessID) {
		return errAccessIDRequired
	}
	return m.store.DeleteSession(ctx, accessID)
}

// HasSession reports whether accessID still has a live refresh session.
func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if blank(accessID) {
		return false, errAccessIDRequired
	}
	_, found, err := m.store.LoadSession(ctx, accessID)
	return found, err
}

// NewAccessID returns the identifier used as JWT jti and session key.
func NewAccessID() string {
	return uuid.NewString()
}

func newRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// record is the stored form of a session, "<owner uuid>.<token>". The token
// alphabet never contains a dot.
type record struct {
	owner uuid.UUID
	token string
}

func (r record) String() string {
	return r.owner.String() + "." + r.token
}

func (r record) matches(userID uuid.UUID, token string) bool {
	return r.owner == userID && subtle.ConstantTimeCompare([]byte(r.token), []byte(token)) == 1
}

func decodeSession(value string) (record, bool) {
	owner, token, found := strings.Cut(value, ".")
	if !found || token == "" {
		return record{}, false
	}
	userID, err := uuid.Parse(owner)
	if err != nil {
		return record{}, false
	}
	return record{owner: userID, token: token}, true
}
