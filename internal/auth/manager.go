package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/vidtube/backend/internal/models"
)

var (
	// ErrSessionNotFound indicates the refresh token's user no longer exists.
	ErrSessionNotFound = errors.New("session not found")
	// ErrRefreshTokenReused indicates a refresh token that is not the user's current one.
	ErrRefreshTokenReused = errors.New("refresh token expired or used")
)

// TokenStore persists the single active refresh token of each user.
type TokenStore interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	SetRefreshToken(ctx context.Context, userID, token string) error
	// SwapRefreshToken stores next only if current is still the stored token.
	SwapRefreshToken(ctx context.Context, userID, current, next string) (bool, error)
}

// Manager issues, verifies and rotates token pairs.
type Manager struct {
	accessSecret  []byte
	accessTTL     time.Duration
	refreshSecret []byte
	refreshTTL    time.Duration

	store TokenStore
	now   func() time.Time
}

// NewManager constructs a Manager signing access and refresh tokens with distinct secrets.
func NewManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, store TokenStore) *Manager {
	if store == nil {
		panic("auth: token store must not be nil")
	}
	return &Manager{
		accessSecret:  []byte(accessSecret),
		accessTTL:     accessTTL,
		refreshSecret: []byte(refreshSecret),
		refreshTTL:    refreshTTL,
		store:         store,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Issue signs a new token pair for user and records the refresh token as the
// user's only valid one.
func (m *Manager) Issue(ctx context.Context, user models.User) (models.SessionTokens, error) {
	tokens, err := m.sign(user)
	if err != nil {
		return models.SessionTokens{}, err
	}
	if err := m.store.SetRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return models.SessionTokens{}, fmt.Errorf("store refresh token: %w", err)
	}
	return tokens, nil
}

func (m *Manager) sign(user models.User) (models.SessionTokens, error) {
	if user.ID == "" {
		return models.SessionTokens{}, errors.New("user id must be provided")
	}

	now := m.now()
	access := Claims{Email: user.Email, Username: user.Username, FullName: user.FullName}
	access.Subject = user.ID
	accessToken, accessExp, err := Sign(m.accessSecret, access, now, m.accessTTL)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh := Claims{}
	refresh.Subject = user.ID
	refreshToken, refreshExp, err := Sign(m.refreshSecret, refresh, now, m.refreshTTL)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return models.SessionTokens{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Refresh exchanges a refresh token for a new pair. A refresh token can be
// exchanged once.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, models.User, error) {
	claims, err := Verify(m.refreshSecret, refreshToken, m.now())
	if err != nil {
		return models.SessionTokens{}, models.User{}, err
	}

	user, err := m.store.FindByID(ctx, claims.Subject)
	if err != nil {
		return models.SessionTokens{}, models.User{}, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}

	if user.RefreshToken == "" || subtle.ConstantTimeCompare([]byte(user.RefreshToken), []byte(refreshToken)) != 1 {
		return models.SessionTokens{}, models.User{}, ErrRefreshTokenReused
	}

	tokens, err := m.sign(user)
	if err != nil {
		return models.SessionTokens{}, models.User{}, err
	}
	swapped, err := m.store.SwapRefreshToken(ctx, user.ID, refreshToken, tokens.RefreshToken)
	if err != nil {
		return models.SessionTokens{}, models.User{}, fmt.Errorf("rotate refresh token: %w", err)
	}
	if !swapped {
		return models.SessionTokens{}, models.User{}, ErrRefreshTokenReused
	}
	return tokens, user, nil
}

// Authenticate verifies an access token and returns its claims.
func (m *Manager) Authenticate(accessToken string) (Claims, error) {
	return Verify(m.accessSecret, accessToken, m.now())
}

// Revoke clears the user's stored refresh token.
func (m *Manager) Revoke(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	return m.store.SetRefreshToken(ctx, userID, "")
}
