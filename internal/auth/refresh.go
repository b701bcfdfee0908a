package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mymd/clinic-backend/internal/repo"
)

// RotationManager validates presented refresh tokens and rotates them:
// every successful refresh invalidates the old token and persists its
// replacement in the same atomic step.
type RotationManager struct {
	tokens repo.RefreshTokenRepo
	signer *Signer
}

// NewRotationManager creates a rotation manager.
func NewRotationManager(tokens repo.RefreshTokenRepo, signer *Signer) *RotationManager {
	return &RotationManager{tokens: tokens, signer: signer}
}

// Rotate exchanges a refresh token for a new access/refresh pair. Unknown and
// already-rotated tokens both read as ErrInvalidRefreshToken; a replay after
// rotation lands here too, which is the implicit theft signal. An expired
// token returns ErrRefreshTokenExpired and is left untouched so the caller
// re-authenticates from scratch.
func (m *RotationManager) Rotate(ctx context.Context, presented string) (TokenPair, error) {
	token, user, err := m.tokens.FindByToken(ctx, presented)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return TokenPair{}, ErrInvalidRefreshToken
		}
		return TokenPair{}, fmt.Errorf("find refresh token: %w", err)
	}

	if time.Now().After(token.ExpiresAt) {
		return TokenPair{}, ErrRefreshTokenExpired
	}

	pair, err := m.signer.Mint(Identity{ID: user.ID, Phone: user.Phone, Role: user.Role})
	if err != nil {
		return TokenPair{}, fmt.Errorf("mint tokens: %w", err)
	}

	err = m.tokens.Rotate(ctx, presented, user.ID, pair.RefreshToken, pair.RefreshTokenExpiry)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// Lost the race against a concurrent rotation of the same token.
			return TokenPair{}, ErrInvalidRefreshToken
		}
		return TokenPair{}, fmt.Errorf("rotate refresh token: %w", err)
	}

	return pair, nil
}
