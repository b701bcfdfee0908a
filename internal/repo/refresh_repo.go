package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mymd/clinic-backend/internal/model"
)

// RefreshTokenRepo defines the interface for refresh token repository operations.
type RefreshTokenRepo interface {
	FindByToken(ctx context.Context, token string) (model.RefreshToken, model.User, error)
	Rotate(ctx context.Context, oldToken string, userID int64, newToken string, expiresAt time.Time) error
}

type refreshTokenRepo struct {
	db *sql.DB
}

// NewRefreshTokenRepo creates a new RefreshTokenRepo instance.
func NewRefreshTokenRepo(db *sql.DB) RefreshTokenRepo {
	return &refreshTokenRepo{db: db}
}

// FindByToken loads a refresh token and its owning user by the opaque token
// string. Expiry is not checked here; the rotation manager decides what an
// expired row means.
func (r *refreshTokenRepo) FindByToken(ctx context.Context, token string) (model.RefreshToken, model.User, error) {
	var rt model.RefreshToken
	var u model.User
	err := r.db.QueryRowContext(ctx, `
		SELECT t.id, t.user_id, t.token, t.expires_at, t.created_at,
		       u.id, u.first_name, u.last_name, u.email, u.phone, u.password, u.role, u.status, u.created_at, u.updated_at
		FROM refresh_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.token = $1
	`, token).Scan(
		&rt.ID, &rt.UserID, &rt.Token, &rt.ExpiresAt, &rt.CreatedAt,
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.Password, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.RefreshToken{}, model.User{}, ErrNotFound
		}
		return model.RefreshToken{}, model.User{}, fmt.Errorf("find refresh token: %w", err)
	}
	return rt, u, nil
}

// Rotate deletes the presented token and inserts its replacement in one
// transaction. The rows-affected guard on the delete enforces single use:
// of two concurrent rotations of the same token exactly one commits, the
// other sees ErrNotFound because the row is already gone. A failed insert
// rolls the delete back, so the original token is never destroyed without
// its replacement being persisted.
func (r *refreshTokenRepo) Rotate(ctx context.Context, oldToken string, userID int64, newToken string, expiresAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, oldToken)
	if err != nil {
		return fmt.Errorf("delete old token: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO refresh_tokens (user_id, token, expires_at)
		VALUES ($1, $2, $3)
	`, userID, newToken, expiresAt)
	if err != nil {
		return fmt.Errorf("insert new token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
