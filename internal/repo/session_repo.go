package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mymd/clinic-backend/internal/model"
)

// SessionRepo defines the interface for OTP session repository operations.
type SessionRepo interface {
	Create(ctx context.Context, userID int64, code string, expiresAt time.Time) (model.OtpSession, error)
	GetWithUser(ctx context.Context, id int64) (model.OtpSession, model.User, error)
	IncrementAttempt(ctx context.Context, id int64) (int, error)
	Delete(ctx context.Context, id int64) error
	ConsumeWithRefreshToken(ctx context.Context, sessionID int64, userID int64, token string, expiresAt time.Time) error
}

type sessionRepo struct {
	db *sql.DB
}

// NewSessionRepo creates a new SessionRepo instance.
func NewSessionRepo(db *sql.DB) SessionRepo {
	return &sessionRepo{db: db}
}

// Create inserts a new OTP session.
func (r *sessionRepo) Create(ctx context.Context, userID int64, code string, expiresAt time.Time) (model.OtpSession, error) {
	var s model.OtpSession
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO otp_sessions (user_id, code, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, code, expires_at, attempt_count, created_at
	`, userID, code, expiresAt).Scan(
		&s.ID, &s.UserID, &s.Code, &s.ExpiresAt, &s.AttemptCount, &s.CreatedAt,
	)
	if err != nil {
		return model.OtpSession{}, fmt.Errorf("insert session: %w", err)
	}
	return s, nil
}

// GetWithUser loads a session together with its owning user.
func (r *sessionRepo) GetWithUser(ctx context.Context, id int64) (model.OtpSession, model.User, error) {
	var s model.OtpSession
	var u model.User
	err := r.db.QueryRowContext(ctx, `
		SELECT s.id, s.user_id, s.code, s.expires_at, s.attempt_count, s.created_at,
		       u.id, u.first_name, u.last_name, u.email, u.phone, u.password, u.role, u.status, u.created_at, u.updated_at
		FROM otp_sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.id = $1
	`, id).Scan(
		&s.ID, &s.UserID, &s.Code, &s.ExpiresAt, &s.AttemptCount, &s.CreatedAt,
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.Password, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.OtpSession{}, model.User{}, ErrNotFound
		}
		return model.OtpSession{}, model.User{}, fmt.Errorf("query session: %w", err)
	}
	return s, u, nil
}

// IncrementAttempt bumps attempt_count and returns the new value.
func (r *sessionRepo) IncrementAttempt(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		UPDATE otp_sessions
		SET attempt_count = attempt_count + 1
		WHERE id = $1
		RETURNING attempt_count
	`, id).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("increment attempt: %w", err)
	}
	return count, nil
}

// Delete removes a session. Used to reap expired or burnt sessions.
func (r *sessionRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM otp_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ConsumeWithRefreshToken deletes the session and stores the freshly minted
// refresh token in one transaction. The rows-affected guard on the delete is
// what makes a session single-use: a concurrent verify that lost the race
// sees ErrNotFound and no refresh token is written for it.
func (r *sessionRepo) ConsumeWithRefreshToken(ctx context.Context, sessionID int64, userID int64, token string, expiresAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM otp_sessions WHERE id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("consume session: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO refresh_tokens (user_id, token, expires_at)
		VALUES ($1, $2, $3)
	`, userID, token, expiresAt)
	if err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
