package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mymd/clinic-backend/internal/repo"
)

const (
	otpWindow   = 3 * time.Minute
	maxAttempts = 5
	smsTimeout  = 10 * time.Second
)

// Sender delivers an OTP code out of band. Delivery is best-effort from the
// session manager's point of view.
type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

// CreateSessionResult is returned from CreateSession so the client can prompt
// for the code and knows when to give up.
type CreateSessionResult struct {
	SessionID int64
	ExpiresAt time.Time
}

// SessionManager owns the OTP session state machine: creation, a single
// successful verification, expiry, and consumption.
type SessionManager struct {
	users    repo.UserRepo
	sessions repo.SessionRepo
	signer   *Signer
	sender   Sender
	codeFn   CodeFunc
}

// NewSessionManager creates a session manager. codeFn may be nil, in which
// case codes come from crypto/rand.
func NewSessionManager(users repo.UserRepo, sessions repo.SessionRepo, signer *Signer, sender Sender, codeFn CodeFunc) *SessionManager {
	if codeFn == nil {
		codeFn = GenerateOTPCode
	}
	return &SessionManager{
		users:    users,
		sessions: sessions,
		signer:   signer,
		sender:   sender,
		codeFn:   codeFn,
	}
}

// CreateSession normalizes the phone, gets or creates the user, persists a
// new OTP session and triggers SMS delivery. The SMS send runs detached from
// the request: a delivery failure is logged, never surfaced.
func (m *SessionManager) CreateSession(ctx context.Context, phone string) (CreateSessionResult, error) {
	canonical, err := NormalizePhone(phone)
	if err != nil {
		return CreateSessionResult{}, err
	}

	user, err := m.users.GetOrCreateByPhone(ctx, canonical)
	if err != nil {
		return CreateSessionResult{}, fmt.Errorf("get or create user: %w", err)
	}

	code, err := m.codeFn()
	if err != nil {
		return CreateSessionResult{}, fmt.Errorf("generate code: %w", err)
	}

	session, err := m.sessions.Create(ctx, user.ID, code, time.Now().Add(otpWindow))
	if err != nil {
		return CreateSessionResult{}, fmt.Errorf("create session: %w", err)
	}

	go m.deliverCode(user.Phone, code)

	return CreateSessionResult{SessionID: session.ID, ExpiresAt: session.ExpiresAt}, nil
}

// deliverCode sends the OTP over SMS with its own timeout, detached from the
// request context so a cancelled request does not abort delivery.
func (m *SessionManager) deliverCode(phone, code string) {
	ctx, cancel := context.WithTimeout(context.Background(), smsTimeout)
	defer cancel()

	message := fmt.Sprintf("Your MyMd verification code: %s", code)
	if err := m.sender.Send(ctx, phone, message); err != nil {
		log.Printf("Phone %s: failed to deliver OTP: %v", MaskPhone(phone), err)
	}
}

// VerifySession validates the code against the session. Absent, expired and
// already-consumed sessions all read as ErrSessionNotFound. A wrong code
// returns ErrInvalidCode and leaves the session usable until its expiry or
// the attempt cap. On success the refresh token write and the session delete
// commit together.
func (m *SessionManager) VerifySession(ctx context.Context, sessionID int64, code string) (TokenPair, error) {
	session, user, err := m.sessions.GetWithUser(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return TokenPair{}, ErrSessionNotFound
		}
		return TokenPair{}, fmt.Errorf("load session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		// Lazy reaping: no sweeper, dead sessions go on first touch.
		if err := m.sessions.Delete(ctx, session.ID); err != nil && !errors.Is(err, repo.ErrNotFound) {
			log.Printf("Failed to reap expired session %d: %v", session.ID, err)
		}
		return TokenPair{}, ErrSessionNotFound
	}

	if !codesMatch(code, session.Code) {
		attempts, err := m.sessions.IncrementAttempt(ctx, session.ID)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return TokenPair{}, fmt.Errorf("record attempt: %w", err)
		}
		if attempts >= maxAttempts {
			if err := m.sessions.Delete(ctx, session.ID); err != nil && !errors.Is(err, repo.ErrNotFound) {
				log.Printf("Failed to burn session %d: %v", session.ID, err)
			}
		}
		return TokenPair{}, ErrInvalidCode
	}

	pair, err := m.signer.Mint(Identity{ID: user.ID, Phone: user.Phone, Role: user.Role})
	if err != nil {
		return TokenPair{}, fmt.Errorf("mint tokens: %w", err)
	}

	err = m.sessions.ConsumeWithRefreshToken(ctx, session.ID, user.ID, pair.RefreshToken, pair.RefreshTokenExpiry)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// A concurrent verify consumed the session first.
			return TokenPair{}, ErrSessionNotFound
		}
		return TokenPair{}, fmt.Errorf("consume session: %w", err)
	}

	return pair, nil
}

// codesMatch compares codes in constant time. Length is part of the
// comparison, so a prefix never passes.
func codesMatch(presented, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(presented), []byte(stored)) == 1
}
