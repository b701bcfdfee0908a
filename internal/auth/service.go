package auth

import "context"

// Service is the facade exposing the three public authentication operations.
// It performs no business logic of its own; expected conditions surface as
// the sentinel errors in errors.go, anything else is an internal failure for
// the transport layer to normalize.
type Service struct {
	sessions *SessionManager
	rotation *RotationManager
}

// NewService creates the auth facade.
func NewService(sessions *SessionManager, rotation *RotationManager) *Service {
	return &Service{sessions: sessions, rotation: rotation}
}

// CreateSession issues an OTP session for the phone number.
func (s *Service) CreateSession(ctx context.Context, phone string) (CreateSessionResult, error) {
	return s.sessions.CreateSession(ctx, phone)
}

// VerifySession validates the code and returns a fresh token pair.
func (s *Service) VerifySession(ctx context.Context, sessionID int64, code string) (TokenPair, error) {
	return s.sessions.VerifySession(ctx, sessionID, code)
}

// RefreshToken rotates a refresh token.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (TokenPair, error) {
	return s.rotation.Rotate(ctx, refreshToken)
}
