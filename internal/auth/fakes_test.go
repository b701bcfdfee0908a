package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mymd/clinic-backend/internal/model"
	"github.com/mymd/clinic-backend/internal/repo"
)

// memStore is an in-memory stand-in for the Postgres repos. It reproduces the
// semantics the managers rely on: guarded deletes under one lock, so races
// resolve the same way the store's transactions do.
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]model.User
	byPhone  map[string]int64
	sessions map[int64]model.OtpSession
	tokens   map[string]model.RefreshToken
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[int64]model.User),
		byPhone:  make(map[string]int64),
		sessions: make(map[int64]model.OtpSession),
		tokens:   make(map[string]model.RefreshToken),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

// UserRepo

func (s *memStore) GetByID(_ context.Context, id int64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.Status == model.StatusDeleted {
		return model.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (s *memStore) GetOrCreateByPhone(_ context.Context, phone string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byPhone[phone]; ok {
		u := s.users[id]
		u.Status = model.StatusActive
		s.users[id] = u
		return u, nil
	}
	u := model.User{
		ID:        s.id(),
		Phone:     phone,
		Role:      "patient",
		Status:    model.StatusActive,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.users[u.ID] = u
	s.byPhone[phone] = u.ID
	return u, nil
}

func (s *memStore) PhoneTaken(_ context.Context, phone string, excludeID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byPhone[phone]
	return ok && id != excludeID, nil
}

func (s *memStore) UpdateProfile(_ context.Context, id int64, firstName string, lastName, email *string, phone string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.Status == model.StatusDeleted {
		return model.User{}, repo.ErrNotFound
	}
	delete(s.byPhone, u.Phone)
	u.FirstName = firstName
	u.LastName = lastName
	u.Email = email
	u.Phone = phone
	u.UpdatedAt = time.Now()
	s.users[id] = u
	s.byPhone[phone] = id
	return u, nil
}

func (s *memStore) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.Status == model.StatusDeleted {
		return repo.ErrNotFound
	}
	u.Password = passwordHash
	s.users[id] = u
	return nil
}

func (s *memStore) SetStatus(_ context.Context, id int64, status model.UserStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.Status == model.StatusDeleted {
		return repo.ErrNotFound
	}
	u.Status = status
	s.users[id] = u
	return nil
}

// SessionRepo

func (s *memStore) Create(_ context.Context, userID int64, code string, expiresAt time.Time) (model.OtpSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := model.OtpSession{
		ID:        s.id(),
		UserID:    userID,
		Code:      code,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	s.sessions[session.ID] = session
	return session, nil
}

func (s *memStore) GetWithUser(_ context.Context, id int64) (model.OtpSession, model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return model.OtpSession{}, model.User{}, repo.ErrNotFound
	}
	user, ok := s.users[session.UserID]
	if !ok {
		return model.OtpSession{}, model.User{}, repo.ErrNotFound
	}
	return session, user, nil
}

func (s *memStore) IncrementAttempt(_ context.Context, id int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return 0, repo.ErrNotFound
	}
	session.AttemptCount++
	s.sessions[id] = session
	return session.AttemptCount, nil
}

func (s *memStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *memStore) ConsumeWithRefreshToken(_ context.Context, sessionID int64, userID int64, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return repo.ErrNotFound
	}
	delete(s.sessions, sessionID)
	s.tokens[token] = model.RefreshToken{
		ID:        s.id(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return nil
}

// RefreshTokenRepo

func (s *memStore) FindByToken(_ context.Context, token string) (model.RefreshToken, model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.tokens[token]
	if !ok {
		return model.RefreshToken{}, model.User{}, repo.ErrNotFound
	}
	user, ok := s.users[rt.UserID]
	if !ok {
		return model.RefreshToken{}, model.User{}, repo.ErrNotFound
	}
	return rt, user, nil
}

func (s *memStore) Rotate(_ context.Context, oldToken string, userID int64, newToken string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[oldToken]; !ok {
		return repo.ErrNotFound
	}
	delete(s.tokens, oldToken)
	s.tokens[newToken] = model.RefreshToken{
		ID:        s.id(),
		UserID:    userID,
		Token:     newToken,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return nil
}

// test helpers

func (s *memStore) sessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *memStore) tokenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

func (s *memStore) putSession(session model.OtpSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
}

func (s *memStore) putToken(rt model.RefreshToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[rt.Token] = rt
}

// fakeSender records deliveries and can be told to fail.
type fakeSender struct {
	mu    sync.Mutex
	sent  []string
	fail  bool
	calls chan struct{}
}

func newFakeSender() *fakeSender {
	return &fakeSender{calls: make(chan struct{}, 16)}
}

func (f *fakeSender) Send(_ context.Context, phone, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	defer func() { f.calls <- struct{}{} }()
	if f.fail {
		return errors.New("gateway down")
	}
	f.sent = append(f.sent, phone+": "+message)
	return nil
}

// waitForSend blocks until the sender has been invoked once.
func (f *fakeSender) waitForSend(timeout time.Duration) bool {
	select {
	case <-f.calls:
		return true
	case <-time.After(timeout):
		return false
	}
}

var testSigner = NewSigner("test-secret-at-least-32-characters!!", "mymd", "mymd-clients", time.Hour, 30*24*time.Hour)

func fixedCode(code string) CodeFunc {
	return func() (string, error) { return code, nil }
}
