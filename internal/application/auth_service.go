package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/example/classroom-booking/internal/store"
)

// UserLookup resolves account records for session handling.
type UserLookup interface {
	GetUser(ctx context.Context, id string) (store.User, error)
}

type session struct {
	userID    string
	expiresAt time.Time
}

// AuthService issues and validates selection-based sessions. Login picks an
// existing account; there are no passwords. Sessions live in memory and
// disappear on restart, matching the rest of the year-scoped state.
type AuthService struct {
	users          UserLookup
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger

	mu       sync.Mutex
	sessions map[string]session
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(users UserLookup, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration) *AuthService {
	return NewAuthServiceWithLogger(users, tokenGenerator, now, sessionTTL, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(users UserLookup, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if tokenGenerator == nil {
		tokenGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		users:          users,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
		sessions:       make(map[string]session),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Login starts a session for the chosen account and returns its token.
func (s *AuthService) Login(ctx context.Context, userID string) (result LoginResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user lookup not configured")
		return
	}

	logger := s.loggerWith(ctx, "Login", "user_id", userID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "login succeeded")
	}()

	if strings.TrimSpace(userID) == "" {
		err = ErrNotFound
		return
	}

	var user store.User
	user, err = s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			err = ErrNotFound
		}
		return
	}

	token := s.tokenGenerator()
	now := s.now()

	s.mu.Lock()
	s.sessions[token] = session{userID: user.ID, expiresAt: now.Add(s.sessionTTL)}
	s.pruneLocked(now)
	s.mu.Unlock()

	result = LoginResult{User: user, Token: token}
	return
}

// Logout discards the session for the given token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}

	s.mu.Lock()
	_, existed := s.sessions[token]
	delete(s.sessions, token)
	s.mu.Unlock()

	s.loggerWith(ctx, "Logout", "session_found", existed).InfoContext(ctx, "logout")
	return nil
}

// ValidateSession resolves a token into the acting principal. The account is
// looked up on every call, so deleting a user invalidates their sessions and
// role changes take effect immediately.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (principal Principal, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user lookup not configured")
		return
	}

	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		err = ErrUnauthorized
		return
	}

	now := s.now()

	s.mu.Lock()
	entry, ok := s.sessions[trimmed]
	if ok && !entry.expiresAt.After(now) {
		delete(s.sessions, trimmed)
		ok = false
		err = ErrSessionExpired
	}
	s.mu.Unlock()

	if err != nil {
		return
	}
	if !ok {
		err = ErrUnauthorized
		return
	}

	var user store.User
	user, err = s.users.GetUser(ctx, entry.userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			err = ErrUnauthorized
		}
		return
	}

	principal = Principal{UserID: user.ID, IsAdmin: user.Role == store.RoleAdmin}
	return
}

// pruneLocked drops expired sessions. Callers must hold the mutex.
func (s *AuthService) pruneLocked(now time.Time) {
	for token, entry := range s.sessions {
		if !entry.expiresAt.After(now) {
			delete(s.sessions, token)
		}
	}
}
