package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"admin-dashboard/internal/gateway"
	"admin-dashboard/internal/models"
	"admin-dashboard/internal/util"

	"go.uber.org/zap"
)

// AuthAPI is the slice of the remote gateway the session store needs.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (models.AuthResult, error)
	Signup(ctx context.Context, username, email, password string) error
	MyDetails(ctx context.Context, token string) (models.User, error)
}

// Store holds the authenticated session and mirrors it into the durable
// Storage port. Token presence and IsAuthenticated only ever change
// together, and the storage mirror is written under the same lock as the
// in-memory state, so memory and storage never disagree across a
// concurrent Login/Logout interleaving. gen counts session mutations;
// RestoreFromStorage uses it to discard a restore that a concurrent
// mutation superseded while the network call was in flight.
type Store struct {
	mu      sync.RWMutex
	api     AuthAPI
	storage Storage
	logger  *zap.Logger
	sess    models.Session
	gen     uint64
}

// NewStore creates an empty, unauthenticated session store.
func NewStore(api AuthAPI, storage Storage) *Store {
	return &Store{
		api:     api,
		storage: storage,
		logger:  util.NamedLogger("session"),
	}
}

// Token returns the current bearer token snapshot, or "". It implements
// gateway.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.Token
}

var _ gateway.TokenSource = (*Store)(nil)

// Snapshot returns a consistent copy of the session state.
func (s *Store) Snapshot() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess := s.sess
	if s.sess.User != nil {
		u := *s.sess.User
		sess.User = &u
	}
	return sess
}

// Login authenticates against the upstream API. On success the token and
// user are stored atomically and persisted; on failure the prior session
// state is left untouched.
func (s *Store) Login(ctx context.Context, email, password string) error {
	result, err := s.api.Login(ctx, email, password)
	if err != nil {
		util.SessionLoginsTotal.WithLabelValues("failure").Inc()
		return fmt.Errorf("login failed: %w", err)
	}

	user := result.User
	s.mu.Lock()
	s.gen++
	s.sess = models.Session{
		Token:           result.Token,
		UserID:          user.ID,
		User:            &user,
		IsAuthenticated: true,
	}
	s.persistLocked(ctx, result.Token, user)
	s.mu.Unlock()

	util.SessionLoginsTotal.WithLabelValues("success").Inc()
	s.logger.Info("Logged in", zap.String("user_id", user.ID), zap.Bool("is_admin", user.IsAdmin))
	return nil
}

// Signup registers a new account without touching session state.
func (s *Store) Signup(ctx context.Context, username, email, password string) error {
	if err := s.api.Signup(ctx, username, email, password); err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}
	return nil
}

// RestoreFromStorage rebuilds the session from a previously stored token.
// A token the server no longer accepts triggers a full logout so no stale
// token survives in storage; transport and server failures leave storage
// untouched so a later restore can retry.
func (s *Store) RestoreFromStorage(ctx context.Context) error {
	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()

	token, err := s.storage.Get(ctx, KeyToken)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read stored token: %w", err)
	}

	user, err := s.api.MyDetails(ctx, token)
	if err != nil {
		if gateway.IsAuth(err) || gateway.IsValidation(err) {
			s.logger.Warn("Stored token rejected, logging out", zap.Error(err))
			s.Logout()
			util.SessionRestoresTotal.WithLabelValues("rejected").Inc()
			return fmt.Errorf("stored token rejected: %w", err)
		}
		util.SessionRestoresTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to restore session: %w", err)
	}

	s.mu.Lock()
	if s.gen != gen {
		// A login or logout ran while the details call was in flight;
		// that mutation is newer than the state we are restoring.
		s.mu.Unlock()
		s.logger.Info("Session restore superseded by a concurrent mutation")
		util.SessionRestoresTotal.WithLabelValues("superseded").Inc()
		return nil
	}
	s.gen++
	s.sess = models.Session{
		Token:           token,
		UserID:          user.ID,
		User:            &user,
		IsAuthenticated: true,
	}
	s.mu.Unlock()

	util.SessionRestoresTotal.WithLabelValues("success").Inc()
	s.logger.Info("Session restored", zap.String("user_id", user.ID))
	return nil
}

// Logout clears the in-memory session and every related storage key.
// It is idempotent.
func (s *Store) Logout() {
	s.mu.Lock()
	s.gen++
	s.sess = models.Session{}
	if err := s.storage.Delete(context.Background(), KeyToken, KeyUserID, KeyUser, KeyCart); err != nil {
		s.logger.Error("Failed to clear session storage", zap.Error(err))
	}
	s.mu.Unlock()

	util.SessionLogoutsTotal.Inc()
}

// persistLocked mirrors the logged-in session into durable storage. The
// caller must hold s.mu so the mirror stays in step with the in-memory
// state. Storage failures are logged, not surfaced: the in-memory
// session is already authoritative for this process.
func (s *Store) persistLocked(ctx context.Context, token string, user models.User) {
	if err := s.storage.Set(ctx, KeyToken, token); err != nil {
		s.logger.Error("Failed to persist token", zap.Error(err))
		return
	}
	if err := s.storage.Set(ctx, KeyUserID, user.ID); err != nil {
		s.logger.Error("Failed to persist user id", zap.Error(err))
	}
	encoded, err := json.Marshal(user)
	if err == nil {
		if err := s.storage.Set(ctx, KeyUser, string(encoded)); err != nil {
			s.logger.Error("Failed to persist user", zap.Error(err))
		}
	}
}
