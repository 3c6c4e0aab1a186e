// ABOUTME: SessionStore: locally-authoritative session with safe backend reconciliation
// ABOUTME: Load/login/logout/update; forced logout only on genuine credential invalidation

package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/emberapp/ember-core/internal/api"
	"github.com/emberapp/ember-core/internal/kvstore"
)

// Backend is the subset of the API client the session store needs.
type Backend interface {
	ValidateSession(ctx context.Context) (*api.ValidateSessionResult, error)
	UpdateProfile(ctx context.Context, fields api.ProfileUpdate) error
}

// CacheClearer clears the app's domain cache on full logout. The chat and
// profile caches are external collaborators; the store only triggers them.
type CacheClearer interface {
	ClearAll(ctx context.Context) error
}

// Store owns the in-memory user snapshot and its persisted copy. Local data
// is authoritative for UI purposes; backend validation applies asynchronously
// and never destructively.
type Store struct {
	kv      kvstore.KV
	backend Backend
	cache   CacheClearer // may be nil
	logger  *slog.Logger

	mu         sync.Mutex
	user       *User
	phase      Phase
	loading    bool
	loaded     bool
	generation uint64

	tasks sync.WaitGroup
}

// NewStore creates a session store. cache may be nil when no domain cache
// is wired in.
func NewStore(kv kvstore.KV, backend Backend, cache CacheClearer) *Store {
	return &Store{
		kv:      kv,
		backend: backend,
		cache:   cache,
		logger:  slog.Default().With("component", "session"),
		phase:   PhaseUnloaded,
	}
}

// Current returns a copy of the in-memory user, or nil when logged out.
func (s *Store) Current() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Loading reports whether the boot-time load is still in progress.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Phase returns the current lifecycle phase.
func (s *Store) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Flush waits for all background persistence and sync tasks. Tests and
// shutdown paths use it; normal callers never wait.
func (s *Store) Flush() {
	s.tasks.Wait()
}

// generationNow returns the current generation under lock.
func (s *Store) generationNow() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// LoadLocal performs the boot-time load and conditional validation. It runs
// once per process; repeat calls return immediately. No error escapes: every
// failure path keeps whatever session state is already set and finishes with
// loading cleared.
func (s *Store) LoadLocal(ctx context.Context) {
	s.mu.Lock()
	if s.loaded {
		s.mu.Unlock()
		return
	}
	s.loaded = true
	s.loading = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	// Both reads issued concurrently, consumed once both resolve.
	var (
		rawUser, token   string
		userErr, tokErr  error
		wg               sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		rawUser, userErr = s.kv.Get(ctx, kvstore.KeyUser)
	}()
	go func() {
		defer wg.Done()
		token, tokErr = s.kv.Get(ctx, kvstore.KeyAuthToken)
	}()
	wg.Wait()

	if errors.Is(userErr, kvstore.ErrNotFound) {
		s.logger.Info("no stored session")
		return
	}
	if userErr != nil {
		s.logger.Error("reading stored session failed", "error", userErr)
		return
	}
	if tokErr != nil {
		if !errors.Is(tokErr, kvstore.ErrNotFound) {
			s.logger.Warn("reading auth token failed", "error", tokErr)
		}
		token = ""
	}

	user, hadOnboardedField, err := decodeStoredUser(rawUser)
	if err != nil {
		// Corrupt blob: keep whatever state exists, never wipe keys here.
		s.logger.Error("stored session unreadable", "error", err)
		return
	}

	if !hadOnboardedField {
		user.IsOnboarded = false
		if raw, err := json.Marshal(user); err == nil {
			if err := s.kv.Set(ctx, kvstore.KeyUser, string(raw)); err != nil {
				s.logger.Warn("persisting onboarding migration failed", "error", err)
			}
		}
	}

	// Local data is authoritative for the UI regardless of what validation
	// concludes later.
	s.mu.Lock()
	s.user = user
	s.phase = PhaseLocalOnly
	gen := s.generation
	s.mu.Unlock()

	s.logger.Info("session loaded from storage", "user_id", user.ID, "onboarded", user.IsOnboarded)
	logTokenState(s.logger, token)

	if !user.IsOnboarded || token == "" {
		return
	}

	s.setPhaseIfCurrent(gen, PhaseValidating)
	s.validate(ctx, gen)
}

// validate runs the backend session check and applies its outcome, unless a
// logout happened in the meantime (generation mismatch).
func (s *Store) validate(ctx context.Context, gen uint64) {
	result, err := s.backend.ValidateSession(ctx)

	switch {
	case errors.Is(err, api.ErrUnauthorized):
		// The unauthorized signal already drove the forced logout.
		s.logger.Warn("session validation rejected credentials")
		return
	case err != nil:
		// Offline or otherwise unreachable: fail open.
		s.logger.Warn("session validation unavailable, keeping local session", "error", err)
		s.setPhaseIfCurrent(gen, PhaseLocalOnly)
		return
	case !result.Valid:
		if isTransientMessage(result.Message) {
			s.logger.Warn("session validation inconclusive, keeping local session", "message", result.Message)
			s.setPhaseIfCurrent(gen, PhaseLocalOnly)
			return
		}
		s.logger.Warn("session invalidated by backend", "message", result.Message)
		s.ForcedLogout(ctx)
		return
	}

	// Valid: merge non-destructively, pinning the local onboarding flag.
	s.mu.Lock()
	if s.generation != gen || s.user == nil {
		s.mu.Unlock()
		s.logger.Info("discarding stale validation result")
		return
	}
	mergeRemote(s.user, result.User)
	s.phase = PhaseReconciled
	merged := *s.user
	s.mu.Unlock()

	s.persistIfCurrent(ctx, &merged, gen)
	s.logger.Info("session reconciled with backend", "user_id", merged.ID)
}

// setPhaseIfCurrent sets the phase unless a logout bumped the generation.
func (s *Store) setPhaseIfCurrent(gen uint64, p Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == gen {
		s.phase = p
	}
}

// isTransientMessage reports whether a valid=false message describes a
// transient condition (offline, fetch failure, missing token in transit)
// rather than genuine credential invalidation.
func isTransientMessage(msg string) bool {
	m := strings.ToLower(msg)
	for _, marker := range []string{"network", "offline", "timeout", "timed out", "no token", "fetch"} {
		if strings.Contains(m, marker) {
			return true
		}
	}
	return false
}

// Login persists the server-issued user and makes it the in-memory session.
// The read-back verification and token presence check are log-only: a
// failure there degrades durability, not the session itself.
func (s *Store) Login(ctx context.Context, user *User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, kvstore.KeyUser, string(raw)); err != nil {
		return err
	}

	if stored, err := s.kv.Get(ctx, kvstore.KeyUser); err != nil || stored != string(raw) {
		s.logger.Warn("login persistence verification failed", "error", err)
	}
	if _, err := s.kv.Get(ctx, kvstore.KeyAuthToken); err != nil {
		s.logger.Warn("no auth token stored at login")
	}

	s.mu.Lock()
	u := *user
	s.user = &u
	s.phase = PhaseReconciled
	s.mu.Unlock()

	s.logger.Info("logged in", "user_id", user.ID)
	return nil
}

// Logout clears the full client state: the domain cache, the fixed session
// keys, and every chat-prefixed cache key. Partial storage failure is logged
// and never propagated; the in-memory session is cleared regardless.
func (s *Store) Logout(ctx context.Context) {
	// Invalidate in-flight background work before touching storage so a
	// racing persist cannot resurrect the keys removed below.
	s.clearSession()

	if s.cache != nil {
		if err := s.cache.ClearAll(ctx); err != nil {
			s.logger.Warn("clearing domain cache failed", "error", err)
		}
	}

	remove := []string{kvstore.KeyUser, kvstore.KeyProfileCache, kvstore.KeyAuthToken}
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		s.logger.Warn("enumerating keys failed, chat cache entries may remain", "error", err)
	} else {
		for _, k := range keys {
			if strings.HasPrefix(k, kvstore.PrefixChat) || strings.HasPrefix(k, kvstore.PrefixChatSync) {
				remove = append(remove, k)
			}
		}
	}
	if err := s.kv.RemoveMulti(ctx, remove); err != nil {
		s.logger.Warn("removing session keys failed", "error", err)
	}

	s.logger.Info("logged out")
}

// ForcedLogout clears the session after detected credential invalidation.
// It removes only the user and auth token keys; the profile and chat caches
// survive for a faster re-login. Idempotent.
func (s *Store) ForcedLogout(ctx context.Context) {
	s.mu.Lock()
	wasLoggedIn := s.user != nil
	s.user = nil
	s.phase = PhaseInvalidated
	s.generation++
	s.mu.Unlock()

	if err := s.kv.RemoveMulti(ctx, []string{kvstore.KeyUser, kvstore.KeyAuthToken}); err != nil {
		s.logger.Warn("removing credentials failed", "error", err)
	}

	if wasLoggedIn {
		s.logger.Warn("forced logout: credentials invalidated")
	}
}

// clearSession nulls the in-memory session and invalidates in-flight work.
func (s *Store) clearSession() {
	s.mu.Lock()
	s.user = nil
	s.phase = PhaseUnloaded
	s.generation++
	s.mu.Unlock()
}

// UpdateUser shallow-merges the patch onto the current session. The merge is
// visible to the caller immediately; persistence and the allow-listed backend
// sync run as a tracked background task whose failures are logged only.
// A no-op when logged out.
func (s *Store) UpdateUser(ctx context.Context, patch Patch, skipBackendSync bool) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}
	patch.apply(s.user)
	merged := *s.user
	gen := s.generation
	s.mu.Unlock()

	s.tasks.Add(1)
	go func() {
		defer s.tasks.Done()
		s.persistIfCurrent(ctx, &merged, gen)

		if skipBackendSync {
			return
		}
		payload := patch.syncPayload()
		if len(payload) == 0 {
			return
		}
		if s.generationNow() != gen {
			return
		}
		if err := s.backend.UpdateProfile(ctx, payload); err != nil {
			s.logger.Warn("profile sync failed", "error", err)
			return
		}
		s.logger.Info("profile synced", "fields", len(payload))
	}()
}

// CompleteOnboarding marks the session onboarded. Idempotent; persistence is
// a tracked background task.
func (s *Store) CompleteOnboarding(ctx context.Context) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}
	s.user.IsOnboarded = true
	merged := *s.user
	gen := s.generation
	s.mu.Unlock()

	s.tasks.Add(1)
	go func() {
		defer s.tasks.Done()
		s.persistIfCurrent(ctx, &merged, gen)
	}()
}

// persistIfCurrent writes the user blob unless a logout has since bumped the
// generation; a stale write would resurrect keys for a torn-down session.
// The post-write re-check closes the window where a logout sweeps the keys
// between our check and our write.
func (s *Store) persistIfCurrent(ctx context.Context, user *User, gen uint64) {
	if s.generationNow() != gen {
		s.logger.Info("discarding stale session persist")
		return
	}
	raw, err := json.Marshal(user)
	if err != nil {
		s.logger.Error("encoding session failed", "error", err)
		return
	}
	if err := s.kv.Set(ctx, kvstore.KeyUser, string(raw)); err != nil {
		s.logger.Warn("persisting session failed", "error", err)
		return
	}
	if s.generationNow() != gen {
		if err := s.kv.Remove(ctx, kvstore.KeyUser); err != nil {
			s.logger.Warn("undoing stale session persist failed", "error", err)
		}
	}
}
