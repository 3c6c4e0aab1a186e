// ABOUTME: NotificationStore: list, unread count, badge, and pending navigation
// ABOUTME: Orchestrates the push registrar and reacts to delivery/tap/foreground events

package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/emberapp/ember-core/internal/api"
	"github.com/emberapp/ember-core/internal/push"
)

// pageSize is the fixed page size for the first-page refresh.
const pageSize = 50

// Backend is the subset of the API client the notification store needs.
type Backend interface {
	GetNotifications(ctx context.Context, page, pageSize int) ([]api.Notification, error)
	GetUnreadCount(ctx context.Context) (int, error)
	MarkAsRead(ctx context.Context, id string) error
	MarkAllAsRead(ctx context.Context) error
}

// Registrar drives the push token lifecycle during setup and cleanup.
type Registrar interface {
	ConfigureChannels(ctx context.Context) error
	RequestAndGetToken(ctx context.Context) (string, error)
	RegisterWithBackend(ctx context.Context, token string) error
	UnregisterFromBackend(ctx context.Context) error
}

// Tray is the device notification surface: the app icon badge and the
// notifications currently displayed.
type Tray interface {
	SetBadgeCount(ctx context.Context, count int) error
	DismissAll(ctx context.Context) error
}

// Store owns the notification list, the unread count, and the pending
// navigation slot. Listener wiring happens at construction and lasts for the
// store's lifetime; Close removes the subscriptions.
type Store struct {
	backend   Backend
	registrar Registrar
	tray      Tray
	logger    *slog.Logger

	mu            sync.Mutex
	notifications []api.Notification
	unreadCount   int
	loading       bool
	pending       *NavigationIntent
	generation    uint64

	removeListeners []func()
}

// NewStore creates a notification store and subscribes to push events:
// foreground deliveries and app-foreground transitions trigger a refresh,
// taps populate the pending navigation slot.
func NewStore(backend Backend, registrar Registrar, tray Tray, events push.Events) *Store {
	s := &Store{
		backend:   backend,
		registrar: registrar,
		tray:      tray,
		logger:    slog.Default().With("component", "notify"),
	}

	s.removeListeners = append(s.removeListeners,
		events.OnForegroundDelivery(func(msg push.Message) {
			s.Refresh(context.Background())
		}),
		events.OnTap(func(msg push.Message) {
			s.handleTap(context.Background(), msg)
		}),
		events.OnAppForeground(func() {
			s.Refresh(context.Background())
		}),
	)

	return s
}

// Close removes the push event subscriptions.
func (s *Store) Close() {
	for _, remove := range s.removeListeners {
		remove()
	}
	s.removeListeners = nil
}

// Notifications returns a copy of the current list, newest first.
func (s *Store) Notifications() []api.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Notification(nil), s.notifications...)
}

// UnreadCount returns the current unread count.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unreadCount
}

// Loading reports whether a refresh is in progress.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// PendingNavigation returns the queued navigation intent, or nil.
func (s *Store) PendingNavigation() *NavigationIntent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return nil
	}
	intent := *s.pending
	return &intent
}

// ClearPendingNavigation empties the slot after the UI acted on the intent,
// enforcing at-most-once consumption.
func (s *Store) ClearPendingNavigation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// Refresh fetches the first notification page and the unread count
// concurrently and replaces the list wholesale. Failures are logged and the
// prior state is kept. Concurrent refreshes are not de-duplicated: the last
// one to resolve wins with a full snapshot.
func (s *Store) Refresh(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	gen := s.generation
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	var (
		list     []api.Notification
		count    int
		listErr  error
		countErr error
		wg       sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		list, listErr = s.backend.GetNotifications(ctx, 1, pageSize)
	}()
	go func() {
		defer wg.Done()
		count, countErr = s.backend.GetUnreadCount(ctx)
	}()
	wg.Wait()

	if listErr != nil || countErr != nil {
		s.logger.Warn("refreshing notifications failed", "list_error", listErr, "count_error", countErr)
		return
	}

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		s.logger.Info("discarding stale notification refresh")
		return
	}
	s.notifications = list
	s.unreadCount = count
	s.mu.Unlock()

	s.setBadge(ctx, count)
	s.logger.Info("notifications refreshed", "count", len(list), "unread", count)
}

// MarkAsRead marks one notification read: backend first, then the local flip,
// count decrement (floored at zero), and a badge update from the decremented
// value. Failures are logged and leave state untouched.
func (s *Store) MarkAsRead(ctx context.Context, id string) {
	if err := s.backend.MarkAsRead(ctx, id); err != nil {
		s.logger.Warn("marking notification read failed", "id", id, "error", err)
		return
	}

	s.mu.Lock()
	flipped := false
	for i := range s.notifications {
		if s.notifications[i].ID == id && !s.notifications[i].IsRead {
			s.notifications[i].IsRead = true
			flipped = true
			break
		}
	}
	if flipped && s.unreadCount > 0 {
		s.unreadCount--
	}
	newCount := s.unreadCount
	s.mu.Unlock()

	if flipped {
		s.setBadge(ctx, newCount)
	}
}

// MarkAllAsRead marks every notification read: backend first, then all local
// records, count zero, badge zero.
func (s *Store) MarkAllAsRead(ctx context.Context) {
	if err := s.backend.MarkAllAsRead(ctx); err != nil {
		s.logger.Warn("marking all notifications read failed", "error", err)
		return
	}

	s.mu.Lock()
	for i := range s.notifications {
		s.notifications[i].IsRead = true
	}
	s.unreadCount = 0
	s.mu.Unlock()

	s.setBadge(ctx, 0)
}

// Setup configures channels, obtains and registers a push token, and runs an
// initial refresh. Returns false at the first failed stage; the caller may
// re-invoke to retry.
func (s *Store) Setup(ctx context.Context) bool {
	if err := s.registrar.ConfigureChannels(ctx); err != nil {
		s.logger.Warn("configuring notification channels failed", "error", err)
		return false
	}

	token, err := s.registrar.RequestAndGetToken(ctx)
	if err != nil {
		s.logger.Warn("obtaining push token failed", "error", err)
		return false
	}
	if token == "" {
		// Simulator or permission denied; not an error.
		return false
	}

	if err := s.registrar.RegisterWithBackend(ctx, token); err != nil {
		s.logger.Warn("registering push token failed", "error", err)
		return false
	}

	s.Refresh(ctx)
	return true
}

// Cleanup unregisters the push token, resets list, count, and badge, and
// sweeps any notifications still in the tray. Called on logout before the
// session keys are cleared. An absent token is treated as already
// unregistered.
func (s *Store) Cleanup(ctx context.Context) {
	// Invalidate in-flight refreshes before tearing state down.
	s.mu.Lock()
	s.generation++
	s.notifications = nil
	s.unreadCount = 0
	s.mu.Unlock()

	if err := s.registrar.UnregisterFromBackend(ctx); err != nil {
		s.logger.Warn("unregistering push token failed", "error", err)
	}

	s.setBadge(ctx, 0)
	if err := s.tray.DismissAll(ctx); err != nil {
		s.logger.Warn("dismissing displayed notifications failed", "error", err)
	}
	s.logger.Info("notification state cleaned up")
}

// handleTap maps a tap payload to a navigation intent and marks the carried
// notification read.
func (s *Store) handleTap(ctx context.Context, msg push.Message) {
	intent := intentForPayload(msg.Data)

	s.mu.Lock()
	s.pending = &intent
	s.mu.Unlock()

	s.logger.Info("notification tapped", "type", msg.Data["type"], "screen", intent.Screen)

	if id := msg.Data["notificationId"]; id != "" {
		s.MarkAsRead(ctx, id)
	}
}

func (s *Store) setBadge(ctx context.Context, count int) {
	if err := s.tray.SetBadgeCount(ctx, count); err != nil {
		s.logger.Warn("setting badge failed", "error", err)
	}
}
