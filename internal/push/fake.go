// ABOUTME: In-memory Port and Events implementation for tests
// ABOUTME: Allows the registrar and notification store to run without a device

package push

import (
	"context"
	"errors"
	"sync"
)

// ErrNoToken is returned by FakePort.DeviceToken when no token is configured.
var ErrNoToken = errors.New("no device token available")

// FakePort implements Port and Events in memory. The zero value behaves like
// a simulator; configure Physical, Granted, GrantOnRequest, and Token to
// model a real device. Emit* methods deliver events to subscribed handlers.
type FakePort struct {
	mu sync.Mutex

	Physical       bool
	Granted        bool
	GrantOnRequest bool
	Token          string
	TokenErr       error
	ChannelsOff    bool // platform without channel support

	configured map[string]int // channel ID -> declare count
	badge      int
	dismissed  int

	deliveryHandlers map[int]func(Message)
	tapHandlers      map[int]func(Message)
	activeHandlers   map[int]func()
	nextHandlerID    int
}

// NewFakePort creates a FakePort modeling a physical device with permission
// granted on request and the given token.
func NewFakePort(token string) *FakePort {
	return &FakePort{
		Physical:       true,
		GrantOnRequest: true,
		Token:          token,
	}
}

// IsPhysicalDevice reports the configured Physical flag.
func (f *FakePort) IsPhysicalDevice() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Physical
}

// PermissionGranted reports the configured Granted flag.
func (f *FakePort) PermissionGranted(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Granted, nil
}

// RequestPermission grants when GrantOnRequest is set.
func (f *FakePort) RequestPermission(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GrantOnRequest {
		f.Granted = true
	}
	return f.Granted, nil
}

// DeviceToken returns the configured token or TokenErr.
func (f *FakePort) DeviceToken(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.TokenErr != nil {
		return "", f.TokenErr
	}
	if f.Token == "" {
		return "", ErrNoToken
	}
	return f.Token, nil
}

// SupportsChannels reports channel support (on unless ChannelsOff).
func (f *FakePort) SupportsChannels() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.ChannelsOff
}

// ConfigureChannel records the declaration.
func (f *FakePort) ConfigureChannel(ctx context.Context, ch Channel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.configured == nil {
		f.configured = make(map[string]int)
	}
	f.configured[ch.ID]++
	return nil
}

// ConfiguredChannels returns a copy of the channel declare counts.
func (f *FakePort) ConfiguredChannels() map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int, len(f.configured))
	for id, n := range f.configured {
		out[id] = n
	}
	return out
}

// SetBadgeCount records the badge value.
func (f *FakePort) SetBadgeCount(ctx context.Context, count int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.badge = count
	return nil
}

// Badge returns the last badge value set.
func (f *FakePort) Badge() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.badge
}

// DismissAll records the dismissal.
func (f *FakePort) DismissAll(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dismissed++
	return nil
}

// Dismissals returns how many times DismissAll has been called.
func (f *FakePort) Dismissals() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dismissed
}

// OnForegroundDelivery subscribes a foreground-delivery handler.
func (f *FakePort) OnForegroundDelivery(handler func(Message)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deliveryHandlers == nil {
		f.deliveryHandlers = make(map[int]func(Message))
	}
	id := f.nextHandlerID
	f.nextHandlerID++
	f.deliveryHandlers[id] = handler
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.deliveryHandlers, id)
	}
}

// OnTap subscribes a tap handler.
func (f *FakePort) OnTap(handler func(Message)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tapHandlers == nil {
		f.tapHandlers = make(map[int]func(Message))
	}
	id := f.nextHandlerID
	f.nextHandlerID++
	f.tapHandlers[id] = handler
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.tapHandlers, id)
	}
}

// OnAppForeground subscribes an app-foreground handler.
func (f *FakePort) OnAppForeground(handler func()) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.activeHandlers == nil {
		f.activeHandlers = make(map[int]func())
	}
	id := f.nextHandlerID
	f.nextHandlerID++
	f.activeHandlers[id] = handler
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.activeHandlers, id)
	}
}

// EmitForegroundDelivery delivers a foreground push to all handlers.
func (f *FakePort) EmitForegroundDelivery(msg Message) {
	for _, h := range f.snapshotDelivery() {
		h(msg)
	}
}

// EmitTap delivers a tap event to all handlers.
func (f *FakePort) EmitTap(msg Message) {
	for _, h := range f.snapshotTap() {
		h(msg)
	}
}

// EmitAppForeground delivers an app-active transition to all handlers.
func (f *FakePort) EmitAppForeground() {
	f.mu.Lock()
	handlers := make([]func(), 0, len(f.activeHandlers))
	for _, h := range f.activeHandlers {
		handlers = append(handlers, h)
	}
	f.mu.Unlock()
	for _, h := range handlers {
		h()
	}
}

func (f *FakePort) snapshotDelivery() []func(Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	handlers := make([]func(Message), 0, len(f.deliveryHandlers))
	for _, h := range f.deliveryHandlers {
		handlers = append(handlers, h)
	}
	return handlers
}

func (f *FakePort) snapshotTap() []func(Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	handlers := make([]func(Message), 0, len(f.tapHandlers))
	for _, h := range f.tapHandlers {
		handlers = append(handlers, h)
	}
	return handlers
}
