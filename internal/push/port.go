// ABOUTME: Port and Events abstractions over the OS push/permission layer
// ABOUTME: Defines the fixed notification channel catalog for the app

package push

import "context"

// Importance is the OS-level priority of a notification channel.
type Importance int

const (
	ImportanceLow Importance = iota + 1
	ImportanceMedium
	ImportanceHigh
	ImportanceCritical
)

// Channel is an OS notification channel declaration. Declaring an existing
// channel with the same settings is a no-op at the OS level.
type Channel struct {
	ID         string
	Name       string
	Importance Importance
	Vibration  []int // vibration pattern in milliseconds, nil for none
}

// Channels returns the app's fixed channel catalog.
func Channels() []Channel {
	return []Channel{
		{ID: "critical", Name: "Matches & Calls", Importance: ImportanceCritical, Vibration: []int{0, 250, 250, 250}},
		{ID: "high", Name: "Messages", Importance: ImportanceHigh, Vibration: []int{0, 250}},
		{ID: "medium", Name: "Likes & Rewards", Importance: ImportanceMedium},
		{ID: "low", Name: "Profile Views", Importance: ImportanceLow},
	}
}

// Message is an incoming push event. Data is the flat string payload carrying
// "type" and, depending on type, one of "matchId", "callId", "notificationId".
type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

// Port wraps the OS push and permission layer.
type Port interface {
	// IsPhysicalDevice reports whether push tokens can be issued at all.
	// Simulators and test targets return false.
	IsPhysicalDevice() bool

	// PermissionGranted reports the current notification permission.
	PermissionGranted(ctx context.Context) (bool, error)

	// RequestPermission prompts the user and reports the outcome.
	RequestPermission(ctx context.Context) (bool, error)

	// DeviceToken returns the platform push token for this installation.
	DeviceToken(ctx context.Context) (string, error)

	// SupportsChannels reports whether the platform has notification channels.
	SupportsChannels() bool

	// ConfigureChannel declares a channel. Idempotent.
	ConfigureChannel(ctx context.Context, ch Channel) error

	// SetBadgeCount sets the app icon badge.
	SetBadgeCount(ctx context.Context, count int) error

	// DismissAll removes all delivered notifications from the tray.
	DismissAll(ctx context.Context) error
}

// Events exposes push event subscriptions. Each subscription returns a
// remove function; handlers stay registered for the subscriber's lifetime.
type Events interface {
	// OnForegroundDelivery fires when a push arrives while the app is active.
	OnForegroundDelivery(handler func(Message)) (remove func())

	// OnTap fires when the user taps a notification.
	OnTap(handler func(Message)) (remove func())

	// OnAppForeground fires when the app transitions to the active state.
	OnAppForeground(handler func()) (remove func())
}
