// ABOUTME: Push token lifecycle: permission, token retrieval, backend registration
// ABOUTME: Stage machine None -> Requested -> Obtained -> Registered, cleared on logout

package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/emberapp/ember-core/internal/kvstore"
)

// Stage is the push token lifecycle stage. A failure at any step halts
// progression at the last successful stage; there is no automatic retry —
// the caller re-invokes setup.
type Stage int

const (
	StageNone Stage = iota
	StageRequested
	StageObtained
	StageRegistered
)

// String returns the stage name for logging.
func (s Stage) String() string {
	switch s {
	case StageNone:
		return "none"
	case StageRequested:
		return "requested"
	case StageObtained:
		return "obtained"
	case StageRegistered:
		return "registered"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Backend is the subset of the API client the registrar needs.
type Backend interface {
	RegisterPushToken(ctx context.Context, token, platform, deviceID string) error
	UnregisterPushToken(ctx context.Context, token string) error
}

// Registrar owns the push token lifecycle. It is the only writer of the
// fcmPushToken storage key.
type Registrar struct {
	port     Port
	kv       kvstore.KV
	backend  Backend
	platform string
	deviceID string
	logger   *slog.Logger

	mu    sync.Mutex
	stage Stage
}

// NewRegistrar creates a registrar for the given device identity.
func NewRegistrar(port Port, kv kvstore.KV, backend Backend, platform, deviceID string) *Registrar {
	return &Registrar{
		port:     port,
		kv:       kv,
		backend:  backend,
		platform: platform,
		deviceID: deviceID,
		logger:   slog.Default().With("component", "push"),
	}
}

// Stage returns the current lifecycle stage.
func (r *Registrar) Stage() Stage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stage
}

func (r *Registrar) setStage(s Stage) {
	r.mu.Lock()
	r.stage = s
	r.mu.Unlock()
}

// ConfigureChannels declares the fixed channel catalog. Idempotent; a no-op
// on platforms without channel support.
func (r *Registrar) ConfigureChannels(ctx context.Context) error {
	if !r.port.SupportsChannels() {
		return nil
	}
	for _, ch := range Channels() {
		if err := r.port.ConfigureChannel(ctx, ch); err != nil {
			return fmt.Errorf("configuring channel %q: %w", ch.ID, err)
		}
	}
	return nil
}

// RequestAndGetToken checks or requests notification permission and, when
// granted, obtains the platform token and persists it. Returns "" without
// error on non-physical targets and when permission is denied.
func (r *Registrar) RequestAndGetToken(ctx context.Context) (string, error) {
	if !r.port.IsPhysicalDevice() {
		r.logger.Info("push tokens unavailable on non-physical target")
		return "", nil
	}

	r.setStage(StageRequested)

	granted, err := r.port.PermissionGranted(ctx)
	if err != nil {
		return "", fmt.Errorf("checking notification permission: %w", err)
	}
	if !granted {
		granted, err = r.port.RequestPermission(ctx)
		if err != nil {
			return "", fmt.Errorf("requesting notification permission: %w", err)
		}
	}
	if !granted {
		r.logger.Info("notification permission denied")
		return "", nil
	}

	token, err := r.port.DeviceToken(ctx)
	if err != nil {
		return "", fmt.Errorf("obtaining device token: %w", err)
	}

	if err := r.kv.Set(ctx, kvstore.KeyPushToken, token); err != nil {
		// Token is still usable this session; only re-registration after
		// restart is affected.
		r.logger.Warn("persisting push token failed", "error", err)
	}

	r.setStage(StageObtained)
	r.logger.Info("push token obtained", "device_id", r.deviceID)
	return token, nil
}

// RegisterWithBackend registers the token for this device with the backend.
func (r *Registrar) RegisterWithBackend(ctx context.Context, token string) error {
	if err := r.backend.RegisterPushToken(ctx, token, r.platform, r.deviceID); err != nil {
		return fmt.Errorf("registering push token: %w", err)
	}
	r.setStage(StageRegistered)
	r.logger.Info("push token registered", "platform", r.platform, "device_id", r.deviceID)
	return nil
}

// UnregisterFromBackend removes the stored token from the backend and from
// local storage. An absent token is treated as already unregistered.
func (r *Registrar) UnregisterFromBackend(ctx context.Context) error {
	token, err := r.kv.Get(ctx, kvstore.KeyPushToken)
	if errors.Is(err, kvstore.ErrNotFound) {
		r.setStage(StageNone)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading stored push token: %w", err)
	}

	if err := r.backend.UnregisterPushToken(ctx, token); err != nil {
		return fmt.Errorf("unregistering push token: %w", err)
	}

	if err := r.kv.Remove(ctx, kvstore.KeyPushToken); err != nil {
		r.logger.Warn("removing stored push token failed", "error", err)
	}

	r.setStage(StageNone)
	r.logger.Info("push token unregistered", "device_id", r.deviceID)
	return nil
}
