// ABOUTME: Tests for the push token lifecycle registrar
// ABOUTME: Covers permission flow, stage progression, and unregistration

package push

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberapp/ember-core/internal/kvstore"
)

// fakeBackend records token registration calls.
type fakeBackend struct {
	registered   []string
	unregistered []string
	registerErr  error
	unregErr     error
}

func (b *fakeBackend) RegisterPushToken(ctx context.Context, token, platform, deviceID string) error {
	if b.registerErr != nil {
		return b.registerErr
	}
	b.registered = append(b.registered, token)
	return nil
}

func (b *fakeBackend) UnregisterPushToken(ctx context.Context, token string) error {
	if b.unregErr != nil {
		return b.unregErr
	}
	b.unregistered = append(b.unregistered, token)
	return nil
}

func newTestRegistrar(t *testing.T, port *FakePort) (*Registrar, kvstore.KV, *fakeBackend) {
	t.Helper()
	kv := kvstore.NewMemoryKV()
	backend := &fakeBackend{}
	return NewRegistrar(port, kv, backend, "android", "device-1"), kv, backend
}

func TestRequestAndGetToken_NonPhysicalDevice(t *testing.T) {
	port := NewFakePort("fcm-abc")
	port.Physical = false
	reg, kv, _ := newTestRegistrar(t, port)

	token, err := reg.RequestAndGetToken(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Equal(t, StageNone, reg.Stage())

	_, err = kv.Get(context.Background(), kvstore.KeyPushToken)
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestRequestAndGetToken_PermissionDenied(t *testing.T) {
	port := NewFakePort("fcm-abc")
	port.GrantOnRequest = false
	reg, _, _ := newTestRegistrar(t, port)

	token, err := reg.RequestAndGetToken(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Equal(t, StageRequested, reg.Stage())
}

func TestRequestAndGetToken_GrantedAndPersisted(t *testing.T) {
	port := NewFakePort("fcm-abc")
	reg, kv, _ := newTestRegistrar(t, port)

	token, err := reg.RequestAndGetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fcm-abc", token)
	assert.Equal(t, StageObtained, reg.Stage())

	stored, err := kv.Get(context.Background(), kvstore.KeyPushToken)
	require.NoError(t, err)
	assert.Equal(t, "fcm-abc", stored)
}

func TestRequestAndGetToken_AlreadyGrantedSkipsPrompt(t *testing.T) {
	port := NewFakePort("fcm-abc")
	port.Granted = true
	port.GrantOnRequest = false // a prompt would deny
	reg, _, _ := newTestRegistrar(t, port)

	token, err := reg.RequestAndGetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fcm-abc", token)
}

func TestRegisterWithBackend_StageProgression(t *testing.T) {
	port := NewFakePort("fcm-abc")
	reg, _, backend := newTestRegistrar(t, port)

	token, err := reg.RequestAndGetToken(context.Background())
	require.NoError(t, err)

	require.NoError(t, reg.RegisterWithBackend(context.Background(), token))
	assert.Equal(t, StageRegistered, reg.Stage())
	assert.Equal(t, []string{"fcm-abc"}, backend.registered)
}

func TestRegisterWithBackend_FailureHaltsStage(t *testing.T) {
	port := NewFakePort("fcm-abc")
	reg, _, backend := newTestRegistrar(t, port)
	backend.registerErr = errors.New("boom")

	token, err := reg.RequestAndGetToken(context.Background())
	require.NoError(t, err)

	err = reg.RegisterWithBackend(context.Background(), token)
	require.Error(t, err)
	assert.Equal(t, StageObtained, reg.Stage(), "failed registration must halt at Obtained")
}

func TestUnregister_NoStoredToken(t *testing.T) {
	port := NewFakePort("fcm-abc")
	reg, _, backend := newTestRegistrar(t, port)

	require.NoError(t, reg.UnregisterFromBackend(context.Background()))
	assert.Empty(t, backend.unregistered, "no network call without a stored token")
	assert.Equal(t, StageNone, reg.Stage())
}

func TestUnregister_RemovesLocalKey(t *testing.T) {
	port := NewFakePort("fcm-abc")
	reg, kv, backend := newTestRegistrar(t, port)

	token, err := reg.RequestAndGetToken(context.Background())
	require.NoError(t, err)
	require.NoError(t, reg.RegisterWithBackend(context.Background(), token))

	require.NoError(t, reg.UnregisterFromBackend(context.Background()))
	assert.Equal(t, []string{"fcm-abc"}, backend.unregistered)
	assert.Equal(t, StageNone, reg.Stage())

	_, err = kv.Get(context.Background(), kvstore.KeyPushToken)
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestUnregister_BackendFailureKeepsLocalKey(t *testing.T) {
	port := NewFakePort("fcm-abc")
	reg, kv, backend := newTestRegistrar(t, port)
	backend.unregErr = errors.New("boom")

	_, err := reg.RequestAndGetToken(context.Background())
	require.NoError(t, err)

	err = reg.UnregisterFromBackend(context.Background())
	require.Error(t, err)

	stored, err := kv.Get(context.Background(), kvstore.KeyPushToken)
	require.NoError(t, err)
	assert.Equal(t, "fcm-abc", stored, "token stays stored so a retry can unregister it")
}

func TestConfigureChannels_DeclaresCatalogIdempotently(t *testing.T) {
	port := NewFakePort("fcm-abc")
	reg, _, _ := newTestRegistrar(t, port)

	require.NoError(t, reg.ConfigureChannels(context.Background()))
	require.NoError(t, reg.ConfigureChannels(context.Background()))

	configured := port.ConfiguredChannels()
	assert.Len(t, configured, 4)
	for _, ch := range Channels() {
		assert.Equal(t, 2, configured[ch.ID])
	}
}

func TestConfigureChannels_NoopWithoutSupport(t *testing.T) {
	port := NewFakePort("fcm-abc")
	port.ChannelsOff = true
	reg, _, _ := newTestRegistrar(t, port)

	require.NoError(t, reg.ConfigureChannels(context.Background()))
	assert.Empty(t, port.ConfiguredChannels())
}

func TestChannelCatalog(t *testing.T) {
	channels := Channels()
	require.Len(t, channels, 4)

	byID := make(map[string]Channel, len(channels))
	for _, ch := range channels {
		byID[ch.ID] = ch
	}

	assert.Equal(t, ImportanceCritical, byID["critical"].Importance)
	assert.Equal(t, "Matches & Calls", byID["critical"].Name)
	assert.NotEmpty(t, byID["critical"].Vibration)
	assert.NotEmpty(t, byID["high"].Vibration)
	assert.Empty(t, byID["medium"].Vibration)
	assert.Empty(t, byID["low"].Vibration)
}
