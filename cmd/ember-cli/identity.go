// ABOUTME: Per-machine device identity for the CLI, persisted as a TOML file
// ABOUTME: Generates and stores a stable device ID on first run

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
)

// deviceIdentity is what the backend sees as "this device". Real clients get
// these from the OS; the CLI fabricates one per machine and keeps it stable
// across runs so token registration behaves like a reinstalled app, not a
// fresh device every invocation.
type deviceIdentity struct {
	DeviceID string `toml:"device_id"`
	Platform string `toml:"platform"`
}

func identityPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "cli.toml"
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "ember", "cli.toml")
}

// loadDeviceIdentity reads the identity file, creating it with a fresh
// UUID on first run.
func loadDeviceIdentity() (*deviceIdentity, error) {
	path := identityPath()

	var ident deviceIdentity
	if _, err := toml.DecodeFile(path, &ident); err == nil && ident.DeviceID != "" {
		return &ident, nil
	} else if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading device identity %s: %w", path, err)
	}

	ident = deviceIdentity{
		DeviceID: uuid.NewString(),
		Platform: runtime.GOOS,
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("creating device identity %s: %w", path, err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(ident); err != nil {
		return nil, fmt.Errorf("writing device identity: %w", err)
	}
	return &ident, nil
}
