// ABOUTME: Diagnostic CLI and composition root for the Ember client core
// ABOUTME: Wires storage, API client, unauthorized signal, and the stores together

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/emberapp/ember-core/internal/api"
	"github.com/emberapp/ember-core/internal/config"
	"github.com/emberapp/ember-core/internal/kvstore"
	"github.com/emberapp/ember-core/internal/notify"
	"github.com/emberapp/ember-core/internal/push"
	"github.com/emberapp/ember-core/internal/session"
)

// version is set at build time via -ldflags.
var version = "dev"

const banner = `
            _
   ___ _ __ ___ | |__   ___ _ __
  / _ \ '_ ` + "`" + ` _ \| '_ \ / _ \ '__|
 |  __/ | | | | | |_) |  __/ |
  \___|_| |_| |_|_.__/ \___|_|
`

// getConfigPath returns the path to the client config file.
// Priority: EMBER_CONFIG env var > XDG_CONFIG_HOME/ember/config.yaml > ~/.config/ember/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("EMBER_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "ember", "config.yaml")
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	if cmd == "version" {
		fmt.Printf("ember-cli %s\n", version)
		return
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		fatal("loading config: %v", err)
	}
	setupLogging(cfg.Logging)

	app, err := buildApp(cfg)
	if err != nil {
		fatal("initializing: %v", err)
	}
	defer app.kv.Close()

	ctx := context.Background()

	switch cmd {
	case "status":
		err = app.cmdStatus(ctx)
	case "login":
		err = app.cmdLogin(ctx, args)
	case "logout":
		err = app.cmdLogout(ctx)
	case "setup":
		err = app.cmdSetup(ctx)
	case "notifications":
		err = app.cmdNotifications(ctx)
	case "read":
		err = app.cmdRead(ctx, args)
	case "read-all":
		err = app.cmdReadAll(ctx)
	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fatal("%v", err)
	}
}

func printUsage() {
	fmt.Print(banner)
	fmt.Println(`Usage: ember-cli <command>

Commands:
  status                    show session and notification state
  login <id> <name>         log in (--token <authToken> stores credentials)
  logout                    full logout (clears caches and chat keys)
  setup                     configure channels, register push token, refresh
  notifications             list notifications
  read <id>                 mark one notification read
  read-all                  mark all notifications read
  version                   print version

Config file: EMBER_CONFIG or ~/.config/ember/config.yaml
Device identity: ~/.config/ember/cli.toml (created on first run)`)
}

func fatal(format string, args ...any) {
	color.Red(format, args...)
	os.Exit(1)
}

// setupLogging configures slog from the logging section.
func setupLogging(cfg config.LoggingConfig) {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}

// app holds the composed client core.
type app struct {
	kv            kvstore.KV
	client        *api.Client
	sessions      *session.Store
	notifications *notify.Store
	registrar     *push.Registrar
	port          *push.FakePort
}

// buildApp is the composition root: one instance of each service, wired
// explicitly, with the forced logout registered on the unauthorized signal.
func buildApp(cfg *config.Config) (*app, error) {
	kv, err := openKV(cfg.Storage)
	if err != nil {
		return nil, err
	}

	device, err := loadDeviceIdentity()
	if err != nil {
		return nil, err
	}
	platform := cfg.Push.Platform
	if platform == "" {
		platform = device.Platform
	}

	signal := api.NewUnauthorizedSignal()
	client := api.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, &api.KVTokenSource{KV: kv}, signal)

	sessions := session.NewStore(kv, client, nil)
	signal.Register(func() {
		sessions.ForcedLogout(context.Background())
	})

	// The CLI has no OS push layer; a fake port stands in so the token and
	// badge flows can still be exercised end to end.
	port := push.NewFakePort("cli-" + device.DeviceID)
	registrar := push.NewRegistrar(port, kv, client, platform, device.DeviceID)
	notifications := notify.NewStore(client, registrar, port, port)

	return &app{
		kv:            kv,
		client:        client,
		sessions:      sessions,
		notifications: notifications,
		registrar:     registrar,
		port:          port,
	}, nil
}

func openKV(cfg config.StorageConfig) (kvstore.KV, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return kvstore.NewSQLiteKV(cfg.Path)
	case config.DriverRedis:
		namespace := cfg.RedisNamespace
		if namespace == "" {
			namespace = "ember:"
		}
		return kvstore.NewRedisKV(context.Background(), cfg.RedisAddr, namespace)
	case config.DriverMemory:
		return kvstore.NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func (a *app) cmdStatus(ctx context.Context) error {
	a.sessions.LoadLocal(ctx)

	bold := color.New(color.Bold)
	bold.Println("Session")
	user := a.sessions.Current()
	if user == nil {
		color.Yellow("  logged out (%s)", a.sessions.Phase())
	} else {
		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintf(w, "  id\t%s\n", user.ID)
		fmt.Fprintf(w, "  name\t%s\n", user.Name)
		fmt.Fprintf(w, "  onboarded\t%v\n", user.IsOnboarded)
		fmt.Fprintf(w, "  face verified\t%v\n", user.IsFaceVerified)
		fmt.Fprintf(w, "  phase\t%s\n", a.sessions.Phase())
		w.Flush()
	}

	bold.Println("Push")
	fmt.Printf("  token stage: %s\n", a.registrar.Stage())
	return nil
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	var token string
	var rest []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--token" && i+1 < len(args) {
			token = args[i+1]
			i++
			continue
		}
		rest = append(rest, args[i])
	}
	if len(rest) < 2 {
		return fmt.Errorf("usage: login <id> <name> [--token <authToken>]")
	}

	if token != "" {
		if err := a.kv.Set(ctx, kvstore.KeyAuthToken, token); err != nil {
			return fmt.Errorf("storing auth token: %w", err)
		}
	}

	user := &session.User{ID: rest[0], Name: strings.Join(rest[1:], " "), IsOnboarded: true}
	if err := a.sessions.Login(ctx, user); err != nil {
		return fmt.Errorf("logging in: %w", err)
	}
	color.Green("logged in as %s (%s)", user.Name, user.ID)
	return nil
}

func (a *app) cmdLogout(ctx context.Context) error {
	// Token unregistration must happen while credentials still exist.
	a.notifications.Cleanup(ctx)
	a.sessions.Logout(ctx)
	a.sessions.Flush()
	color.Green("logged out")
	return nil
}

func (a *app) cmdSetup(ctx context.Context) error {
	a.sessions.LoadLocal(ctx)
	if a.sessions.Current() == nil {
		return fmt.Errorf("not logged in")
	}

	if ok := a.notifications.Setup(ctx); !ok {
		return fmt.Errorf("notification setup halted at stage %q", a.registrar.Stage())
	}
	color.Green("push token registered (stage %s), %d notifications, %d unread",
		a.registrar.Stage(), len(a.notifications.Notifications()), a.notifications.UnreadCount())
	return nil
}

func (a *app) cmdNotifications(ctx context.Context) error {
	a.notifications.Refresh(ctx)

	list := a.notifications.Notifications()
	if len(list) == 0 {
		color.Yellow("no notifications")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tTITLE\tREAD\tCREATED")
	for _, n := range list {
		read := " "
		if n.IsRead {
			read = "x"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", n.ID, n.Type, n.Title, read, n.CreatedAt.Format("2006-01-02 15:04"))
	}
	w.Flush()
	fmt.Printf("%d unread\n", a.notifications.UnreadCount())
	return nil
}

func (a *app) cmdRead(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: read <id>")
	}
	a.notifications.Refresh(ctx)
	a.notifications.MarkAsRead(ctx, args[0])
	fmt.Printf("%d unread\n", a.notifications.UnreadCount())
	return nil
}

func (a *app) cmdReadAll(ctx context.Context) error {
	a.notifications.Refresh(ctx)
	a.notifications.MarkAllAsRead(ctx)
	color.Green("all notifications marked read")
	return nil
}
