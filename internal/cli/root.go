// Package cli defines the cobra commands of the kashar binary.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"Kashar/internal/api"
	"Kashar/internal/auth"
	"Kashar/internal/config"
	"Kashar/internal/telemetry"

	"github.com/spf13/cobra"
)

var version = "dev" // set via ldflags at build time

// flags shared by every command
type rootFlags struct {
	configPath   string
	baseURL      string
	voiceVariant string
	debug        bool
}

// app is the wiring shared by the subcommands
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	api     *api.Client
	auth    *auth.Service
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// tokens returns the bearer token source: KASHAR_TOKEN when set, else the stored login
func (a *app) tokens() auth.TokenSource {
	if a.cfg.Token != "" {
		return auth.StaticToken(a.cfg.Token)
	}
	return a.auth.Store()
}

// loadConfig reads config and applies the flags the user actually set
func loadConfig(cmd *cobra.Command, f *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = f.baseURL
	}
	if flags.Changed("voice-variant") {
		cfg.VoiceVariant = f.voiceVariant
	}
	if flags.Changed("debug") {
		cfg.Debug = f.debug
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	logger, logFile, err := telemetry.InitLogger(cfg.LogDir, cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	a.closers = append(a.closers, func() { logFile.Close() })

	providers, err := telemetry.Init(ctx, telemetry.Options{LogDir: cfg.LogDir, Version: version})
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	a.closers = append(a.closers, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(ctx); err != nil {
			logger.Error("failed to flush telemetry", "error", err)
		}
	})

	if cfg.Debug {
		logger.Info("Debug mode enabled")
	}

	a.api, err = api.NewClient(api.Options{
		BaseURL:        cfg.BaseURL,
		RequestTimeout: cfg.RequestTimeout,
		UploadTimeout:  cfg.UploadTimeout,
		Logger:         logger,
		Tracer:         providers.Tracer,
		Meter:          providers.Meter,
	})
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}
	a.auth = auth.NewService(a.api, auth.NewTokenStore(cfg.TokenFile), logger)
	return a, nil
}

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	f := &rootFlags{}
	var a *app

	root := &cobra.Command{
		Use:   "kashar",
		Short: "Terminal client for the Kashar AI tutor",
		Long: `Kashar talks to the Kashar tutoring backend: sign in, chat with the
tutor by text, send recorded voice questions or join a live voice channel.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			a, err = newApp(cmd.Context(), cfg)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a != nil {
				a.close()
			}
		},
	}

	root.PersistentFlags().StringVar(&f.configPath, "config", "", "Config file (default ~/.kashar/config.yaml)")
	root.PersistentFlags().StringVar(&f.baseURL, "base-url", "", "Backend API base URL")
	root.PersistentFlags().StringVar(&f.voiceVariant, "voice-variant", "", "Voice flow (tutor|realtime)")
	root.PersistentFlags().BoolVar(&f.debug, "debug", false, "Enable debug logging")

	current := func() *app { return a }
	root.AddCommand(
		newLoginCommand(current),
		newSignupCommand(current),
		newLogoutCommand(current),
		newWhoamiCommand(current),
		newChatCommand(current),
		newHistoryCommand(current),
		newVoiceSessionsCommand(current),
	)
	return root
}

// Execute runs the root command. Called from main.
func Execute(ctx context.Context) {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
