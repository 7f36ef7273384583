package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/couchplay/couchplay/internal/config"
	"github.com/couchplay/couchplay/internal/game"
	"github.com/couchplay/couchplay/pkg/server"
)

func serveCmd() *cobra.Command {
	var (
		configDir   string
		port        int
		host        string
		tlsCert     string
		tlsPassword string
		staticDir   string
		logLevel    string
		logFile     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the game server",
		Long: `Start the game server and lobby loop.

Configuration is read from couchplay.json in the config directory
when present; flags override the file. Without a config file the
built-in defaults apply.

Examples:
  couchplay serve
  couchplay serve --port=9000 --static=./controller
  couchplay serve --tls-cert=identity.pfx --tls-password=secret`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configDir)
			if err != nil {
				return err
			}

			if port > 0 {
				cfg.Port = port
			}
			if host != "" {
				cfg.Host = host
			}
			if tlsCert != "" {
				cfg.TLS.CertFile = tlsCert
			}
			if tlsPassword != "" {
				cfg.TLS.Password = tlsPassword
			}
			if staticDir != "" {
				cfg.Static = staticDir
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			if logFile != "" {
				cfg.Log.File = logFile
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			return runServe(cfg)
		},
	}

	cmd.Flags().StringVarP(&configDir, "config", "c", ".", "Directory containing couchplay.json")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from couchplay.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default all interfaces)")
	cmd.Flags().StringVar(&tlsCert, "tls-cert", "", "PKCS#12 identity file for public connections")
	cmd.Flags().StringVar(&tlsPassword, "tls-password", "", "Password for the identity file")
	cmd.Flags().StringVar(&staticDir, "static", "", "Directory serving the controller page")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Rotating log file (default stderr)")

	return cmd
}

// loadConfig reads couchplay.json from dir, falling back to defaults when the
// file does not exist. Any other load failure is fatal.
func loadConfig(dir string) (*config.Config, error) {
	cfg, err := config.Load(dir)
	if errors.Is(err, config.ErrNotFound) {
		return config.New(), nil
	}
	return cfg, err
}

func runServe(cfg *config.Config) error {
	logger := newLogger(cfg.Log)
	for _, warning := range cfg.Warnings() {
		logger.Warn(warning)
	}

	srv := server.New(&server.Config{
		Addr:         cfg.Address(),
		TLSCertFile:  cfg.TLS.CertFile,
		TLSPassword:  cfg.TLS.Password,
		StaticDir:    cfg.Static,
		HoldInterval: cfg.HoldInterval(),
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go game.NewLobby(srv.Sessions(), logger).Run(ctx, cfg.Game.TickRate)

	logger.Info("starting", "name", cfg.Name, "addr", cfg.Address(), "version", version)
	return srv.Run()
}

// newLogger builds the process logger: text to stderr, or to a rotating file
// when one is configured.
func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stderr
	if cfg.File != "" {
		out = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			Compress:   true,
		}
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
}
