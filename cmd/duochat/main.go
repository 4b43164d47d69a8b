// ABOUTME: Entry point for the duochat server
// ABOUTME: Serves the HTTP API and the embedded browser client over one port

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/2389/duochat/internal/api"
	"github.com/2389/duochat/internal/assets"
	"github.com/2389/duochat/internal/config"
	"github.com/2389/duochat/internal/seed"
	"github.com/2389/duochat/internal/store"
)

// version can be overridden at build time via -ldflags.
var version = "dev"

const banner = `
     _                  _           _
  __| |_   _  ___   ___| |__   __ _| |_
 / _' | | | |/ _ \ / __| '_ \ / _' | __|
| (_| | |_| | (_) | (__| | | | (_| | |_
 \__,_|\__,_|\___/ \___|_| |_|\__,_|\__|
`

const sampleConfig = `# duochat configuration
server:
  http_addr: ":3000"      # also settable via ${PORT}

database:
  path: "duochat.db"

logging:
  level: "info"           # debug | info | warn | error
  format: "text"          # text | json

client:
  poll_interval: "2s"
  history_limit: 100
`

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: duochat <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve [-config FILE] [-seed FILE]  Start the server")
		fmt.Println("  init                               Write a sample duochat.yaml")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx, os.Args[2:])
	case "init":
		err = runInit()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// getConfigPath resolves the config file location.
// Priority: -config flag > DUOCHAT_CONFIG env var > ./duochat.yaml if present.
// An empty result means run on defaults.
func getConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envPath := os.Getenv("DUOCHAT_CONFIG"); envPath != "" {
		return envPath
	}
	if _, err := os.Stat("duochat.yaml"); err == nil {
		return "duochat.yaml"
	}
	return ""
}

func runServe(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("serve", flag.ExitOnError)
	configFlag := flags.String("config", "", "path to config file")
	seedFlag := flags.String("seed", "", "path to a TOML seed file applied to an empty database")
	if err := flags.Parse(args); err != nil {
		return err
	}

	var cfg *config.Config
	configPath := getConfigPath(*configFlag)
	if configPath == "" {
		cfg = config.Default()
	} else {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	green := color.New(color.FgGreen)

	cyan.Print(banner)
	gray.Printf("    version: %s\n\n", version)
	green.Print("    ▶ ")
	if configPath == "" {
		fmt.Println("Config:    (defaults)")
	} else {
		fmt.Printf("Config:    %s\n", configPath)
	}
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Database:  %s\n", cfg.Database.Path)
	fmt.Println()

	// A store that cannot open is the one fatal startup condition.
	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	if *seedFlag != "" {
		fixtures, err := seed.Load(*seedFlag)
		if err != nil {
			return fmt.Errorf("loading seed file: %w", err)
		}
		if err := seed.Apply(ctx, st, fixtures, logger); err != nil {
			return fmt.Errorf("applying seed file: %w", err)
		}
	}

	mux := http.NewServeMux()
	api.New(st, logger).RegisterRoutes(mux)
	mux.HandleFunc("/about", assets.AboutHandler(logger))
	mux.Handle("/config.js", assets.ConfigScript(cfg.Client.PollInterval, cfg.Client.HistoryLimit))
	mux.Handle("/", assets.Handler())

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           api.WithRequestLogging(mux, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.Server.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}
	return nil
}

func runInit() error {
	if _, err := os.Stat("duochat.yaml"); err == nil {
		return fmt.Errorf("duochat.yaml already exists")
	}
	if err := os.WriteFile("duochat.yaml", []byte(sampleConfig), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Println("Wrote duochat.yaml")
	return nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
