// ABOUTME: Entry point for the lehmate travel companion backend
// ABOUTME: Serves the HTTP API, runs a terminal chat, and manages config and launch state

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/2389/lehmate/internal/api"
	"github.com/2389/lehmate/internal/assistant"
	"github.com/2389/lehmate/internal/config"
	"github.com/2389/lehmate/internal/content"
	"github.com/2389/lehmate/internal/dedupe"
	"github.com/2389/lehmate/internal/settings"
	"github.com/2389/lehmate/internal/store"
)

// version is set by goreleaser at build time.
var version = "dev"

const banner = `
  _      _                     _
 | | ___| |__  _ __ ___   __ _| |_ ___
 | |/ _ \ '_ \| '_ ' _ \ / _' | __/ _ \
 | |  __/ | | | | | | | | (_| | ||  __/
 |_|\___|_| |_|_| |_| |_|\__,_|\__\___|
`

// getConfigPath returns the path to the lehmate config file.
// Priority: LEHMATE_CONFIG env var > XDG_CONFIG_HOME/lehmate/config.yaml > ~/.config/lehmate/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("LEHMATE_CONFIG"); envPath != "" {
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

	return filepath.Join(configDir, "lehmate", "config.yaml")
}

// getDataPath returns the path to the lehmate data directory.
// Priority: XDG_DATA_HOME/lehmate > ~/.local/share/lehmate
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "lehmate")
}

// loadConfig reads the config file, falling back to defaults when none exists.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path, getDataPath())
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(getDataPath()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func usage() {
	fmt.Println("Usage: lehmate <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve    Start the HTTP API")
	fmt.Println("  chat     Chat with the assistant in the terminal")
	fmt.Println("  init     Write a config file")
	fmt.Println("  launch   Run the first-launch check and print the result")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	// A .env file is optional.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: reading .env: %v\n", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "chat":
		err = runChat(ctx)
	case "init":
		err = runInit()
	case "launch":
		err = runLaunch(ctx)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Logging, os.Stdout)
	slog.SetDefault(logger)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Store:     %s", cfg.Store.Platform)
	if cfg.Store.Platform == string(store.PlatformNative) {
		yellow.Print(" [not persisted]")
	} else if cfg.Store.Platform == string(store.PlatformWeb) {
		gray.Printf(" (%s)", cfg.Store.Path)
	}
	fmt.Println()
	fmt.Println()

	storeOpts := cfg.StoreOptions()
	storeOpts.Logger = logger
	kv, err := store.Open(storeOpts)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer kv.Close()

	firstLaunch, err := store.IsFirstLaunch(ctx, kv)
	if err != nil {
		return err
	}

	broadcaster := assistant.NewBroadcaster(logger)
	engine := assistant.New(assistant.Options{
		ReplyDelay:  cfg.Assistant.ReplyDelay,
		Broadcaster: broadcaster,
		Logger:      logger,
	})
	cache := dedupe.New(cfg.Dedupe.TTL, cfg.Dedupe.MaxSize)
	defer cache.Close()

	srv := api.New(api.Deps{
		Engine:      engine,
		Broadcaster: broadcaster,
		Settings:    settings.New(kv, logger),
		Catalog:     content.Default(),
		Dedupe:      cache,
		Launch:      api.LaunchInfo{FirstLaunch: firstLaunch, Platform: storeOpts.Platform},
		Logger:      logger,
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting lehmate",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"platform", storeOpts.Platform,
		"first_launch", firstLaunch,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		engine.Close()
		broadcaster.Close()
		return fmt.Errorf("http server: %w", err)
	}

	logger.Info("shutting down")

	// Pending replies are dropped; websocket clients get a close frame.
	engine.Close()
	broadcaster.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func runLaunch(ctx context.Context) error {
	cfg, err := loadConfig(getConfigPath())
	if err != nil {
		return err
	}

	storeOpts := cfg.StoreOptions()
	storeOpts.Logger = setupLogger(cfg.Logging, os.Stderr)
	kv, err := store.Open(storeOpts)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer kv.Close()

	first, err := store.IsFirstLaunch(ctx, kv)
	if err != nil {
		return err
	}

	if first {
		color.Green("first launch (%s)", storeOpts.Platform)
	} else {
		color.HiBlack("not first launch (%s)", storeOpts.Platform)
	}
	return nil
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("lehmate configuration setup")
	fmt.Println("===========================")
	fmt.Println()

	defaultConfigPath := getConfigPath()
	cfg := config.Default(getDataPath())

	outputFile := prompt(reader, "Config file path", defaultConfigPath)

	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, "File exists. Overwrite?", "no")
		if !isYes(overwrite) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	fmt.Println("\n--- Server Configuration ---")
	cfg.Server.HTTPAddr = prompt(reader, "HTTP address", cfg.Server.HTTPAddr)

	fmt.Println("\n--- Store Configuration ---")
	cfg.Store.Platform = prompt(reader, "Platform (web/native/memory)", cfg.Store.Platform)
	if cfg.Store.Platform == string(store.PlatformWeb) {
		cfg.Store.Path = prompt(reader, "SQLite database path", cfg.Store.Path)
	}

	fmt.Println("\n--- Logging Configuration ---")
	cfg.Logging.Level = prompt(reader, "Log level (debug/info/warn/error)", cfg.Logging.Level)
	cfg.Logging.Format = prompt(reader, "Log format (text/json)", cfg.Logging.Format)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := config.Encode(cfg, config.FormatFor(outputFile))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	fmt.Println("\nTo start the server:")
	fmt.Printf("  lehmate serve\n")

	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}

func isYes(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "yes" || s == "y"
}

// chatLogLevel keeps routine logs out of the REPL unless debugging.
func chatLogLevel(cfg config.LoggingConfig) config.LoggingConfig {
	if cfg.Level != "debug" {
		cfg.Level = "warn"
	}
	return cfg
}
