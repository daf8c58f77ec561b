// ABOUTME: Key-value Store interface and platform selection for lehmate persistence
// ABOUTME: Maps a platform signal to a durable SQLite store, a memory store, or a no-op stub

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrUnknownPlatform is returned when a platform name is not recognised
var ErrUnknownPlatform = errors.New("unknown platform")

// ErrUnknownDriver is returned when a SQLite driver name is not recognised
var ErrUnknownDriver = errors.New("unknown sqlite driver")

// KV is a flat namespace of string keys mapped to string values.
//
// A missing key is not an error: Get reports ok=false with a nil error.
// Set overwrites any prior value in a single atomic write. Removing a key
// that is not present is a no-op.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Backend is a KV that holds resources until closed.
type Backend interface {
	KV
	Close() error
}

// Platform is the deployment target, which decides how values are kept.
type Platform string

const (
	// PlatformWeb persists values durably in SQLite.
	PlatformWeb Platform = "web"
	// PlatformNative has no persistence: reads report absence and writes are dropped.
	PlatformNative Platform = "native"
	// PlatformMemory keeps values in process memory for the life of the store.
	PlatformMemory Platform = "memory"
)

// ParsePlatform converts a configuration string into a Platform.
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.ToLower(strings.TrimSpace(s))); p {
	case PlatformWeb, PlatformNative, PlatformMemory:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, s)
	}
}

// Options selects and configures a backend.
type Options struct {
	Platform Platform
	Path     string // SQLite database file, PlatformWeb only
	Driver   string // DriverModernc (default) or DriverCGO, PlatformWeb only
	Logger   *slog.Logger
}

// Open returns the backend for opts.Platform.
func Open(opts Options) (Backend, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch opts.Platform {
	case PlatformWeb:
		if opts.Path == "" {
			return nil, fmt.Errorf("store path is required for platform %q", opts.Platform)
		}
		return NewSQLiteStoreWithDriver(opts.Path, opts.Driver, logger)
	case PlatformNative:
		logger.Warn("platform cannot persist; launch state and settings will not survive restarts",
			"platform", opts.Platform)
		return NewStubStore(), nil
	case PlatformMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, opts.Platform)
	}
}
