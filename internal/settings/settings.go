// ABOUTME: Profile toggles (dark mode, notifications, auto-update) persisted through the KV store
// ABOUTME: Absent keys fall back to defaults so a non-persisting platform always shows defaults

package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/2389/lehmate/internal/store"
)

// ErrUnknownSetting is returned for a toggle name that does not exist
var ErrUnknownSetting = errors.New("unknown setting")

// Name identifies a toggle.
type Name string

// Known toggles.
const (
	DarkMode      Name = "darkMode"
	Notifications Name = "notifications"
	AutoUpdate    Name = "autoUpdate"
)

// keyPrefix namespaces settings within the flat KV store.
const keyPrefix = "settings."

var defaults = map[Name]bool{
	DarkMode:      false,
	Notifications: true,
	AutoUpdate:    true,
}

// Settings is the full set of toggles.
type Settings struct {
	DarkMode      bool `json:"dark_mode"`
	Notifications bool `json:"notifications"`
	AutoUpdate    bool `json:"auto_update"`
}

// Defaults returns the values used when nothing is stored.
func Defaults() Settings {
	return Settings{
		DarkMode:      defaults[DarkMode],
		Notifications: defaults[Notifications],
		AutoUpdate:    defaults[AutoUpdate],
	}
}

// ParseName validates a toggle name.
func ParseName(s string) (Name, error) {
	n := Name(s)
	if _, ok := defaults[n]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSetting, s)
	}
	return n, nil
}

// Key returns the store key for a toggle.
func Key(n Name) string {
	return keyPrefix + string(n)
}

// Service reads and writes toggles.
type Service struct {
	kv     store.KV
	logger *slog.Logger
}

// New creates a Service on top of kv.
func New(kv store.KV, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		kv:     kv,
		logger: logger.With("component", "settings"),
	}
}

// Load returns every toggle, using defaults for anything not stored.
func (s *Service) Load(ctx context.Context) (Settings, error) {
	dark, err := s.get(ctx, DarkMode)
	if err != nil {
		return Settings{}, err
	}
	notify, err := s.get(ctx, Notifications)
	if err != nil {
		return Settings{}, err
	}
	update, err := s.get(ctx, AutoUpdate)
	if err != nil {
		return Settings{}, err
	}
	return Settings{DarkMode: dark, Notifications: notify, AutoUpdate: update}, nil
}

// Get returns a single toggle.
func (s *Service) Get(ctx context.Context, n Name) (bool, error) {
	if _, err := ParseName(string(n)); err != nil {
		return false, err
	}
	return s.get(ctx, n)
}

func (s *Service) get(ctx context.Context, n Name) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, Key(n))
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", n, err)
	}
	if !ok {
		return defaults[n], nil
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		s.logger.Warn("ignoring malformed setting", "setting", n, "value", raw)
		return defaults[n], nil
	}
	return v, nil
}

// Set stores a toggle.
func (s *Service) Set(ctx context.Context, n Name, enabled bool) error {
	if _, err := ParseName(string(n)); err != nil {
		return err
	}
	if err := s.kv.Set(ctx, Key(n), strconv.FormatBool(enabled)); err != nil {
		return fmt.Errorf("writing %s: %w", n, err)
	}
	s.logger.Debug("setting updated", "setting", n, "enabled", enabled)
	return nil
}

// Reset removes a stored toggle so its default applies again.
func (s *Service) Reset(ctx context.Context, n Name) error {
	if _, err := ParseName(string(n)); err != nil {
		return err
	}
	if err := s.kv.Remove(ctx, Key(n)); err != nil {
		return fmt.Errorf("resetting %s: %w", n, err)
	}
	return nil
}
