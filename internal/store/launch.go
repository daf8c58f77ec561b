// ABOUTME: First-launch detection built on the KV store
// ABOUTME: Marks the reserved hasLaunched key the first time it is found absent

package store

import (
	"context"
	"fmt"
)

// Reserved launch key and the value written to it.
const (
	LaunchKey      = "hasLaunched"
	LaunchSentinel = "true"
)

// IsFirstLaunch reports whether this is the first run recorded in kv. When
// the launch key is absent it is set and true is returned; otherwise false.
//
// The check is not idempotent: on a fresh store the first call reports true
// and every later call reports false. On a store that cannot persist (the
// StubStore) every call reports true.
func IsFirstLaunch(ctx context.Context, kv KV) (bool, error) {
	value, ok, err := kv.Get(ctx, LaunchKey)
	if err != nil {
		return false, fmt.Errorf("checking launch state: %w", err)
	}
	// an empty value counts as never launched
	if ok && value != "" {
		return false, nil
	}

	if err := kv.Set(ctx, LaunchKey, LaunchSentinel); err != nil {
		return false, fmt.Errorf("recording launch: %w", err)
	}
	return true, nil
}
