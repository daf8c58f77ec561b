// Package store provides the flat key-value persistence used by lehmate.
//
// # Interface
//
// KV is the whole contract:
//
//	Get(ctx, key) (value string, ok bool, err error)
//	Set(ctx, key, value) error
//	Remove(ctx, key) error
//
// A missing key is an ordinary result (ok=false, err=nil). Removing a
// missing key succeeds. Concurrent Sets to the same key are last-write-wins
// by completion order.
//
// # Backends
//
// Open picks a backend from the deployment Platform:
//
//   - PlatformWeb: SQLiteStore, durable across restarts. The pure Go driver
//     (modernc.org/sqlite) is the default; "sqlite3" selects the cgo driver
//     (github.com/mattn/go-sqlite3).
//   - PlatformNative: StubStore. Reads always report absence and writes are
//     dropped, so callers must behave under permanent absence.
//   - PlatformMemory: MemoryStore, for tests and throwaway runs.
//
// # Launch Detection
//
// IsFirstLaunch checks the reserved key "hasLaunched". If absent it writes
// "true" and reports a first launch; otherwise it reports a repeat launch.
// On the stub platform every launch is a first launch.
//
// # Usage
//
//	kv, err := store.Open(store.Options{
//	    Platform: store.PlatformWeb,
//	    Path:     "/var/lib/lehmate/lehmate.db",
//	})
//	if err != nil {
//	    return err
//	}
//	defer kv.Close()
//
//	first, err := store.IsFirstLaunch(ctx, kv)
package store
