// Package config handles configuration loading for lehmate.
//
// # Overview
//
// Configuration is read from a YAML or TOML file (chosen by extension) with
// environment variable expansion. Anything the file leaves out keeps the
// value from Default, so an empty file is a valid configuration.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from LEHMATE_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/lehmate/config.yaml
//  3. ~/.config/lehmate/config.yaml
//
// A .env file in the working directory is loaded first, so ${VAR}
// references may come from it.
//
// # Configuration Sections
//
//	server:
//	  http_addr: "127.0.0.1:8080"
//	  shutdown_timeout: "10s"
//
//	store:
//	  platform: "web"        # web, native, memory
//	  path: "${LEHMATE_DB}"  # required for web
//	  driver: "sqlite"       # sqlite (pure Go) or sqlite3 (cgo)
//
//	assistant:
//	  reply_delay: "1s"
//
//	dedupe:
//	  ttl: "5m"
//	  max_size: 10000
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// The same keys are used in TOML, one table per section.
//
// # Usage
//
//	cfg, err := config.Load("/etc/lehmate/config.toml", dataDir)
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
