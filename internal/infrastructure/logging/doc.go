// Package logging provides structured logging for gadgetd.
//
// It wraps log/slog so every component logs with the same handler,
// level filtering and default fields (service, version).
//
// Configuration (config.yaml):
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("gadget retired", "gadget_id", id)
//
// Passwords, password hashes and bearer tokens are never logged.
package logging
