// Package config handles loading and validating gadgetd configuration.
//
// This package manages:
//   - Loading configuration from YAML files (a missing file means defaults)
//   - Overriding with GADGETD_* environment variables
//   - Validation of required fields, collecting every problem at once
//
// Security Considerations:
//   - The JWT signing secret should be set via GADGETD_JWT_SECRET
//   - The fallback DevJWTSecret is only applied when dev_mode is true
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
//	tokens := auth.NewTokenService(cfg.Security.JWT.Secret, cfg.TokenTTL())
package config
