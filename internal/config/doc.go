// Package config loads, normalizes, and validates bideorai configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks for object
// storage credentials, optionally sourced from a dotenv file. The Config type
// centralizes the external tool locations, media targets, and publish settings
// the packaging pipeline needs.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
