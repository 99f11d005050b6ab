// Package config loads, normalizes, and validates platebundle configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PLATEBUNDLE_WORK_DIR and the AWS credential variables. Always obtain
// settings through this package so downstream code receives absolute paths
// and clear validation errors.
package config
