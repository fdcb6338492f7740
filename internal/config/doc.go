// Package config loads, normalizes, and validates preparser configuration
// data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours a couple of environment
// fallbacks (e.g. PREPARSER_FETCHMETA_NET_TOKEN). The Config type centralizes
// every knob the daemon and CLI need: which domain executors to run, their
// thread widths, timeouts, the audit-journal path, and logging output.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
