// Package config loads, normalizes, and validates stagehand configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENAI_API_KEY and CW_STT_FORCE_MOCK. The Config type centralizes every
// knob the CLI needs: where the pipeline writes its artifacts, how the
// external conversation runner is invoked, and how results are presented.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
