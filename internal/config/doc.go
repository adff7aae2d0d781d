// Package config loads and validates server configuration from a YAML file
// and MEDIALIB_* environment variables. Configuration is read once at startup
// and immutable afterward.
package config
