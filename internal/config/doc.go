// Package config loads duochat configuration from YAML files.
//
// Environment variables referenced as ${VAR_NAME} are expanded over the
// raw file contents before parsing, and duration fields accept Go
// duration strings ("2s", "1m30s"). When no config file is present the
// server runs on Default(), which honors the PORT environment variable
// for the listen address.
package config
