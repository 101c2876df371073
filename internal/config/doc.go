// Package config loads the screener's YAML configuration.
//
// ${VAR} references are expanded from the environment before parsing, so
// secrets such as database passwords and API keys stay out of the file.
package config
