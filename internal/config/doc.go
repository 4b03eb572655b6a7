// Package config defines the bootstrap settings and helpers to load, validate
// and save them as YAML or TOML.
//
// The codec is picked from the file extension: ".toml" selects TOML, anything
// else is read as YAML.
package config
