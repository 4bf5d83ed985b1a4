// Package config defines the settings shared by the loop guard binaries and
// provides helpers to load, validate and save them in YAML format, and to
// watch the file for changes so the guard can be reconfigured without a
// restart.
package config
