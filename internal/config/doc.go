// Package config defines the installer settings and helpers to load,
// validate and save them in YAML format.
//
// Every field has a default matching a stock Raspberry Pi OS image, so the
// installer runs without any settings file at all.
package config
