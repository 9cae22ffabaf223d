// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

package config

import (
	"os"
	"path/filepath"
)

const appName = "expohub"

// Dir returns the XDG config directory for expohub.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func Dir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, appName)
}

// DefaultFile returns Dir()/config.yaml when that file exists, or "".
func DefaultFile() string {
	path := filepath.Join(Dir(), "config.yaml")
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path
	}
	return ""
}
