// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sharedconfig

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"unicode"
)

const (
	// DefaultConfigFilename is the default configuration file name.
	DefaultConfigFilename = "presswww.conf"

	// DefaultDataDirname is the default data directory name. The data
	// directory is located in the application home directory.
	DefaultDataDirname = "data"
)

var (
	// DefaultHomeDir points to presswww's default home directory.
	DefaultHomeDir = appDataDir("presswww")

	// DefaultConfigFile points to presswww's default config file
	// path.
	DefaultConfigFile = filepath.Join(DefaultHomeDir, DefaultConfigFilename)

	// DefaultDataDir points to presswww's default data directory
	// path.
	DefaultDataDir = filepath.Join(DefaultHomeDir, DefaultDataDirname)
)

// appDataDir returns an operating system specific directory to be used for
// storing application data for the given application name.  On Unix like
// systems the name is lowercased and prepended with a period, on Windows and
// macOS the name is title cased and placed under the conventional application
// data roots.
func appDataDir(appName string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		// Fall back to the current directory if the home directory
		// cannot be determined.
		return "."
	}

	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("LOCALAPPDATA")
		if appData == "" {
			appData = os.Getenv("APPDATA")
		}
		if appData != "" {
			return filepath.Join(appData, title(appName))
		}
	case "darwin":
		return filepath.Join(home, "Library", "Application Support",
			title(appName))
	}

	return filepath.Join(home, "."+strings.ToLower(appName))
}

func title(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
