// Package where resolves where reelgate keeps its files.
package where

import (
	"os"
	"path/filepath"

	"github.com/reelgate/reelgate/constant"
	"github.com/reelgate/reelgate/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath is the environment variable identifier used to override the default configuration directory.
const EnvConfigPath = "REELGATE_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config is the config directory: REELGATE_CONFIG_PATH when set, otherwise
// reelgate under the user config dir (XDG_CONFIG_HOME on Linux).
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.App))
}

// Cache is the cache directory, falling back to ./cache when the user cache dir is unknown.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.App))
}

// Logs is the directory for log files.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// History resolves the absolute path to the local watch log.
func History() string {
	return filepath.Join(Config(), "history.json")
}

// Series resolves the absolute path to the cached series episode listings.
func Series() string {
	return filepath.Join(Cache(), "series.json")
}

// Temp is a scratch directory, emptied on start.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.App))
}
