//go:build !linux && !windows

package storage

import (
	"os"
	"path/filepath"
)

func platformConfigDefault() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, AppName)
	}
	return filepath.Join(os.Getenv("HOME"), ".config", AppName)
}

func platformCacheDefault() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, AppName)
	}
	return filepath.Join(os.Getenv("HOME"), ".cache", AppName)
}
