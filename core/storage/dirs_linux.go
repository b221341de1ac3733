//go:build linux

package storage

import (
	"os"
	"path/filepath"
)

func platformConfigDefault() string {
	return filepath.Join(os.Getenv("HOME"), ".config", AppName)
}

func platformCacheDefault() string {
	return filepath.Join(os.Getenv("HOME"), ".cache", AppName)
}
