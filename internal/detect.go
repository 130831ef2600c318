package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const appDirName = "readgye"

// ConfigPaths holds the on-disk locations the client uses
type ConfigPaths struct {
	BaseDir  string // config.yaml, .env and the state database
	CacheDir string // offline archive cache
}

// DetectConfigPaths picks the per-user config and cache directories for the OS
func DetectConfigPaths() (ConfigPaths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return ConfigPaths{}, fmt.Errorf("failed to get home directory: %w", err)
	}

	var baseDir, cacheDir string
	switch runtime.GOOS {
	case "darwin":
		baseDir = filepath.Join(home, "Library/Application Support", appDirName)
		cacheDir = filepath.Join(home, "Library/Caches", appDirName)
	case "linux":
		baseDir = filepath.Join(xdgDir("XDG_CONFIG_HOME", filepath.Join(home, ".config")), appDirName)
		cacheDir = filepath.Join(xdgDir("XDG_CACHE_HOME", filepath.Join(home, ".cache")), appDirName)
	case "windows":
		appData := os.Getenv("AppData")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		baseDir = filepath.Join(appData, appDirName)
		cacheDir = filepath.Join(baseDir, "cache")
	default:
		return ConfigPaths{}, fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}

	return ConfigPaths{BaseDir: baseDir, CacheDir: cacheDir}, nil
}

// ConfigPathsAt roots everything under dir (--config-dir)
func ConfigPathsAt(dir string) ConfigPaths {
	return ConfigPaths{BaseDir: dir, CacheDir: filepath.Join(dir, "cache")}
}

// xdgDir returns $env when it holds an absolute path, otherwise fallback
func xdgDir(env, fallback string) string {
	if v := os.Getenv(env); v != "" && filepath.IsAbs(v) {
		return v
	}
	return fallback
}

// DBPath returns the local state database path
func (p ConfigPaths) DBPath() string {
	return filepath.Join(p.BaseDir, "state.db")
}

// ConfigFile returns the YAML config file path
func (p ConfigPaths) ConfigFile() string {
	return filepath.Join(p.BaseDir, "config.yaml")
}

// EnvFile returns the .env file stored beside the config
func (p ConfigPaths) EnvFile() string {
	return filepath.Join(p.BaseDir, ".env")
}

// DBExists checks if the state database has been created
func (p ConfigPaths) DBExists() bool {
	_, err := os.Stat(p.DBPath())
	return err == nil
}

// Ensure creates both directories
func (p ConfigPaths) Ensure() error {
	for _, dir := range []string{p.BaseDir, p.CacheDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &StorageError{Path: dir, Op: "mkdir", Err: err}
		}
	}
	return nil
}
