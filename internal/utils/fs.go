package utils

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// AssetRoot is searched after the working directory's assets folder.
var AssetRoot string

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		Warn("Cannot expand %s: %v", path, err)
		return path
	}
	return expanded
}

// ResolveAssetPath finds relPath as given, under ./assets, then under
// AssetRoot. It falls back to the expanded path even if it does not exist.
func ResolveAssetPath(relPath string) string {
	if relPath == "" {
		return ""
	}
	path := ExpandPath(relPath)
	if filepath.IsAbs(path) {
		return path
	}

	candidates := []string{path, filepath.Join("assets", path)}
	if AssetRoot != "" {
		candidates = append(candidates, filepath.Join(ExpandPath(AssetRoot), path))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return path
}

// ConfigDir is where presets are looked up when no path is given.
func ConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "trailbloom")
	}
	return ExpandPath("~/.config/trailbloom")
}
