package common

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// AppName names the per-user configuration directory
const AppName = "doccrawl"

// configFileNames are looked up, in order, in each candidate directory
var configFileNames = []string{"doccrawl.toml", "doccrawl.yaml", "doccrawl.yml"}

// ConfigDir returns the per-user configuration directory ($XDG_CONFIG_HOME/doccrawl)
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DiscoverConfigFile returns the first config file found in the working
// directory or the per-user config directory, or "" when there is none
func DiscoverConfigFile() string {
	for _, dir := range []string{".", ConfigDir()} {
		for _, name := range configFileNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}
