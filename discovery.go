// FILE: lixenwraith/fragment/discovery.go
package fragment

import (
	"os"
	"path/filepath"
)

// discoveryExtensions are tried in order for each search directory
var discoveryExtensions = []string{".toml", ".yaml", ".yml", ".json"}

// discoverFile searches the current directory, then XDG config directories,
// for <app> with a known extension. Returns "" when nothing is found.
func discoverFile(app string) string {
	var searchPaths []string

	if cwd, err := os.Getwd(); err == nil {
		searchPaths = append(searchPaths, cwd)
	}
	searchPaths = append(searchPaths, configDirs(app)...)

	for _, dir := range searchPaths {
		for _, ext := range discoveryExtensions {
			path := filepath.Join(dir, app+ext)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}

	// No file found is not an error - the command can run from flags and env
	return ""
}

// configDirs lists the user, then the system XDG config directories for app
func configDirs(app string) []string {
	user := os.Getenv("XDG_CONFIG_HOME")
	if user == "" {
		if home := os.Getenv("HOME"); home != "" {
			user = filepath.Join(home, ".config")
		}
	}

	system := filepath.SplitList(os.Getenv("XDG_CONFIG_DIRS"))
	if len(system) == 0 {
		system = []string{"/etc/xdg"}
	}

	var dirs []string
	for _, base := range append([]string{user}, system...) {
		if base != "" {
			dirs = append(dirs, filepath.Join(base, app))
		}
	}
	return dirs
}
