package config

import (
	"os"
	"path/filepath"
	"slices"
)

var defaultConfigNames = []string{"config.yaml", "config.yml", "config.json"}

// GetConfigPath resolves which config file to load. An explicit path is used only if it
// exists. Otherwise the first existing file among these wins: $DIFFCHECKER_CONFIG_PATH,
// then a default name in the working directory, then one next to the executable. "" means
// run with defaults.
func GetConfigPath(explicit string) string {
	if explicit != "" {
		if isRegularFile(explicit) {
			return explicit
		}
		return ""
	}

	for _, candidate := range configCandidates() {
		if isRegularFile(candidate) {
			return candidate
		}
	}
	return ""
}

func configCandidates() []string {
	var candidates []string
	if envPath := os.Getenv(ConfigPathEnv); envPath != "" {
		candidates = append(candidates, envPath)
	}

	var dirs []string
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd)
	}
	if exe, err := os.Executable(); err == nil {
		if exeDir := filepath.Dir(exe); !slices.Contains(dirs, exeDir) {
			dirs = append(dirs, exeDir)
		}
	}
	for _, dir := range dirs {
		for _, name := range defaultConfigNames {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}
	return candidates
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
