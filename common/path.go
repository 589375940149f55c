package common

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var windowsEnvPattern = regexp.MustCompile(`%([A-Za-z0-9_]+)%`)

// expandLogDirPath resolves a leading ~, $VAR and %VAR% placeholders in the --log-dir value.
// Unknown %VAR% placeholders are left untouched.
func expandLogDirPath(path string) string {
	if path == "" {
		return ""
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}

	expanded := os.ExpandEnv(path)
	return windowsEnvPattern.ReplaceAllStringFunc(expanded, func(match string) string {
		if val, ok := os.LookupEnv(strings.Trim(match, "%")); ok && val != "" {
			return val
		}
		return match
	})
}
