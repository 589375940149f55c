package env

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Bool reads a boolean environment variable, returning defaultValue when unset or unparsable.
func Bool(env string, defaultValue bool) bool {
	if env == "" || os.Getenv(env) == "" {
		return defaultValue
	}
	return strings.EqualFold(strings.TrimSpace(os.Getenv(env)), "true")
}

// Int reads an integer environment variable, returning defaultValue when unset or unparsable.
func Int(env string, defaultValue int) int {
	if env == "" || os.Getenv(env) == "" {
		return defaultValue
	}
	num, err := strconv.Atoi(strings.TrimSpace(os.Getenv(env)))
	if err != nil {
		return defaultValue
	}
	return num
}

// Float64 reads a float environment variable, returning defaultValue when unset or unparsable.
func Float64(env string, defaultValue float64) float64 {
	if env == "" || os.Getenv(env) == "" {
		return defaultValue
	}
	num, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(env)), 64)
	if err != nil {
		return defaultValue
	}
	return num
}

// String reads a string environment variable, returning defaultValue when unset.
func String(env string, defaultValue string) string {
	if env == "" || os.Getenv(env) == "" {
		return defaultValue
	}
	return os.Getenv(env)
}

// Duration reads a Go duration ("5s", "1m30s"). A bare integer is treated as seconds.
func Duration(env string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(String(env, ""))
	if raw == "" {
		return defaultValue
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return d
}

// StringSlice splits a comma separated variable, trimming blanks and empty items.
func StringSlice(env string, defaultValue []string) []string {
	raw := strings.TrimSpace(String(env, ""))
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
