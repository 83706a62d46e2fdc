// Package envutil reads typed settings from the environment. Unset, blank or
// unparsable values yield the supplied default.
package envutil

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func lookup[T any](name string, def T, parse func(string) (T, bool)) T {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def
	}
	if v, ok := parse(raw); ok {
		return v
	}
	return def
}

func String(name, def string) string {
	return lookup(name, def, func(s string) (string, bool) { return s, true })
}

func Int(name string, def int) int {
	return lookup(name, def, func(s string) (int, bool) {
		n, err := strconv.Atoi(s)
		return n, err == nil
	})
}

func Float(name string, def float64) float64 {
	return lookup(name, def, func(s string) (float64, bool) {
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	})
}

func Bool(name string, def bool) bool {
	return lookup(name, def, func(s string) (bool, bool) {
		switch strings.ToLower(s) {
		case "1", "t", "true", "y", "yes", "on":
			return true, true
		case "0", "f", "false", "n", "no", "off":
			return false, true
		}
		return false, false
	})
}

// Duration accepts Go duration strings ("750ms") or whole seconds ("30").
func Duration(name string, def time.Duration) time.Duration {
	return lookup(name, def, func(s string) (time.Duration, bool) {
		if d, err := time.ParseDuration(s); err == nil {
			return d, true
		}
		n, err := strconv.Atoi(s)
		return time.Duration(n) * time.Second, err == nil
	})
}

// List splits a comma separated value, dropping blank entries. A value with
// no entries yields def.
func List(name string, def []string) []string {
	return lookup(name, def, func(s string) ([]string, bool) {
		var out []string
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out, len(out) > 0
	})
}
