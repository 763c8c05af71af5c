package env

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// String returns the trimmed value of key or def when it is unset or blank.
func String(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// Int parses key as a positive integer.
func Int(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s value %q: expected a positive integer", key, v)
	}
	return n, nil
}

// Duration accepts Go durations ("90s", "1h") and bare numbers, which are
// read in unit.
func Duration(key string, def, unit time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("invalid %s value %q: must not be negative", key, v)
		}
		return time.Duration(n * float64(unit)), nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s value %q: expected a duration", key, v)
	}
	return d, nil
}

func Bool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: expected a boolean", key, v)
	}
	return b, nil
}
