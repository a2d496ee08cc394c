package config

import (
	"maps"
	"slices"
	"time"
)

// Config is a read-only view over a decoded map with typed, defaulting
// accessors. A missing key or a value of the wrong type yields the default.
type Config struct {
	data map[string]any
}

// New wraps data. A nil map behaves as empty.
func New(data map[string]any) Config {
	if data == nil {
		data = make(map[string]any)
	}
	return Config{data: data}
}

// String returns the string at key, or defaultVal.
func (c Config) String(key, defaultVal string) string {
	if s, ok := c.data[key].(string); ok {
		return s
	}
	return defaultVal
}

// Duration returns the duration at key, or defaultVal.
//
// Strings are parsed with time.ParseDuration ("2s", "500ms"). Bare numbers
// are milliseconds, matching how throttle windows are usually written.
func (c Config) Duration(key string, defaultVal time.Duration) time.Duration {
	switch val := c.data[key].(type) {
	case string:
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	case int:
		return time.Duration(val) * time.Millisecond
	case int64:
		return time.Duration(val) * time.Millisecond
	case float64:
		return time.Duration(val * float64(time.Millisecond))
	case time.Duration:
		return val
	}
	return defaultVal
}

// Bool returns the bool at key, or defaultVal.
func (c Config) Bool(key string, defaultVal bool) bool {
	if b, ok := c.data[key].(bool); ok {
		return b
	}
	return defaultVal
}

// Int returns the integer at key, or defaultVal. Floats are accepted only
// when they have no fractional part.
func (c Config) Int(key string, defaultVal int) int {
	switch val := c.data[key].(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		if val == float64(int(val)) {
			return int(val)
		}
	}
	return defaultVal
}

// Float returns the number at key as float64, or defaultVal.
func (c Config) Float(key string, defaultVal float64) float64 {
	switch val := c.data[key].(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	}
	return defaultVal
}

// Sub returns the nested map at key as a Config. It is empty when the key
// is missing or not a map.
func (c Config) Sub(key string) Config {
	if m, ok := c.data[key].(map[string]any); ok {
		return New(m)
	}
	return New(nil)
}

// Has reports whether key is present.
func (c Config) Has(key string) bool {
	_, ok := c.data[key]
	return ok
}

// Keys returns the top-level keys in sorted order.
func (c Config) Keys() []string {
	return slices.Sorted(maps.Keys(c.data))
}

// Merge returns a Config holding c's keys with over's keys on top. Neither
// input is modified.
func (c Config) Merge(over Config) Config {
	out := make(map[string]any, len(c.data)+len(over.data))
	maps.Copy(out, c.data)
	maps.Copy(out, over.data)
	return New(out)
}
