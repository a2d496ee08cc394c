package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ErrUnknownTuningKey is returned when a tuning file sets a key no option
// reads.
var ErrUnknownTuningKey = errors.New("unknown tuning key")

// tuningKeys are the keys a tuning block may set.
var tuningKeys = []string{
	KeyDispatchInterval,
	KeyReobservePolicy,
	KeyResizeInterval,
	KeyTallListRatio,
}

// LoadTuning reads a tuning override file (.yaml, .yml or .json).
//
// The file holds the tuning keys at the top level, or under a "tuning"
// section so a widget file can lend its block to another widget.
func LoadTuning(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read tuning file: %w", err)
	}
	return ParseTuning(data, filepath.Ext(path))
}

// ParseTuning decodes a tuning block in the format named by ext and
// rejects keys that would be silently ignored.
func ParseTuning(data []byte, ext string) (Config, error) {
	var m map[string]any
	switch ext = strings.ToLower(ext); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return Config{}, fmt.Errorf("parse tuning yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &m); err != nil {
			return Config{}, fmt.Errorf("parse tuning json: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported tuning file extension: %q", ext)
	}

	tuning := New(m)
	if tuning.Has("tuning") {
		tuning = tuning.Sub("tuning")
	}

	var unknown []string
	for _, k := range tuning.Keys() {
		if !slices.Contains(tuningKeys, k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		return Config{}, fmt.Errorf("%w: %s", ErrUnknownTuningKey, strings.Join(unknown, ", "))
	}
	return tuning, nil
}
