// Package replay drives a Tracker through a recorded sequence of viewport,
// click and timer steps against a simulated window.
package replay

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidTrace is wrapped by every validation failure from ParseTrace.
var ErrInvalidTrace = errors.New("invalid trace")

// Size is a window size in CSS pixels.
type Size struct {
	Width  int `yaml:"width" validate:"gte=1"`
	Height int `yaml:"height" validate:"gte=1"`
}

// List places the widget list on the page.
type List struct {
	Top    float64 `yaml:"top"`
	Height float64 `yaml:"height" validate:"gte=0"`
}

// Step is one action. Exactly one field is set.
type Step struct {
	Scroll     *float64      `yaml:"scroll,omitempty"`
	Resize     *Size         `yaml:"resize,omitempty" validate:"omitempty"`
	Click      string        `yaml:"click,omitempty"`
	Advance    time.Duration `yaml:"advance,omitempty" validate:"gte=0"`
	List       *List         `yaml:"list,omitempty" validate:"omitempty"`
	RemoveList bool          `yaml:"remove_list,omitempty"`
	Notify     bool          `yaml:"notify,omitempty"`
}

// Action returns the name of the step's action, or "" when none is set.
// It returns "ambiguous" when more than one is set.
func (s Step) Action() string {
	var set []string
	if s.Scroll != nil {
		set = append(set, "scroll")
	}
	if s.Resize != nil {
		set = append(set, "resize")
	}
	if s.Click != "" {
		set = append(set, "click")
	}
	if s.Advance > 0 {
		set = append(set, "advance")
	}
	if s.List != nil {
		set = append(set, "list")
	}
	if s.RemoveList {
		set = append(set, "remove_list")
	}
	if s.Notify {
		set = append(set, "notify")
	}
	switch len(set) {
	case 0:
		return ""
	case 1:
		return set[0]
	default:
		return "ambiguous"
	}
}

// Trace is a replayable session.
type Trace struct {
	Viewport Size   `yaml:"viewport" validate:"required"`
	List     *List  `yaml:"list" validate:"omitempty"`
	Steps    []Step `yaml:"steps" validate:"dive"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// LoadTrace reads and validates a trace file.
func LoadTrace(path string) (*Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	return ParseTrace(data)
}

// ParseTrace decodes and validates a YAML trace.
func ParseTrace(data []byte) (*Trace, error) {
	var tr Trace
	if err := yaml.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("parse trace: %w", err)
	}
	if err := tr.Validate(); err != nil {
		return nil, err
	}
	return &tr, nil
}

// Validate checks field constraints and that every step has one action.
func (tr *Trace) Validate() error {
	if err := getValidator().Struct(tr); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, len(fieldErrs))
			for i, fe := range fieldErrs {
				msgs[i] = fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("%w: %s", ErrInvalidTrace, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidTrace, err)
	}
	for i, s := range tr.Steps {
		switch s.Action() {
		case "":
			return fmt.Errorf("%w: step %d has no action", ErrInvalidTrace, i)
		case "ambiguous":
			return fmt.Errorf("%w: step %d has more than one action", ErrInvalidTrace, i)
		}
	}
	return nil
}
