package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/layout"
)

// Tuning keys.
const (
	KeyDispatchInterval = "dispatch_interval"
	KeyResizeInterval   = "resize_interval"
	KeyTallListRatio    = "tall_list_ratio"
	KeyReobservePolicy  = "reobserve_policy"
)

// ErrInvalidWidget is wrapped by every validation failure from ParseWidget.
var ErrInvalidWidget = errors.New("invalid widget file")

// Breakpoint is one layout as written in a widget file.
type Breakpoint struct {
	Width   int     `yaml:"width" validate:"gte=0"`
	Rows    int     `yaml:"rows_count" validate:"gte=1"`
	Columns int     `yaml:"columns_count" validate:"gte=1"`
	Indents float64 `yaml:"rows_indents" validate:"gte=0"`
}

// WidgetFile is the decoded form of a widget definition.
type WidgetFile struct {
	WidgetID    string         `yaml:"widget_id" validate:"required"`
	Items       []string       `yaml:"items" validate:"required,min=1,dive,required"`
	Breakpoints []Breakpoint   `yaml:"breakpoints" validate:"omitempty,dive"`
	RowsCount   int            `yaml:"rows_count" validate:"gte=0"`
	Columns     int            `yaml:"columns_count" validate:"gte=0"`
	RowsIndents float64        `yaml:"rows_indents" validate:"gte=0"`
	RawTuning   map[string]any `yaml:"tuning"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their yaml names.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// LoadWidget reads and validates a widget file.
func LoadWidget(path string) (*WidgetFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read widget file: %w", err)
	}
	return ParseWidget(data)
}

// ParseWidget decodes and validates a YAML widget definition.
func ParseWidget(data []byte) (*WidgetFile, error) {
	var wf WidgetFile
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("parse widget: %w", err)
	}
	if err := wf.Validate(); err != nil {
		return nil, err
	}
	return &wf, nil
}

// Validate checks field constraints and that exactly one of breakpoints or
// the single grid is given.
func (wf *WidgetFile) Validate() error {
	if err := getValidator().Struct(wf); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, len(fieldErrs))
			for i, fe := range fieldErrs {
				msgs[i] = fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("%w: %s", ErrInvalidWidget, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidWidget, err)
	}

	multi := len(wf.Breakpoints) > 0
	single := wf.RowsCount > 0
	switch {
	case multi && single:
		return fmt.Errorf("%w: breakpoints and rows_count are mutually exclusive", ErrInvalidWidget)
	case !multi && !single:
		return fmt.Errorf("%w: one of breakpoints or rows_count is required", ErrInvalidWidget)
	case single && wf.Columns < 1:
		return fmt.Errorf("%w: columns_count must be at least 1", ErrInvalidWidget)
	}
	return nil
}

// Layouts returns the breakpoints as layouts, in file order.
func (wf *WidgetFile) Layouts() []layout.Layout {
	out := make([]layout.Layout, len(wf.Breakpoints))
	for i, bp := range wf.Breakpoints {
		out[i] = layout.Layout{
			MinWidth:   bp.Width,
			Rows:       bp.Rows,
			Columns:    bp.Columns,
			RowSpacing: bp.Indents,
		}
	}
	return out
}

// Tuning returns the tuning block.
func (wf *WidgetFile) Tuning() Config {
	return New(wf.RawTuning)
}

// OverrideTuning replaces the keys over sets and keeps the rest of the
// file's tuning block.
func (wf *WidgetFile) OverrideTuning(over Config) {
	wf.RawTuning = wf.Tuning().Merge(over).data
}
