package widgetwatch

import (
	"errors"
	"fmt"
)

// Sentinel errors for configuration and setup. Each is reported wrapped in
// a *ConfigurationError.
var (
	// ErrInvalidConfig indicates the constructor configuration is unusable.
	ErrInvalidConfig = errors.New("invalid widget configuration")

	// ErrNoListAnchor indicates the widget list element is not present.
	ErrNoListAnchor = errors.New("widget list not found")

	// ErrZeroListHeight indicates the widget list has no measurable height.
	ErrZeroListHeight = errors.New("widget list has zero height")

	// ErrNoBreakpoints indicates multi-breakpoint mode without any breakpoint.
	ErrNoBreakpoints = errors.New("no breakpoints configured")

	// ErrNoMatchingBreakpoint indicates no breakpoint covers the viewport width.
	ErrNoMatchingBreakpoint = errors.New("no breakpoint matches viewport width")

	// ErrNoViewport indicates the tracker was created without a viewport.
	ErrNoViewport = errors.New("no viewport")
)

// ConfigurationError is returned by Init when setup cannot proceed. It is
// also logged; the widget produces no events after it.
type ConfigurationError struct {
	// Op is the setup step that failed ("init", "resize").
	Op string
	// WidgetID identifies the widget.
	WidgetID string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("widget %s %s: %v", e.WidgetID, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
