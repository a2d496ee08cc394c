package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen indicates the collector has failed repeatedly and batches
// are being dropped until the breaker half-opens.
var ErrCircuitOpen = fmt.Errorf("collector unavailable: %w", gobreaker.ErrOpenState)

// HTTPConfig configures an HTTPSink.
type HTTPConfig struct {
	// Endpoint receives a POST with the JSON batch.
	Endpoint string

	// Client defaults to an http.Client with Timeout.
	Client *http.Client

	// Timeout bounds each request.
	// Default: 5s
	Timeout time.Duration

	// FailureThreshold is the number of consecutive failures that opens the breaker.
	// Default: 5
	FailureThreshold uint32

	// OpenTimeout is how long the breaker stays open before a trial request.
	// Default: 30s
	OpenTimeout time.Duration

	// Logger receives delivery failures. Nil disables logging.
	Logger *slog.Logger
}

// DefaultHTTPConfig returns production defaults for endpoint.
func DefaultHTTPConfig(endpoint string) HTTPConfig {
	return HTTPConfig{
		Endpoint:         endpoint,
		Timeout:          5 * time.Second,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

// HTTPSink posts batches to a collector endpoint in the background.
// Failed posts are not retried; a circuit breaker stops posting to a
// collector that keeps failing.
type HTTPSink struct {
	cfg    HTTPConfig
	client *http.Client
	cb     *gobreaker.CircuitBreaker[struct{}]

	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

// Compile-time interface check.
var _ Sink = (*HTTPSink)(nil)

// NewHTTPSink creates an HTTPSink. Zero config fields take their defaults.
func NewHTTPSink(cfg HTTPConfig) *HTTPSink {
	defaults := DefaultHTTPConfig(cfg.Endpoint)
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	logger := cfg.Logger
	settings := gobreaker.Settings{
		Name:    "widgetwatch-collector",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.Warn("collector circuit state changed",
					slog.String("breaker", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()),
				)
			}
		},
	}

	return &HTTPSink{
		cfg:    cfg,
		client: client,
		cb:     gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

// Send encodes the batch and posts it in the background.
// It returns an error only when the batch cannot be encoded, the sink is
// closed, or the breaker is open.
func (s *HTTPSink) Send(ctx context.Context, b Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.cb.State() == gobreaker.StateOpen {
		return ErrCircuitOpen
	}

	body, err := b.Marshal()
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}

	// Delivery outlives the caller's callback.
	postCtx := context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_, err := s.cb.Execute(func() (struct{}, error) {
			return struct{}{}, s.post(postCtx, body)
		})
		if err != nil && s.cfg.Logger != nil {
			s.cfg.Logger.Warn("batch delivery failed",
				slog.String("batch_id", b.ID),
				slog.String("widget_id", b.WidgetID),
				slog.String("error", err.Error()),
			)
		}
	}()
	return nil
}

func (s *HTTPSink) post(ctx context.Context, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post batch: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return &StatusError{StatusCode: resp.StatusCode, Endpoint: s.cfg.Endpoint}
	}
	return nil
}

// State returns the breaker state name.
func (s *HTTPSink) State() string {
	return s.cb.State().String()
}

// Wait blocks until every in-flight post has finished.
func (s *HTTPSink) Wait() {
	s.wg.Wait()
}

// Close stops accepting batches and waits for in-flight posts.
func (s *HTTPSink) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// StatusError is a non-2xx collector response.
type StatusError struct {
	StatusCode int
	Endpoint   string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("collector %s returned HTTP %d", e.Endpoint, e.StatusCode)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
