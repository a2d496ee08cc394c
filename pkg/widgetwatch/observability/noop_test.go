package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoopMetrics(t *testing.T) {
	m := NoopMetrics{}
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordEvents(ctx, "i_show", 3)
		m.RecordBatch(ctx, 2, errors.New("x"))
		m.RecordBreakpointChange(ctx, "changed")
		m.RecordAnomaly(ctx)
		m.RecordTerminal(ctx)
	})
}

func TestNoopSpanManager(t *testing.T) {
	sm := NoopSpanManager{}
	ctx := context.Background()

	newCtx, span := sm.StartFlushSpan(ctx, "w1", 1)
	assert.Equal(t, ctx, newCtx, "context is returned unchanged")
	assert.False(t, span.IsRecording())

	_, span = sm.StartReobserveSpan(ctx, "w1", 0)
	assert.NotPanics(t, func() {
		sm.EndSpanWithError(span, errors.New("ignored"))
	})
}
