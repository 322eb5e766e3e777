package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/services/analysis"
	"marketpulse/internal/services/monitor"
	"marketpulse/internal/services/report"
	"marketpulse/pkg/logger"
)

type fakeSweeper struct {
	calls int
	err   error
}

func (f *fakeSweeper) Sweep(ctx context.Context) (monitor.SweepResult, error) {
	f.calls++
	return monitor.SweepResult{Users: 1, Tickers: 2, PriceAlerts: 1}, f.err
}

type fakeCleaner struct {
	maxAge time.Duration
}

func (f *fakeCleaner) Cleanup(ctx context.Context, maxAge time.Duration) (int64, error) {
	f.maxAge = maxAge
	return 3, nil
}

type fakePremarket struct{ err error }

func (f fakePremarket) Premarket(ctx context.Context, userID int64) (*analysis.CommandContext, error) {
	return &analysis.CommandContext{}, f.err
}

type fakeRenderer struct{ kind report.Kind }

func (f *fakeRenderer) Render(kind report.Kind, cc *analysis.CommandContext) (report.Report, error) {
	f.kind = kind
	return report.Report{Text: "briefing"}, nil
}

type fakeBroadcaster struct {
	text  string
	extra []int64
}

func (f *fakeBroadcaster) SendBriefing(ctx context.Context, rep report.Report, extra ...int64) (int, error) {
	f.text = rep.Text
	f.extra = extra
	return 2, nil
}

func TestMonitorWorker(t *testing.T) {
	sw := &fakeSweeper{}
	w := NewMonitorWorker(sw, 5*time.Minute, true, logger.Nop())

	assert.Equal(t, "watchlist_monitor", w.Name())
	assert.Equal(t, 5*time.Minute, w.Interval())
	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, 1, sw.calls)

	sw.err = errors.New("db down")
	assert.EqualError(t, w.Run(context.Background()), "db down")
}

func TestCleanupWorkerDefaultsRetention(t *testing.T) {
	c := &fakeCleaner{}
	w := NewCleanupWorker(c, time.Hour, 0, true, logger.Nop())

	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, 7*24*time.Hour, c.maxAge)
}

func TestBriefingJob(t *testing.T) {
	r := &fakeRenderer{}
	b := &fakeBroadcaster{}
	j := NewBriefingJob("0 0 13 * * 1-5", fakePremarket{}, r, b, 42, logger.Nop())

	assert.True(t, j.Enabled())
	assert.Equal(t, "0 0 13 * * 1-5", j.Schedule())
	require.NoError(t, j.Run(context.Background()))
	assert.Equal(t, report.KindPremarket, r.kind)
	assert.Equal(t, "briefing", b.text)
	assert.Equal(t, []int64{42}, b.extra)

	assert.False(t, NewBriefingJob("", fakePremarket{}, r, b, 0, logger.Nop()).Enabled())
}

func TestBriefingJobPropagatesSourceErrors(t *testing.T) {
	j := NewBriefingJob("@daily", fakePremarket{err: errors.New("finnhub down")}, &fakeRenderer{}, &fakeBroadcaster{}, 0, logger.Nop())
	assert.ErrorContains(t, j.Run(context.Background()), "finnhub down")
}

func TestBaseWorkerStats(t *testing.T) {
	w := NewBaseWorker("heartbeat", time.Minute, true, nil)

	w.RecordError(errors.New("first"), 3*time.Second)
	w.RecordError(errors.New("second"), time.Second)
	h := w.Health()
	assert.Equal(t, int64(2), h.RunCount)
	assert.Equal(t, int64(2), h.ConsecutiveErrors)
	assert.EqualError(t, h.LastError, "second")
	assert.True(t, h.LastSuccess.IsZero())
	assert.Equal(t, 2*time.Second, h.AvgDuration)

	w.RecordRun(2 * time.Second)
	h = w.Health()
	assert.Equal(t, int64(3), h.RunCount)
	assert.Equal(t, int64(2), h.ErrorCount)
	assert.Zero(t, h.ConsecutiveErrors)
	assert.NoError(t, h.LastError)
	assert.False(t, h.LastSuccess.IsZero())
	assert.True(t, h.Enabled)
}
