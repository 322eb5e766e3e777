package workers

import (
	"context"
	"time"

	"marketpulse/internal/services/monitor"
	"marketpulse/pkg/logger"
)

// Sweeper runs one alert pass over all watchlists
type Sweeper interface {
	Sweep(ctx context.Context) (monitor.SweepResult, error)
}

// MonitorWorker sends price, volume and news alerts for watched tickers
type MonitorWorker struct {
	*BaseWorker
	sweeper Sweeper
}

// NewMonitorWorker creates the alert worker
func NewMonitorWorker(sweeper Sweeper, interval time.Duration, enabled bool, log *logger.Logger) *MonitorWorker {
	return &MonitorWorker{
		BaseWorker: NewBaseWorker("watchlist_monitor", interval, enabled, log),
		sweeper:    sweeper,
	}
}

// Run executes one sweep
func (w *MonitorWorker) Run(ctx context.Context) error {
	res, err := w.sweeper.Sweep(ctx)
	if err != nil {
		return err
	}
	if res.Tickers > 0 {
		w.Log().Infow("Watchlist sweep completed",
			"users", res.Users,
			"tickers", res.Tickers,
			"price_alerts", res.PriceAlerts,
			"volume_alerts", res.VolumeAlerts,
			"news_alerts", res.NewsAlerts,
			"failed", res.Failed,
		)
	}
	return nil
}
