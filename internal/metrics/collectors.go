package metrics

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"

	"marketpulse/pkg/logger"
)

// StoreCollector reports table-level gauges from Postgres at scrape time
type StoreCollector struct {
	log      *logger.Logger
	postgres *sqlx.DB

	totalUsers     *prometheus.Desc
	onboardedUsers *prometheus.Desc
	watchedTickers *prometheus.Desc
	watchlistRows  *prometheus.Desc
	dedupRows      *prometheus.Desc
	activeUsers24h *prometheus.Desc
}

// NewStoreCollector creates a new store metrics collector
func NewStoreCollector(log *logger.Logger, postgres *sqlx.DB) *StoreCollector {
	return &StoreCollector{
		log:      log.With("component", "metrics_collector"),
		postgres: postgres,

		totalUsers:     prometheus.NewDesc("marketpulse_users", "Registered users", nil, nil),
		onboardedUsers: prometheus.NewDesc("marketpulse_users_onboarded", "Users that completed onboarding", nil, nil),
		watchedTickers: prometheus.NewDesc("marketpulse_watched_tickers", "Distinct tickers on any watchlist", nil, nil),
		watchlistRows:  prometheus.NewDesc("marketpulse_watchlist_entries", "Total watchlist entries", nil, nil),
		dedupRows:      prometheus.NewDesc("marketpulse_sent_notifications", "Rows in the alert dedup table", nil, nil),
		activeUsers24h: prometheus.NewDesc("marketpulse_users_active_24h", "Users seen in the last 24 hours", nil, nil),
	}
}

// Describe implements prometheus.Collector
func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalUsers
	ch <- c.onboardedUsers
	ch <- c.watchedTickers
	ch <- c.watchlistRows
	ch <- c.dedupRows
	ch <- c.activeUsers24h
}

// Collect implements prometheus.Collector
func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c.gauge(ctx, ch, c.totalUsers, `SELECT COUNT(*) FROM users`)
	c.gauge(ctx, ch, c.onboardedUsers, `SELECT COUNT(*) FROM users WHERE onboarded`)
	c.gauge(ctx, ch, c.watchedTickers, `SELECT COUNT(DISTINCT ticker) FROM watchlist`)
	c.gauge(ctx, ch, c.watchlistRows, `SELECT COUNT(*) FROM watchlist`)
	c.gauge(ctx, ch, c.dedupRows, `SELECT COUNT(*) FROM sent_notifications`)
	c.gauge(ctx, ch, c.activeUsers24h, `SELECT COUNT(*) FROM users WHERE last_seen > NOW() - INTERVAL '24 hours'`)
}

func (c *StoreCollector) gauge(ctx context.Context, ch chan<- prometheus.Metric, desc *prometheus.Desc, query string) {
	var count int64
	if err := c.postgres.GetContext(ctx, &count, query); err != nil {
		c.log.Warnw("Failed to collect store metric", "metric", desc.String(), "error", err)
		return
	}
	ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, float64(count))
}
