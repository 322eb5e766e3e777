package bootstrap

import (
	"context"
	"sync"

	"marketpulse/internal/adapters/chart"
	"marketpulse/internal/adapters/config"
	"marketpulse/internal/adapters/finnhub"
	"marketpulse/internal/adapters/kafka"
	pgclient "marketpulse/internal/adapters/postgres"
	"marketpulse/internal/adapters/reddit"
	redisclient "marketpulse/internal/adapters/redis"
	tgadapter "marketpulse/internal/adapters/telegram"
	"marketpulse/internal/api"
	"marketpulse/internal/domain/note"
	"marketpulse/internal/domain/user"
	"marketpulse/internal/domain/watchlist"
	pgrepo "marketpulse/internal/repository/postgres"
	"marketpulse/internal/services/analysis"
	"marketpulse/internal/services/marketdata"
	"marketpulse/internal/services/monitor"
	"marketpulse/internal/services/onboarding"
	"marketpulse/internal/services/report"
	"marketpulse/internal/services/resolver"
	usagesvc "marketpulse/internal/services/usage"
	"marketpulse/internal/workers"
	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
	tg "marketpulse/pkg/telegram"
)

// Container holds all application dependencies and their lifecycle.
// Components are organized in initialization order.
type Container struct {
	// Core configuration & logging
	Config       *config.Config
	Log          *logger.Logger
	ErrorTracker errors.Tracker

	// Infrastructure (data stores)
	PG    *pgclient.Client
	Redis *redisclient.Client // nil when REDIS_ENABLED=false

	Repos       *Repositories
	Adapters    *Adapters
	Services    *Services
	Application *Application
	Background  *Background

	// Lifecycle management
	Lifecycle *Lifecycle
	WG        *sync.WaitGroup
	Context   context.Context
	Cancel    context.CancelFunc
}

// Repositories groups the Postgres repositories
type Repositories struct {
	User         *pgrepo.UserRepository
	Watchlist    *pgrepo.WatchlistRepository
	Note         *pgrepo.NoteRepository
	Notification *pgrepo.NotificationRepository
	Usage        *pgrepo.UsageRepository
}

// Adapters groups clients for external systems
type Adapters struct {
	Finnhub       *finnhub.Client
	Reddit        *reddit.Client
	KafkaProducer *kafka.Producer // nil when KAFKA_ENABLED=false
	Bot           tg.Bot
	Charts        *chart.Renderer
}

// Services groups domain and application services
type Services struct {
	User       *user.Service
	Watchlist  *watchlist.Service
	Note       *note.Service
	Resolver   *resolver.Resolver
	Gateway    *marketdata.Gateway
	Assembler  *analysis.Assembler
	Scanner    *analysis.Scanner
	Advisor    *analysis.Advisor
	Renderer   *report.Renderer
	Onboarding *onboarding.Service
	Monitor    *monitor.Service
	Usage      *usagesvc.Service
}

// Application groups the user-facing entry points
type Application struct {
	Dispatcher *tgadapter.Dispatcher
	Poller     *tg.Poller
	HTTPServer *api.Server // nil when METRICS_ENABLED=false
}

// Background groups all background processing components
type Background struct {
	WorkerScheduler *workers.Scheduler
}

// NewContainer creates a new dependency container
func NewContainer() *Container {
	ctx, cancel := context.WithCancel(context.Background())

	return &Container{
		Repos:       &Repositories{},
		Adapters:    &Adapters{},
		Services:    &Services{},
		Application: &Application{},
		Background:  &Background{},
		Lifecycle:   NewLifecycle(),
		WG:          &sync.WaitGroup{},
		Context:     ctx,
		Cancel:      cancel,
	}
}

// MustInit initializes all components in the correct order.
// Panics on any initialization error (fail-fast at startup).
func (c *Container) MustInit() {
	c.MustInitConfig()
	c.MustInitInfrastructure()
	c.MustInitRepositories()
	c.MustInitAdapters()
	c.MustInitServices()
	c.MustInitApplication()
	c.MustInitBackground()
}

// Start launches the poller, the workers and the ops server
func (c *Container) Start() error {
	c.Log.Info("Starting all systems...")

	if err := c.Background.WorkerScheduler.Start(c.Context); err != nil {
		return errors.Wrap(err, "failed to start workers")
	}

	c.WG.Add(1)
	go func() {
		defer c.WG.Done()
		if err := c.Application.Poller.Run(c.Context); err != nil && c.Context.Err() == nil {
			c.Log.Errorw("Telegram poller stopped", "error", err)
			c.Cancel()
		}
	}()

	if c.Application.HTTPServer != nil {
		c.WG.Add(1)
		go func() {
			defer c.WG.Done()
			if err := c.Application.HTTPServer.Start(); err != nil {
				c.Log.Errorf("HTTP server failed: %v", err)
				c.Cancel()
			}
		}()
	}

	c.Log.Infow("✓ All systems operational",
		"bot", c.Adapters.Bot.Username(),
		"workers", len(c.Background.WorkerScheduler.GetWorkers()),
	)
	return nil
}

// Shutdown performs graceful shutdown in the correct order
func (c *Container) Shutdown() {
	c.Log.Info("Initiating graceful shutdown...")

	c.Cancel()

	c.Lifecycle.Shutdown(
		c.WG,
		c.Application.HTTPServer,
		c.Background.WorkerScheduler,
		c.Adapters.KafkaProducer,
		c.PG,
		c.Redis,
		c.ErrorTracker,
		c.Log,
	)
}
