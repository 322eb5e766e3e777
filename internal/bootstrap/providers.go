package bootstrap

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"marketpulse/internal/adapters/ai"
	"marketpulse/internal/adapters/chart"
	"marketpulse/internal/adapters/config"
	errnoop "marketpulse/internal/adapters/errors/noop"
	"marketpulse/internal/adapters/errors/sentry"
	"marketpulse/internal/adapters/finnhub"
	"marketpulse/internal/adapters/kafka"
	pgclient "marketpulse/internal/adapters/postgres"
	"marketpulse/internal/adapters/reddit"
	redisclient "marketpulse/internal/adapters/redis"
	tgadapter "marketpulse/internal/adapters/telegram"
	"marketpulse/internal/api"
	"marketpulse/internal/api/health"
	"marketpulse/internal/domain/market"
	"marketpulse/internal/domain/note"
	"marketpulse/internal/domain/user"
	"marketpulse/internal/domain/watchlist"
	"marketpulse/internal/metrics"
	pgrepo "marketpulse/internal/repository/postgres"
	redisrepo "marketpulse/internal/repository/redis"
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
	"marketpulse/pkg/telegram/adapters/tgbotapi"
)

// ========================================
// Phase 1: Configuration & Logging
// ========================================

// MustInitConfig loads configuration and initializes logger
func (c *Container) MustInitConfig() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	c.Config = cfg

	if err := provideLogger(cfg.App); err != nil {
		panic("failed to init logger: " + err.Error())
	}

	c.Log = logger.Get()
	c.Log.Infof("Starting %s %s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Env)

	c.ErrorTracker = provideErrorTracker(cfg, c.Log)
	logger.SetErrorTracker(c.ErrorTracker)

	metrics.Init()
}

// ========================================
// Phase 2: Infrastructure Layer
// ========================================

// MustInitInfrastructure connects Postgres and, when enabled, Redis
func (c *Container) MustInitInfrastructure() {
	var err error

	c.Log.Info("Connecting to PostgreSQL...")
	c.PG, err = pgclient.NewClient(c.Config.Postgres)
	if err != nil {
		c.Log.Fatalf("failed to connect postgres: %v", err)
	}
	c.Log.Info("✓ PostgreSQL connected")

	if c.Config.Postgres.AutoMigrate {
		ctx, cancel := context.WithTimeout(c.Context, time.Minute)
		err = pgrepo.Migrate(ctx, c.PG.DB())
		cancel()
		if err != nil {
			c.Log.Fatalf("failed to migrate postgres: %v", err)
		}
		c.Log.Info("✓ PostgreSQL schema up to date")
	}

	if c.Config.Redis.Enabled {
		c.Log.Info("Connecting to Redis...")
		c.Redis, err = redisclient.NewClient(c.Config.Redis)
		if err != nil {
			c.Log.Fatalf("failed to connect redis: %v", err)
		}
		c.Log.Info("✓ Redis connected")
	} else {
		c.Log.Info("Redis disabled, caching in memory")
	}
}

// ========================================
// Phase 3: Repositories
// ========================================

// MustInitRepositories creates the Postgres repositories
func (c *Container) MustInitRepositories() {
	db := c.PG.DB()

	c.Repos.User = pgrepo.NewUserRepository(db)
	c.Repos.Watchlist = pgrepo.NewWatchlistRepository(db)
	c.Repos.Note = pgrepo.NewNoteRepository(db)
	c.Repos.Notification = pgrepo.NewNotificationRepository(db)
	c.Repos.Usage = pgrepo.NewUsageRepository(db)

	if c.Config.Metrics.Enabled {
		prometheus.MustRegister(metrics.NewStoreCollector(c.Log, db))
	}

	c.Log.Info("✓ Repositories initialized")
}

// ========================================
// Phase 4: External Adapters
// ========================================

// MustInitAdapters creates market data clients, the Kafka producer and the bot
func (c *Container) MustInitAdapters() {
	cfg := c.Config

	c.Adapters.Finnhub = finnhub.NewClient(cfg.Finnhub.APIKey,
		finnhub.WithBaseURL(cfg.Finnhub.BaseURL),
		finnhub.WithTimeout(cfg.Finnhub.Timeout),
		finnhub.WithRatePerMinute(cfg.Finnhub.RatePerMinute),
		finnhub.WithLogger(c.Log),
	)
	c.Adapters.Reddit = reddit.NewClient(
		reddit.WithBaseURL(cfg.Reddit.BaseURL),
		reddit.WithUserAgent(cfg.Reddit.UserAgent),
		reddit.WithTimeout(cfg.Reddit.Timeout),
		reddit.WithLogger(c.Log),
	)

	if cfg.Kafka.Enabled {
		c.Adapters.KafkaProducer = kafka.NewProducer(kafka.ProducerConfig{
			Brokers: cfg.Kafka.Brokers,
			Async:   true,
		}, c.Log)
		c.Log.Infow("✓ Kafka producer configured", "brokers", cfg.Kafka.Brokers)
	}

	bot, err := tgbotapi.NewBot(tgbotapi.Config{
		Token:          cfg.Telegram.BotToken,
		Debug:          cfg.Telegram.Debug,
		HTTPTimeout:    cfg.Telegram.HTTPTimeout,
		RateLimitBurst: cfg.Telegram.RateBurst,
		RateLimitRate:  cfg.Telegram.RateLimit,
	}, c.Log)
	if err != nil {
		c.Log.Fatalf("failed to create telegram bot: %v", err)
	}
	c.Adapters.Bot = bot
	c.Adapters.Charts = chart.NewRenderer()

	c.Log.Infow("✓ Adapters initialized", "bot", bot.Username())
}

// ========================================
// Phase 5: Services
// ========================================

// MustInitServices wires resolver, gateway, assembler, advisor and the monitor
func (c *Container) MustInitServices() {
	cfg := c.Config

	c.Services.User = user.NewService(c.Repos.User)
	c.Services.Watchlist = watchlist.NewService(c.Repos.Watchlist)
	c.Services.Note = note.NewService(c.Repos.Note)

	var resolutions market.ResolutionCache
	commentary := analysis.CommentaryStore(analysis.NewMemoryStore())
	if c.Redis != nil {
		resolutions = redisrepo.NewResolutionCache(c.Redis.Client(), market.ResolutionTTL)
		commentary = redisrepo.NewCommentaryStore(c.Redis.Client())
	}

	c.Services.Gateway = marketdata.NewGateway(c.Adapters.Finnhub, c.Adapters.Reddit, marketdata.Config{
		CallTimeout: cfg.Finnhub.Timeout,
		Subreddits:  cfg.Reddit.Subreddits,
	}, metrics.RecordProviderCall, c.Log)

	// validation goes through the gateway for its call timeout and provider metrics
	c.Services.Resolver = resolver.New(c.Services.Gateway, resolutions, c.Log,
		resolver.WithLookupHook(metrics.RecordResolverLookup),
	)

	c.Services.Assembler = analysis.NewAssembler(
		c.Services.Resolver,
		c.Services.Gateway,
		c.Services.User,
		c.Services.Watchlist,
		c.Services.Note,
		analysis.AssemblerConfig{NewsLookback: cfg.Monitor.NewsLookback},
		c.Log,
	)

	universe, err := analysis.LoadUniverse()
	if err != nil {
		c.Log.Fatalf("failed to load scan universe: %v", err)
	}
	c.Services.Scanner = analysis.NewScanner(c.Services.Assembler, universe, c.Log)

	var limiterStore *redis.Client
	if c.Redis != nil {
		limiterStore = c.Redis.Client()
	}
	llm := ai.NewChatProvider(c.Context, cfg.AI, c.Log)
	llm = ai.WithRateLimit(llm, ai.NewRateLimiter(limiterStore, llm.Name(), cfg.AI.ReqPerMinute, cfg.AI.Burst))
	llm = ai.WithRecorder(llm, metrics.RecordLLMCall)
	cache := analysis.NewCommentaryCache(analysis.DefaultCacheConfig(), commentary, c.Log)
	c.Services.Advisor = analysis.NewAdvisor(llm, nil, cache, c.Log)

	c.Services.Renderer, err = report.NewRenderer()
	if err != nil {
		c.Log.Fatalf("failed to load report templates: %v", err)
	}

	c.Services.Onboarding = onboarding.NewService(c.Services.User, nil, c.Log)

	var publisher usagesvc.Publisher
	if c.Adapters.KafkaProducer != nil {
		publisher = c.Adapters.KafkaProducer
	}
	c.Services.Usage = usagesvc.NewService(c.Repos.Usage, publisher, cfg.Kafka.UsageTopic, c.Log)

	c.Services.Monitor = monitor.NewService(
		c.Repos.User,
		c.Services.Watchlist,
		c.Services.Assembler,
		c.Services.Renderer,
		c.Repos.Notification,
		c.Adapters.Bot,
		publisher,
		monitor.Config{
			PriceThreshold: cfg.Monitor.PriceThreshold,
			VolumeRatio:    cfg.Monitor.VolumeRatio,
			NewsPerTicker:  cfg.Monitor.NewsPerTicker,
			AlertTopic:     cfg.Kafka.AlertTopic,
		},
		c.Log,
	)

	c.Log.Infow("✓ Services initialized", "ai_enabled", c.Services.Advisor.Enabled())
}

// ========================================
// Phase 6: Application Layer
// ========================================

// MustInitApplication creates the dispatcher, the poller and the ops server
func (c *Container) MustInitApplication() {
	cfg := c.Config

	deps := tgadapter.Deps{
		Users:      c.Services.User,
		Watchlist:  c.Services.Watchlist,
		Notes:      c.Services.Note,
		Onboarding: c.Services.Onboarding,
		Resolver:   c.Services.Resolver,
		Assembler:  c.Services.Assembler,
		Scanner:    c.Services.Scanner,
		Advisor:    c.Services.Advisor,
		Renderer:   c.Services.Renderer,
		Charts:     c.Adapters.Charts,
		Usage:      c.Services.Usage,
	}
	if tr := ai.NewTranscriber(cfg.AI, c.Log); !isUnavailable(tr) {
		deps.Transcriber = tr
	}

	c.Application.Dispatcher = tgadapter.NewDispatcher(c.Adapters.Bot, deps, tgadapter.Config{
		Version:            cfg.App.Version,
		DonateURL:          cfg.Telegram.DonateURL,
		RateLimitPerMinute: cfg.Telegram.CommandsPerMinute,
		Started:            time.Now(),
		Offset:             func() int { return c.Application.Poller.Offset() },
	}, c.Log)

	c.Application.Poller = tg.NewPoller(c.Adapters.Bot, c.Application.Dispatcher, c.Adapters.Bot, tg.PollerConfig{
		Timeout:        cfg.Telegram.PollTimeout,
		Limit:          100,
		HandlerTimeout: cfg.Telegram.HandlerTimeout,
		OnOffset:       metrics.RecordPollOffset,
		OnFetchError:   metrics.RecordFetchError,
	}, c.Log)

	c.Log.Infow("✓ Telegram dispatcher ready",
		"commands", len(c.Application.Dispatcher.Registry().GetCommands(true)),
		"voice", deps.Transcriber != nil,
	)
}

// ========================================
// Phase 7: Background Processing
// ========================================

// MustInitBackground registers the monitor sweep, the dedup cleanup and the
// pre-market briefing, then builds the ops server that reports on them
func (c *Container) MustInitBackground() {
	cfg := c.Config.Monitor
	scheduler := workers.NewScheduler(c.Log)

	scheduler.RegisterWorker(workers.NewMonitorWorker(c.Services.Monitor, cfg.Interval, cfg.Enabled, c.Log))
	scheduler.RegisterWorker(workers.NewCleanupWorker(c.Services.Monitor, cfg.CleanupInterval, cfg.NotificationMaxAge, true, c.Log))

	briefing := workers.NewBriefingJob(
		cfg.BriefingSchedule,
		c.Services.Scanner,
		c.Services.Renderer,
		c.Services.Monitor,
		c.Config.Telegram.AdminChatID,
		c.Log,
	)
	if err := scheduler.RegisterCron(briefing); err != nil {
		c.Log.Fatalf("failed to schedule briefing: %v", err)
	}
	c.Background.WorkerScheduler = scheduler

	if c.Config.Metrics.Enabled {
		h := health.New(c.Log, c.Config.App.Name, c.Config.App.Version).
			Require("postgres", c.PG).
			WithWorkers(scheduler)
		if c.Redis != nil {
			h.Optional("redis", c.Redis)
		}
		c.Application.HTTPServer = api.NewServer(api.ServerConfig{
			Addr:        c.Config.Metrics.Addr,
			ServiceName: c.Config.App.Name,
			Version:     c.Config.App.Version,
		}, h, c.Log)
	}

	c.Log.Infow("✓ Background workers registered",
		"monitor_interval", cfg.Interval.String(),
		"briefing", cfg.BriefingSchedule,
	)
}

// ========================================
// Helpers
// ========================================

func provideLogger(cfg config.AppConfig) error {
	return logger.InitWithFile(cfg.LogLevel, cfg.Env, logger.FileOutput{
		Path:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
}

// provideErrorTracker returns Sentry when a DSN is configured, a no-op tracker otherwise
func provideErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return errnoop.New()
	}

	tracker, err := sentry.New(sentry.Options{
		DSN:         cfg.ErrorTracking.SentryDSN,
		Environment: cfg.ErrorTracking.Environment,
		Release:     cfg.App.Version,
		SampleRate:  cfg.ErrorTracking.SampleRate,
	})
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return errnoop.New()
	}

	log.Info("✓ Error tracking initialized (Sentry)")
	return tracker
}

func isUnavailable(t ai.Transcriber) bool {
	_, none := t.(ai.Unavailable)
	return none
}
