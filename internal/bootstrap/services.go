package bootstrap

import (
	"context"
	"fmt"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/config"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/intake"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/logger"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/metrics"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/moderation"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/notify"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/repository"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/verification"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/views"
)

// Services holds the domain services.
type Services struct {
	Categories *repository.CategoryRepository
	Intake     *intake.Service
	Queue      *moderation.Queue
	Engine     *moderation.Engine
	Views      *views.Counter
	// Janitor is nil when the dedup backend expires claims itself.
	Janitor *views.Janitor
}

// SetupNotifications starts the notification bus with its log and metrics
// subscribers.
func SetupNotifications(
	ctx context.Context, cfg *config.Config, m *metrics.Metrics, log logger.Logger,
) (*notify.Bus, error) {
	bus := notify.NewBus(log,
		notify.WithBufferSize(cfg.Notify.BufferSize),
		notify.WithSubscriberBufferSize(cfg.Notify.SubscriberBufferSize),
		notify.WithDropHook(func(notify.Event) { m.RecordNotificationDropped() }),
	)
	if err := bus.Start(ctx); err != nil {
		return nil, err
	}

	bus.Handle("log", notify.LogSubscriber(log), notify.OfType(notify.EventReportPublished))
	bus.Handle("metrics", notify.MetricsSubscriber(m))
	return bus, nil
}

// SetupServices builds repositories, the verifier, the dedup store and the
// domain services on top of stores.
func SetupServices(
	cfg *config.Config,
	stores *Stores,
	bus *notify.Bus,
	m *metrics.Metrics,
	log logger.Logger,
) (*Services, error) {
	reports := repository.NewReportRepository(stores.DB)
	categories := repository.NewCategoryRepository(stores.DB)

	dedup, purger, err := selectDedupStore(cfg, stores, log)
	if err != nil {
		return nil, err
	}

	svc := &Services{
		Categories: categories,
		Intake: intake.NewService(
			intake.NewValidator(),
			setupVerifier(cfg, log),
			categories,
			reports,
			intake.Options{
				RequireVerification: cfg.Verification.Required,
				Debug:               cfg.Service.Debug,
				DefaultLatitude:     cfg.Intake.DefaultLatitude,
				DefaultLongitude:    cfg.Intake.DefaultLongitude,
			},
			log.With(logger.String("component", "intake")),
			m,
		),
		Queue:  moderation.NewQueue(reports, cfg.Moderation.DefaultLimit, cfg.Moderation.MaxLimit, m),
		Engine: moderation.NewEngine(reports, bus, log.With(logger.String("component", "moderation")), m),
		Views:  views.NewCounter(reports, dedup, cfg.Views.DedupWindow, log.With(logger.String("component", "views")), m),
	}
	if purger != nil {
		svc.Janitor = views.NewJanitor(purger, cfg.Views.CleanupInterval, log, m)
	}
	return svc, nil
}

func selectDedupStore(cfg *config.Config, stores *Stores, log logger.Logger) (views.DedupStore, views.Purger, error) {
	switch cfg.Views.DedupBackend {
	case config.DedupBackendRedis:
		if stores.Redis == nil {
			return nil, nil, fmt.Errorf("dedup backend %q requires redis", cfg.Views.DedupBackend)
		}
		return views.NewRedisStore(stores.Redis, cfg.Redis.KeyPrefix), nil, nil
	case config.DedupBackendMemory:
		log.Warn("View dedup is in-memory; claims are not shared between instances")
		mem := views.NewMemoryStore()
		return mem, mem, nil
	default:
		repo := repository.NewViewDedupRepository(stores.DB)
		return repo, repo, nil
	}
}

// setupVerifier returns nil when verification is disabled in debug mode.
func setupVerifier(cfg *config.Config, log logger.Logger) verification.Verifier {
	if !cfg.Verification.Required && cfg.Service.Debug {
		log.Warn("Submission verification disabled (debug mode)")
		return nil
	}

	return verification.NewRecaptchaVerifier(verification.Config{
		Secret:         cfg.Verification.Secret,
		URL:            cfg.Verification.URL,
		Timeout:        cfg.Verification.Timeout,
		MinScore:       cfg.Verification.MinScore,
		ExpectedAction: cfg.Verification.ExpectedAction,
		Breaker: verification.BreakerConfig{
			FailureThreshold: cfg.Verification.BreakerFailures,
			OpenDuration:     cfg.Verification.BreakerOpenDuration,
		},
	}, nil, log.With(logger.String("component", "verification")))
}
