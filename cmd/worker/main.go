package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"moodslots/internal/adapters/calendar"
	"moodslots/internal/adapters/catalog"
	"moodslots/internal/adapters/moodsource"
	"moodslots/internal/adapters/notify"
	"moodslots/internal/adapters/repo"
	"moodslots/internal/domain"
	"moodslots/internal/infra/cache"
	"moodslots/internal/infra/config"
	"moodslots/internal/infra/db"
	applog "moodslots/internal/infra/log"
	"moodslots/internal/infra/metrics"
	"moodslots/internal/infra/queue"
	"moodslots/internal/usecase/availability"
	"moodslots/internal/usecase/mood"
	"moodslots/internal/usecase/recommend"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv, "worker")

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.StartServer(ctx, logger, ":9090")

	zone, err := time.LoadLocation(cfg.Availability.Zone)
	if err != nil {
		logger.Fatal().Err(err).Str("zone", cfg.Availability.Zone).Msg("worker: неизвестный часовой пояс")
	}
	engine := availability.NewEngine(availability.Config{
		Zone:      zone,
		WakeStart: cfg.Availability.WakeStart,
		WakeEnd:   cfg.Availability.WakeEnd,
	}, logger.With().Str("component", "availability").Logger())

	moodService := mood.NewService(
		moodsource.NewEnvironment(cfg.Sources.EnvironmentURL, cfg.Sources.Timeout),
		moodsource.NewSmartwatch(cfg.Sources.SmartwatchURL, cfg.Sources.Timeout),
		moodsource.NewVoice(cfg.Sources.VoiceURL, cfg.Sources.Timeout),
		logger.With().Str("component", "mood").Logger(),
	)

	var (
		recCache domain.Cache
		jobQueue domain.JobQueue
	)
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		recCache = cache.NewRedis(client)
		jobQueue = queue.NewRedisJobQueue(client, cfg.Queues.Jobs)
	}
	if cfg.RabbitURL != "" {
		rabbit, err := queue.NewRabbitJobQueue(cfg.RabbitURL, cfg.Queues.Jobs)
		if err != nil {
			logger.Fatal().Err(err).Msg("worker: не удалось инициализировать очередь RabbitMQ")
		}
		defer rabbit.Close()
		jobQueue = rabbit
	}
	if jobQueue == nil {
		logger.Fatal().Msg("worker: не настроена ни одна очередь задач")
	}

	recommender := recommend.NewService(
		moodService,
		newCalendarSource(cfg, logger),
		newCatalogSource(cfg, logger),
		engine,
		recCache,
		cfg.Cache.TTL,
		logger.With().Str("component", "recommend").Logger(),
	)

	notifier, err := notify.NewTelegram(cfg.Telegram.Token, logger.With().Str("component", "telegram").Logger())
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: не удалось инициализировать Telegram бота")
	}

	var profiles *repo.Postgres
	if cfg.PGDSN != "" {
		pool, err := db.Connect(cfg.PGDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("worker: нет подключения к БД")
		}
		defer pool.Close()
		profiles = repo.NewPostgres(pool)
		if err := profiles.Migrate(ctx); err != nil {
			logger.Fatal().Err(err).Msg("worker: миграция схемы не прошла")
		}
	}

	logger.Info().Str("queue", cfg.Queues.Jobs).Msg("worker запущен")
	run(ctx, logger, jobQueue, recommender, notifier, profiles)
	logger.Info().Msg("worker остановлен")
}

// run крутит цикл обработки: задача из очереди, сборка рекомендации,
// доставка в чат и отметка о доставке. Ошибка одной задачи не роняет цикл.
func run(ctx context.Context, logger zerolog.Logger, jobs domain.JobQueue, recommender domain.Recommender, notifier domain.Notifier, profiles *repo.Postgres) {
	for {
		job, err := jobs.Pop(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			logger.Error().Err(err).Msg("не удалось получить задачу из очереди")
			select {
			case <-ctx.Done():
				return
			case <-time.After(3 * time.Second):
			}
			continue
		}

		jobLog := logger.With().Str("job_id", job.ID).Int64("chat_id", job.ChatID).Logger()

		rec, err := recommender.Build(ctx)
		if err != nil {
			jobLog.Error().Err(err).Msg("не удалось собрать рекомендацию")
			continue
		}
		if err := notifier.Deliver(ctx, job.ChatID, rec); err != nil {
			jobLog.Error().Err(err).Msg("не удалось доставить рекомендацию")
			continue
		}
		if profiles != nil && job.ProfileID != 0 {
			if err := profiles.MarkDelivered(job.ProfileID, time.Now().UTC()); err != nil {
				jobLog.Error().Err(err).Msg("не удалось отметить доставку")
			}
		}
		jobLog.Info().Int("windows", len(rec.Windows)).Msg("рекомендация доставлена")
	}
}

func newCalendarSource(cfg config.AppConfig, logger zerolog.Logger) domain.CalendarSource {
	calLog := logger.With().Str("component", "calendar").Logger()
	if cfg.Sources.CalendarICSURL != "" {
		return calendar.NewICSSource(cfg.Sources.CalendarICSURL, cfg.Sources.Timeout, calLog)
	}
	return calendar.NewHTTPSource(cfg.Sources.CalendarURL, cfg.Sources.Timeout, calLog)
}

func newCatalogSource(cfg config.AppConfig, logger zerolog.Logger) domain.Catalog {
	catLog := logger.With().Str("component", "catalog").Logger()
	if cfg.Sources.CatalogCSVPath != "" {
		return catalog.NewCSVCatalog(cfg.Sources.CatalogCSVPath, catLog)
	}
	return catalog.NewHTTPCatalog(cfg.Sources.CatalogURL, cfg.Sources.Timeout, catLog)
}
