package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"moodslots/internal/adapters/repo"
	"moodslots/internal/domain"
	"moodslots/internal/infra/cache"
	"moodslots/internal/infra/config"
	"moodslots/internal/infra/db"
	applog "moodslots/internal/infra/log"
	"moodslots/internal/infra/metrics"
	"moodslots/internal/infra/queue"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv, "scheduler")

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.StartServer(ctx, logger, ":9091")

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("scheduler: нет подключения к БД")
	}
	defer pool.Close()

	profiles := repo.NewPostgres(pool)
	if err := profiles.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("scheduler: миграция схемы не прошла")
	}

	var (
		jobQueue domain.JobQueue
		guard    domain.Cache
	)
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		guard = cache.NewRedis(client)
		jobQueue = queue.NewRedisJobQueue(client, cfg.Queues.Jobs)
	}
	if cfg.RabbitURL != "" {
		rabbit, err := queue.NewRabbitJobQueue(cfg.RabbitURL, cfg.Queues.Jobs)
		if err != nil {
			logger.Fatal().Err(err).Msg("scheduler: не удалось инициализировать очередь RabbitMQ")
		}
		defer rabbit.Close()
		jobQueue = rabbit
	}
	if jobQueue == nil {
		logger.Fatal().Msg("scheduler: не настроена ни одна очередь задач")
	}

	c := cron.New()
	_, err = c.AddFunc(cfg.Scheduler.Spec, func() {
		tick(ctx, logger, profiles, jobQueue, guard)
	})
	if err != nil {
		logger.Fatal().Err(err).Str("spec", cfg.Scheduler.Spec).Msg("scheduler: некорректное cron-выражение")
	}

	c.Start()
	logger.Info().Str("spec", cfg.Scheduler.Spec).Msg("scheduler запущен")

	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info().Msg("scheduler остановлен")
}

// tick находит профили, у которых наступило время ежедневной рассылки,
// и ставит по задаче на каждый. От повторной постановки за день защищают
// выборка по таблице доставок и ключ-замок в Redis.
func tick(ctx context.Context, logger zerolog.Logger, profiles *repo.Postgres, jobs domain.JobQueue, guard domain.Cache) {
	now := time.Now().UTC()

	due, err := profiles.ListForDailyTime(now)
	if err != nil {
		logger.Error().Err(err).Msg("не удалось выбрать профили для рассылки")
		return
	}

	for _, profile := range due {
		job := domain.RecommendationJob{
			ID:         uuid.NewString(),
			ProfileID:  profile.ID,
			ChatID:     profile.ChatID,
			EnqueuedAt: now,
		}
		enqueue := func() error { return jobs.Enqueue(ctx, job) }

		if guard != nil {
			key := fmt.Sprintf("enqueued:%d:%s", profile.ID, now.Format("2006-01-02"))
			err = guard.Once(key, 24*time.Hour, enqueue)
		} else {
			err = enqueue()
		}
		if err != nil {
			logger.Error().Err(err).Int64("chat_id", profile.ChatID).Msg("не удалось поставить задачу")
			continue
		}
		logger.Info().Str("job_id", job.ID).Int64("chat_id", profile.ChatID).Msg("задача поставлена в очередь")
	}
}
