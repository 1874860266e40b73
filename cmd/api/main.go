package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"moodslots/internal/adapters/calendar"
	"moodslots/internal/adapters/catalog"
	"moodslots/internal/adapters/moodsource"
	"moodslots/internal/adapters/repo"
	"moodslots/internal/domain"
	"moodslots/internal/infra/cache"
	"moodslots/internal/infra/config"
	"moodslots/internal/infra/db"
	httpinfra "moodslots/internal/infra/http"
	applog "moodslots/internal/infra/log"
	"moodslots/internal/infra/metrics"
	"moodslots/internal/infra/queue"
	"moodslots/internal/usecase/availability"
	"moodslots/internal/usecase/mood"
	"moodslots/internal/usecase/recommend"
	"moodslots/internal/usecase/schedule"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv, "api")

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zone, err := time.LoadLocation(cfg.Availability.Zone)
	if err != nil {
		logger.Fatal().Err(err).Str("zone", cfg.Availability.Zone).Msg("api: неизвестный часовой пояс")
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

	calendarSource := newCalendarSource(cfg, logger)
	catalogSource := newCatalogSource(cfg, logger)

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
			logger.Fatal().Err(err).Msg("api: не удалось инициализировать очередь RabbitMQ")
		}
		defer rabbit.Close()
		jobQueue = rabbit
	}

	recommender := recommend.NewService(
		moodService,
		calendarSource,
		catalogSource,
		engine,
		recCache,
		cfg.Cache.TTL,
		logger.With().Str("component", "recommend").Logger(),
	)

	server := httpinfra.NewServer(logger.With().Str("component", "http").Logger())

	if cfg.PGDSN != "" {
		pool, err := db.Connect(cfg.PGDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("api: нет подключения к БД")
		}
		defer pool.Close()
		profiles := repo.NewPostgres(pool)
		if err := profiles.Migrate(ctx); err != nil {
			logger.Fatal().Err(err).Msg("api: миграция схемы не прошла")
		}
		registerProfileRoutes(server.Router, schedule.NewService(profiles), profiles)
	}

	server.Router.Get("/api/v1/recommendations", func(w http.ResponseWriter, r *http.Request) {
		rec, err := recommender.Build(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, rec)
	})

	server.Router.Get("/api/v1/availability", func(w http.ResponseWriter, r *http.Request) {
		events, dropped, err := calendarSource.Events(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		slots, skipped := engine.ComputeFreeSlots(events)
		total := 0.0
		for _, slot := range slots {
			total += slot.DurationMinutes
		}
		writeJSON(w, map[string]any{
			"calendar_free_slots": engine.Views(slots),
			"calendar_total_free": availability.HumanMinutes(total),
			"skipped_events":      skipped + dropped,
		})
	})

	server.Router.Get("/api/v1/moods", func(w http.ResponseWriter, r *http.Request) {
		signals, moods, err := moodService.Fetch(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, map[string]any{
			"environment_mood": signals.Environment,
			"smartwatch_mood":  signals.Smartwatch,
			"voice_mood":       signals.Voice,
			"moods":            moods.Labels(),
		})
	})

	server.Router.Post("/api/v1/jobs", func(w http.ResponseWriter, r *http.Request) {
		if jobQueue == nil {
			writeError(w, http.StatusServiceUnavailable, "очередь задач не настроена")
			return
		}
		defer r.Body.Close()
		var req struct {
			ChatID    int64 `json:"chat_id"`
			ProfileID int64 `json:"profile_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.ChatID == 0 {
			writeError(w, http.StatusBadRequest, "chat_id is required")
			return
		}
		job := domain.RecommendationJob{
			ID:         uuid.NewString(),
			ProfileID:  req.ProfileID,
			ChatID:     req.ChatID,
			EnqueuedAt: time.Now().UTC(),
		}
		if err := jobQueue.Enqueue(r.Context(), job); err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		w.WriteHeader(http.StatusAccepted)
		writeJSON(w, map[string]string{"job_id": job.ID})
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("api: ошибка при остановке сервера")
		}
	}()

	if err := server.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("api: сервер остановился с ошибкой")
	}
}

// registerProfileRoutes подключает управление профилями получателей:
// регистрация чата, время ежедневной рассылки и часовой пояс.
func registerProfileRoutes(r chi.Router, svc *schedule.Service, profiles domain.ProfileRepo) {
	r.Route("/api/v1/profiles", func(r chi.Router) {
		r.Post("/", func(w http.ResponseWriter, req *http.Request) {
			defer req.Body.Close()
			var body struct {
				ChatID   int64  `json:"chat_id"`
				Timezone string `json:"timezone"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.ChatID == 0 {
				writeError(w, http.StatusBadRequest, "chat_id is required")
				return
			}
			if err := svc.UpdateTimezone(req.Context(), body.ChatID, body.Timezone); err != nil {
				if errors.Is(err, schedule.ErrInvalidTimezone) {
					writeError(w, http.StatusBadRequest, err.Error())
					return
				}
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			profile, err := profiles.GetByChatID(body.ChatID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			w.WriteHeader(http.StatusCreated)
			writeJSON(w, profile)
		})

		r.Put("/{chatID}/daily-time", func(w http.ResponseWriter, req *http.Request) {
			chatID, err := strconv.ParseInt(chi.URLParam(req, "chatID"), 10, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid chat id")
				return
			}
			defer req.Body.Close()
			var body struct {
				DailyTime string `json:"daily_time"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			local, err := time.Parse("15:04", body.DailyTime)
			if err != nil {
				writeError(w, http.StatusBadRequest, "daily_time must be HH:MM")
				return
			}
			if err := svc.UpdateDailyTime(req.Context(), chatID, local); err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})
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

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServiceError переводит ошибки конвейера в HTTP-статусы:
// отсутствующий сигнал — проблема данных, всё прочее — недоступность коллаборатора.
func writeServiceError(w http.ResponseWriter, err error) {
	var missing *domain.MissingSignalError
	if errors.As(err, &missing) {
		writeError(w, http.StatusUnprocessableEntity, missing.Error())
		return
	}
	writeError(w, http.StatusBadGateway, err.Error())
}
