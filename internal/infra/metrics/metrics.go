package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	SlotComputeSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "slot_compute_seconds",
		Help:    "Время расчёта свободных слотов",
		Buckets: prometheus.DefBuckets,
	})
	SkippedEvents = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "skipped_events_total",
		Help: "Некорректные события календаря, пропущенные при расчёте",
	})
	SkippedCandidates = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "skipped_candidates_total",
		Help: "Некорректные строки каталога, пропущенные при разборе",
	})
	MoodFetchErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mood_fetch_errors_total",
		Help: "Ошибки получения сигналов настроения",
	}, []string{"signal"})
	RecommendationRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recommendation_requests_total",
		Help: "Общее количество запусков конвейера рекомендаций",
	})
	RecommendationBuildSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "recommendation_build_seconds",
		Help:    "Время построения рекомендаций",
		Buckets: prometheus.DefBuckets,
	})
	DeliveryErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "delivery_errors_total",
		Help: "Ошибки доставки рекомендаций",
	})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: prometheus.DefBuckets,
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		SlotComputeSeconds,
		SkippedEvents,
		SkippedCandidates,
		MoodFetchErrors,
		RecommendationRequests,
		RecommendationBuildSeconds,
		DeliveryErrors,
		NetworkRequestDuration,
		NetworkRequestTotal,
	)
}

// StartServer запускает HTTP сервер с эндпоинтом /metrics.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	shutdownCtx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-ctx.Done():
		case <-shutdownCtx.Done():
		}
		shutdownTimeout, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer timeoutCancel()
		if err := srv.Shutdown(shutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server stopped")
		}
		cancel()
	}()
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}
