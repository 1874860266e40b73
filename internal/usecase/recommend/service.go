package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"moodslots/internal/domain"
	"moodslots/internal/infra/metrics"
	"moodslots/internal/usecase/availability"
	"moodslots/internal/usecase/mood"
)

const cacheKey = "recommendation:latest"

// Service реализует полный конвейер рекомендаций: настроения и календарь
// запрашиваются параллельно, затем считаются свободные слоты, фильтруется
// каталог и выполняется упаковка.
type Service struct {
	moods    *mood.Service
	calendar domain.CalendarSource
	catalog  domain.Catalog
	engine   *availability.Engine
	cache    domain.Cache
	cacheTTL time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

var _ domain.Recommender = (*Service)(nil)

// NewService создаёт сервис рекомендаций.
func NewService(moods *mood.Service, calendar domain.CalendarSource, catalog domain.Catalog, engine *availability.Engine, cache domain.Cache, cacheTTL time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		moods:    moods,
		calendar: calendar,
		catalog:  catalog,
		engine:   engine,
		cache:    cache,
		cacheTTL: cacheTTL,
		now:      time.Now,
		log:      logger,
	}
}

// WithClock подменяет источник текущего времени. Нужен тестам,
// фильтрующим прошедшие слоты по фиксированному моменту.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Build выполняет один запуск конвейера над свежими снимками входных данных.
func (s *Service) Build(ctx context.Context) (domain.Recommendation, error) {
	metrics.RecommendationRequests.Inc()
	started := time.Now()
	defer func() { metrics.RecommendationBuildSeconds.Observe(time.Since(started).Seconds()) }()

	if cached, ok := s.fromCache(); ok {
		return cached, nil
	}

	var (
		wg            sync.WaitGroup
		signals       domain.MoodSignals
		moods         domain.MoodSet
		moodErr       error
		events        []domain.CalendarEvent
		droppedEvents int
		calErr        error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		signals, moods, moodErr = s.moods.Fetch(ctx)
	}()
	go func() {
		defer wg.Done()
		events, droppedEvents, calErr = s.calendar.Events(ctx)
	}()
	wg.Wait()

	if moodErr != nil {
		return domain.Recommendation{}, moodErr
	}
	if calErr != nil {
		return domain.Recommendation{}, fmt.Errorf("события календаря: %w", calErr)
	}

	slots, skippedEvents := s.engine.ComputeFreeSlots(events)
	skippedEvents += droppedEvents

	catalogRows, skippedRows, err := s.catalog.Candidates(ctx)
	if err != nil {
		return domain.Recommendation{}, fmt.Errorf("каталог кандидатов: %w", err)
	}

	ranked := FilterAndRank(catalogRows, moods)
	windows := Pack(s.engine, ranked, slots, s.now())

	totalFree := 0.0
	for _, slot := range slots {
		totalFree += slot.DurationMinutes
	}

	rec := domain.Recommendation{
		EnvironmentMood:   signals.Environment,
		SmartwatchMood:    signals.Smartwatch,
		VoiceMood:         signals.Voice,
		FreeSlots:         s.engine.Views(slots),
		TotalFree:         availability.HumanMinutes(totalFree),
		Windows:           windows,
		SkippedEvents:     skippedEvents,
		SkippedCandidates: skippedRows,
		GeneratedAt:       s.now().UTC(),
	}

	s.toCache(rec)
	return rec, nil
}

func (s *Service) fromCache() (domain.Recommendation, bool) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return domain.Recommendation{}, false
	}
	raw, err := s.cache.Get(cacheKey)
	if err != nil || len(raw) == 0 {
		return domain.Recommendation{}, false
	}
	var rec domain.Recommendation
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.log.Warn().Err(err).Msg("recommend: повреждённый кэш, пересчитываем")
		return domain.Recommendation{}, false
	}
	return rec, true
}

func (s *Service) toCache(rec domain.Recommendation) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := s.cache.Set(cacheKey, raw, s.cacheTTL); err != nil {
		s.log.Warn().Err(err).Msg("recommend: не удалось сохранить кэш")
	}
}
