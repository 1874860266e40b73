package mood

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"moodslots/internal/domain"
	"moodslots/internal/infra/metrics"
)

// Aggregate сводит метки трёх источников в одно множество настроений.
// Любой отсутствующий сигнал фатален: частичное множество не строится,
// чтобы не искажать фильтр релевантности.
func Aggregate(signals domain.MoodSignals) (domain.MoodSet, error) {
	required := []struct {
		name  string
		value string
	}{
		{domain.SignalEnvironment, signals.Environment},
		{domain.SignalSmartwatch, signals.Smartwatch},
		{domain.SignalVoice, signals.Voice},
	}
	for _, signal := range required {
		if strings.TrimSpace(signal.value) == "" {
			return nil, &domain.MissingSignalError{Signal: signal.name}
		}
	}
	return domain.NewMoodSet(signals.Environment, signals.Smartwatch, signals.Voice), nil
}

// Service запрашивает метки настроения у внешних классификаторов.
type Service struct {
	environment domain.MoodSource
	smartwatch  domain.MoodSource
	voice       domain.MoodSource
	log         zerolog.Logger
}

// NewService создаёт сервис настроений.
func NewService(environment, smartwatch, voice domain.MoodSource, logger zerolog.Logger) *Service {
	return &Service{environment: environment, smartwatch: smartwatch, voice: voice, log: logger}
}

// Fetch опрашивает три источника параллельно и агрегирует результат.
// Ошибка любого источника прерывает весь запрос.
func (s *Service) Fetch(ctx context.Context) (domain.MoodSignals, domain.MoodSet, error) {
	type result struct {
		signal string
		label  string
		err    error
	}

	sources := []struct {
		signal string
		source domain.MoodSource
	}{
		{domain.SignalEnvironment, s.environment},
		{domain.SignalSmartwatch, s.smartwatch},
		{domain.SignalVoice, s.voice},
	}

	results := make([]result, len(sources))
	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, signal string, source domain.MoodSource) {
			defer wg.Done()
			if source == nil {
				results[i] = result{signal: signal}
				return
			}
			label, err := source.Fetch(ctx)
			results[i] = result{signal: signal, label: label, err: err}
		}(i, src.signal, src.source)
	}
	wg.Wait()

	var signals domain.MoodSignals
	for _, res := range results {
		if res.err != nil {
			metrics.MoodFetchErrors.WithLabelValues(res.signal).Inc()
			s.log.Error().Err(res.err).Str("signal", res.signal).Msg("mood: источник недоступен")
			return domain.MoodSignals{}, nil, fmt.Errorf("сигнал %s: %w", res.signal, res.err)
		}
		switch res.signal {
		case domain.SignalEnvironment:
			signals.Environment = res.label
		case domain.SignalSmartwatch:
			signals.Smartwatch = res.label
		case domain.SignalVoice:
			signals.Voice = res.label
		}
	}

	moods, err := Aggregate(signals)
	if err != nil {
		return domain.MoodSignals{}, nil, err
	}
	return signals, moods, nil
}
