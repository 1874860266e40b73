package mood

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"moodslots/internal/domain"
)

type stubSource struct {
	label string
	err   error
}

func (s *stubSource) Fetch(context.Context) (string, error) { return s.label, s.err }

func TestAggregate(t *testing.T) {
	moods, err := Aggregate(domain.MoodSignals{Environment: "Happy", Smartwatch: "RELAXED", Voice: "happy"})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(moods) != 2 {
		t.Fatalf("дубликаты должны схлопнуться, ожидали 2 настроения, получили %d", len(moods))
	}
	if !moods.Has("happy") || !moods.Has("relaxed") {
		t.Fatalf("ожидали happy и relaxed, получили %v", moods.Labels())
	}
}

func TestAggregateMissingVoice(t *testing.T) {
	_, err := Aggregate(domain.MoodSignals{Environment: "happy", Smartwatch: "relaxed"})
	if err == nil {
		t.Fatalf("ожидали ошибку отсутствующего сигнала")
	}
	var missing *domain.MissingSignalError
	if !errors.As(err, &missing) {
		t.Fatalf("ожидали MissingSignalError, получили %T", err)
	}
	if missing.Signal != domain.SignalVoice {
		t.Fatalf("ошибка должна называть voice_mood, получили %s", missing.Signal)
	}
}

func TestAggregateUnknownLabelPassesThrough(t *testing.T) {
	moods, err := Aggregate(domain.MoodSignals{Environment: "ps", Smartwatch: "neutral", Voice: "fear"})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if !moods.Has("ps") {
		t.Fatalf("словарь меток не валидируется, ps должен пройти насквозь")
	}
}

func TestServiceFetch(t *testing.T) {
	service := NewService(
		&stubSource{label: "Happy"},
		&stubSource{label: "stressed"},
		&stubSource{label: "neutral"},
		zerolog.Nop(),
	)

	signals, moods, err := service.Fetch(context.Background())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if signals.Environment != "Happy" {
		t.Fatalf("сырые метки должны сохраняться как есть, получили %q", signals.Environment)
	}
	if len(moods) != 3 {
		t.Fatalf("ожидали 3 настроения, получили %d", len(moods))
	}
}

func TestServiceFetchSourceError(t *testing.T) {
	service := NewService(
		&stubSource{label: "happy"},
		&stubSource{err: errors.New("timeout")},
		&stubSource{label: "neutral"},
		zerolog.Nop(),
	)

	_, _, err := service.Fetch(context.Background())
	if err == nil {
		t.Fatalf("ошибка источника должна прерывать весь запрос")
	}
}
