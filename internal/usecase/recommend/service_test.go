package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"moodslots/internal/domain"
	"moodslots/internal/usecase/mood"
)

type stubMoodSource struct{ label string }

func (s *stubMoodSource) Fetch(context.Context) (string, error) { return s.label, nil }

type stubCalendar struct {
	events  []domain.CalendarEvent
	dropped int
}

func (s *stubCalendar) Events(context.Context) ([]domain.CalendarEvent, int, error) {
	return s.events, s.dropped, nil
}

type stubCatalog struct {
	candidates []domain.Candidate
	skipped    int
}

func (s *stubCatalog) Candidates(context.Context) ([]domain.Candidate, int, error) {
	return s.candidates, s.skipped, nil
}

func TestServiceBuild(t *testing.T) {
	moodService := mood.NewService(
		&stubMoodSource{label: "happy"},
		&stubMoodSource{label: "relaxed"},
		&stubMoodSource{label: "happy"},
		zerolog.Nop(),
	)
	calendar := &stubCalendar{
		events: []domain.CalendarEvent{
			{Start: time.Date(2025, time.July, 1, 9, 0, 0, 0, ist), End: time.Date(2025, time.July, 1, 10, 0, 0, 0, ist)},
		},
		dropped: 1,
	}
	catalog := &stubCatalog{
		candidates: []domain.Candidate{
			{MovieID: "m1", Title: "Комедия", DurationMinutes: 90, Score: 0.91, MoodTags: domain.NewMoodSet("happy")},
			{MovieID: "m2", Title: "Драма", DurationMinutes: 120, Score: 0.85, MoodTags: domain.NewMoodSet("sad")},
		},
		skipped: 2,
	}

	service := NewService(moodService, calendar, catalog, testEngine(), nil, 0, zerolog.Nop()).
		WithClock(func() time.Time { return time.Date(2025, time.July, 1, 6, 0, 0, 0, ist) })

	rec, err := service.Build(context.Background())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}

	if rec.EnvironmentMood != "happy" || rec.SmartwatchMood != "relaxed" {
		t.Fatalf("сырые метки должны попадать в ответ")
	}
	if len(rec.FreeSlots) != 2 {
		t.Fatalf("ожидали 2 свободных слота, получили %d", len(rec.FreeSlots))
	}
	if len(rec.Windows) != 2 {
		t.Fatalf("ожидали 2 окна, получили %d", len(rec.Windows))
	}
	// Драма не совпадает по настроению и не должна попасть ни в одно окно.
	for _, window := range rec.Windows {
		for _, item := range window.Items {
			if item.MovieID == "m2" {
				t.Fatalf("кандидат без пересечения настроений попал в выдачу")
			}
		}
	}
	if rec.SkippedEvents != 1 {
		t.Fatalf("счётчик пропущенных событий должен включать отброшенные адаптером, получили %d", rec.SkippedEvents)
	}
	if rec.SkippedCandidates != 2 {
		t.Fatalf("ожидали 2 пропущенные строки каталога, получили %d", rec.SkippedCandidates)
	}
	if rec.TotalFree == "" {
		t.Fatalf("суммарное свободное время должно быть заполнено")
	}
}

func TestServiceBuildMissingSignal(t *testing.T) {
	moodService := mood.NewService(
		&stubMoodSource{label: "happy"},
		&stubMoodSource{label: "relaxed"},
		&stubMoodSource{label: ""},
		zerolog.Nop(),
	)

	service := NewService(moodService, &stubCalendar{}, &stubCatalog{}, testEngine(), nil, 0, zerolog.Nop())

	_, err := service.Build(context.Background())
	if err == nil {
		t.Fatalf("отсутствующий сигнал должен прерывать построение")
	}
}

func TestServiceBuildEmptyCalendar(t *testing.T) {
	moodService := mood.NewService(
		&stubMoodSource{label: "happy"},
		&stubMoodSource{label: "happy"},
		&stubMoodSource{label: "happy"},
		zerolog.Nop(),
	)

	service := NewService(moodService, &stubCalendar{}, &stubCatalog{}, testEngine(), nil, 0, zerolog.Nop())

	rec, err := service.Build(context.Background())
	if err != nil {
		t.Fatalf("пустой календарь — не ошибка: %v", err)
	}
	if len(rec.FreeSlots) != 0 || len(rec.Windows) != 0 {
		t.Fatalf("ожидали пустые слоты и окна")
	}
}
