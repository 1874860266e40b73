package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"moodslots/internal/domain"
	"moodslots/internal/infra/metrics"
)

const defaultTimeout = 15 * time.Second

// HTTPSource получает события у календарного коллаборатора.
// Ответ ожидается в форме {"events": [{summary, start, end, location, description}]}.
type HTTPSource struct {
	http *http.Client
	url  string
	log  zerolog.Logger
}

var _ domain.CalendarSource = (*HTTPSource)(nil)

// NewHTTPSource создаёт источник событий.
func NewHTTPSource(url string, timeout time.Duration, logger zerolog.Logger) *HTTPSource {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPSource{http: &http.Client{Timeout: timeout}, url: url, log: logger}
}

type rawEvent struct {
	Summary     string `json:"summary"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// Events возвращает разобранные события и число отброшенных записей.
// Одна некорректная запись не прерывает выборку.
func (s *HTTPSource) Events(ctx context.Context) (events []domain.CalendarEvent, dropped int, err error) {
	started := time.Now()
	defer func() { metrics.ObserveNetworkRequest("calendar", "events", s.url, started, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("построение запроса: %w", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("запрос календаря: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("календарь вернул статус %d", resp.StatusCode)
	}

	var payload struct {
		Events []rawEvent `json:"events"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, 0, fmt.Errorf("разбор ответа календаря: %w", err)
	}

	events = make([]domain.CalendarEvent, 0, len(payload.Events))
	for _, raw := range payload.Events {
		event, perr := convertEvent(raw)
		if perr != nil {
			dropped++
			metrics.SkippedEvents.Inc()
			s.log.Warn().Err(perr).Str("summary", raw.Summary).Msg("calendar: пропущена некорректная запись")
			continue
		}
		events = append(events, event)
	}
	return events, dropped, nil
}

func convertEvent(raw rawEvent) (domain.CalendarEvent, error) {
	if raw.Start == "" || raw.End == "" {
		return domain.CalendarEvent{}, &domain.MalformedRecordError{Kind: "event", Reason: "нет start или end"}
	}
	start, err := ParseTimestamp(raw.Start)
	if err != nil {
		return domain.CalendarEvent{}, &domain.MalformedRecordError{Kind: "event", Reason: err.Error()}
	}
	end, err := ParseTimestamp(raw.End)
	if err != nil {
		return domain.CalendarEvent{}, &domain.MalformedRecordError{Kind: "event", Reason: err.Error()}
	}
	return domain.CalendarEvent{
		Summary:     raw.Summary,
		Start:       start,
		End:         end,
		Location:    raw.Location,
		Description: raw.Description,
	}, nil
}
