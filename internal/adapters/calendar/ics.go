package calendar

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/rs/zerolog"

	"moodslots/internal/domain"
	"moodslots/internal/infra/metrics"
)

// ICSSource читает события из iCalendar-ленты. Повторяющиеся события
// не разворачиваются: берутся только одиночные экземпляры.
type ICSSource struct {
	http *http.Client
	url  string
	log  zerolog.Logger
}

var _ domain.CalendarSource = (*ICSSource)(nil)

// NewICSSource создаёт источник по адресу ленты.
func NewICSSource(url string, timeout time.Duration, logger zerolog.Logger) *ICSSource {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &ICSSource{http: &http.Client{Timeout: timeout}, url: url, log: logger}
}

// Events загружает и разбирает ленту. Некорректные VEVENT пропускаются.
func (s *ICSSource) Events(ctx context.Context) (events []domain.CalendarEvent, dropped int, err error) {
	started := time.Now()
	defer func() { metrics.ObserveNetworkRequest("calendar", "ics", s.url, started, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("построение запроса: %w", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("загрузка ICS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("лента вернула статус %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("чтение ленты: %w", err)
	}
	return s.parse(body)
}

func (s *ICSSource) parse(body []byte) ([]domain.CalendarEvent, int, error) {
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("разбор ICS: %w", err)
	}

	events := make([]domain.CalendarEvent, 0)
	dropped := 0
	for _, ve := range cal.Events() {
		start, serr := ve.GetStartAt()
		end, eerr := ve.GetEndAt()
		if serr != nil || eerr != nil || !end.After(start) {
			dropped++
			metrics.SkippedEvents.Inc()
			s.log.Warn().Msg("calendar: пропущен некорректный VEVENT")
			continue
		}
		event := domain.CalendarEvent{Start: start, End: end}
		if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
			event.Summary = p.Value
		}
		if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
			event.Location = p.Value
		}
		if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
			event.Description = p.Value
		}
		events = append(events, event)
	}
	return events, dropped, nil
}
