package availability

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"moodslots/internal/domain"
	"moodslots/internal/infra/metrics"
)

// Пороговая длительность: промежутки короче минуты считаются шумом.
const minSlotMinutes = 1.0

// Значения окна бодрствования по умолчанию (07:00–23:59:59.999).
const (
	DefaultZoneName  = "Asia/Kolkata"
	DefaultWakeStart = 7 * time.Hour
	DefaultWakeEnd   = 23*time.Hour + 59*time.Minute + 59*time.Second + 999*time.Millisecond
)

// Config задаёт опорный часовой пояс и границы окна бодрствования
// как смещения от местной полуночи.
type Config struct {
	Zone      *time.Location
	WakeStart time.Duration
	WakeEnd   time.Duration
}

// Engine вычисляет свободные промежутки календаря по дням.
type Engine struct {
	cfg Config
	log zerolog.Logger
}

// NewEngine создаёт движок. Пустые поля конфигурации заменяются значениями по умолчанию.
func NewEngine(cfg Config, logger zerolog.Logger) *Engine {
	if cfg.Zone == nil {
		cfg.Zone = time.FixedZone("IST", 5*3600+1800)
	}
	if cfg.WakeStart == 0 {
		cfg.WakeStart = DefaultWakeStart
	}
	if cfg.WakeEnd == 0 {
		cfg.WakeEnd = DefaultWakeEnd
	}
	return &Engine{cfg: cfg, log: logger}
}

// ComputeFreeSlots возвращает свободные промежутки в хронологическом порядке
// вместе с числом пропущенных некорректных событий. Пустой календарь — не
// ошибка: результатом будет пустой список.
func (e *Engine) ComputeFreeSlots(events []domain.CalendarEvent) ([]domain.FreeSlot, int) {
	started := time.Now()
	defer func() { metrics.SlotComputeSeconds.Observe(time.Since(started).Seconds()) }()

	valid, skipped := e.sanitize(events)
	if len(valid) == 0 {
		return nil, skipped
	}

	// Сортировка стабильная: события с одинаковым началом сохраняют исходный
	// относительный порядок, вторичный ключ не определён.
	sort.SliceStable(valid, func(i, j int) bool { return valid[i].Start.Before(valid[j].Start) })

	// Диапазон дат берётся из календарных дат событий как есть,
	// без приведения к опорному поясу.
	firstDay := dateOf(valid[0].Start)
	lastDay := dateOf(valid[0].End)
	for _, ev := range valid[1:] {
		if d := dateOf(ev.End); d.After(lastDay) {
			lastDay = d
		}
	}

	var slots []domain.FreeSlot
	for day := firstDay; !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		dayStart := e.atOffset(day, e.cfg.WakeStart).In(time.UTC)
		dayEnd := e.atOffset(day, e.cfg.WakeEnd).In(time.UTC)

		cursor := dayStart
		for _, ev := range valid {
			if !ev.Start.Before(dayEnd) || !ev.End.After(dayStart) {
				continue
			}
			// Многодневное событие зажимается в границы каждого дня отдельно.
			busyStart := maxTime(ev.Start.In(time.UTC), dayStart)
			busyEnd := minTime(ev.End.In(time.UTC), dayEnd)
			if busyStart.After(cursor) {
				slots = appendSlot(slots, cursor, busyStart)
			}
			// Полностью перекрытые события схлопываются монотонным продвижением курсора.
			if busyEnd.After(cursor) {
				cursor = busyEnd
			}
		}
		if cursor.Before(dayEnd) {
			slots = appendSlot(slots, cursor, dayEnd)
		}
	}

	return slots, skipped
}

// FormatStart форматирует начало слота в опорном поясе с миллисекундами .000.
func (e *Engine) FormatStart(t time.Time) string {
	return t.Truncate(time.Second).In(e.cfg.Zone).Format(isoMillis)
}

// FormatEnd форматирует конец слота в опорном поясе с миллисекундами .999.
func (e *Engine) FormatEnd(t time.Time) string {
	return t.Truncate(time.Second).Add(999 * time.Millisecond).In(e.cfg.Zone).Format(isoMillis)
}

// Views переводит слоты в отображаемый вид с человекочитаемой длительностью.
func (e *Engine) Views(slots []domain.FreeSlot) []domain.FreeSlotView {
	views := make([]domain.FreeSlotView, 0, len(slots))
	for _, slot := range slots {
		views = append(views, domain.FreeSlotView{
			Start:    e.FormatStart(slot.Start),
			End:      e.FormatEnd(slot.End),
			Duration: HumanMinutes(slot.DurationMinutes),
		})
	}
	return views
}

// Zone возвращает опорный часовой пояс движка.
func (e *Engine) Zone() *time.Location {
	return e.cfg.Zone
}

const isoMillis = "2006-01-02T15:04:05.000-07:00"

func (e *Engine) sanitize(events []domain.CalendarEvent) ([]domain.CalendarEvent, int) {
	valid := make([]domain.CalendarEvent, 0, len(events))
	skipped := 0
	for _, ev := range events {
		if ev.Start.IsZero() || ev.End.IsZero() || !ev.End.After(ev.Start) {
			skipped++
			e.log.Warn().
				Str("summary", ev.Summary).
				Time("start", ev.Start).
				Time("end", ev.End).
				Msg("availability: пропущено некорректное событие")
			continue
		}
		valid = append(valid, ev)
	}
	if skipped > 0 {
		metrics.SkippedEvents.Add(float64(skipped))
	}
	return valid, skipped
}

// atOffset строит момент "дата + смещение от полуночи" по стеночным часам опорного пояса.
func (e *Engine) atOffset(day time.Time, offset time.Duration) time.Time {
	y, m, d := day.Date()
	hours := int(offset / time.Hour)
	minutes := int(offset % time.Hour / time.Minute)
	seconds := int(offset % time.Minute / time.Second)
	nanos := int(offset % time.Second)
	return time.Date(y, m, d, hours, minutes, seconds, nanos, e.cfg.Zone)
}

// dateOf нормализует календарную дату момента в его собственном поясе.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func appendSlot(slots []domain.FreeSlot, start, end time.Time) []domain.FreeSlot {
	diff := end.Sub(start).Minutes()
	if diff <= minSlotMinutes {
		return slots
	}
	return append(slots, domain.FreeSlot{Start: start, End: end, DurationMinutes: diff})
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
