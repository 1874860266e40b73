package availability

import (
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"moodslots/internal/domain"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func newTestEngine() *Engine {
	return NewEngine(Config{Zone: ist}, zerolog.Nop())
}

func istTime(day, hour, minute int) time.Time {
	return time.Date(2025, time.July, day, hour, minute, 0, 0, ist)
}

func TestComputeFreeSlotsEmpty(t *testing.T) {
	engine := newTestEngine()
	slots, skipped := engine.ComputeFreeSlots(nil)
	if len(slots) != 0 {
		t.Fatalf("ожидали пустой список, получили %d слотов", len(slots))
	}
	if skipped != 0 {
		t.Fatalf("не ожидали пропущенных событий, получили %d", skipped)
	}
}

func TestComputeFreeSlotsSingleEvent(t *testing.T) {
	engine := newTestEngine()
	events := []domain.CalendarEvent{
		{Summary: "Встреча", Start: istTime(1, 9, 0), End: istTime(1, 10, 0)},
	}

	slots, skipped := engine.ComputeFreeSlots(events)
	if skipped != 0 {
		t.Fatalf("не ожидали пропущенных событий")
	}
	if len(slots) != 2 {
		t.Fatalf("ожидали 2 слота, получили %d", len(slots))
	}

	if slots[0].DurationMinutes != 120 {
		t.Fatalf("ожидали 120 минут до встречи, получили %v", slots[0].DurationMinutes)
	}
	if got := engine.FormatStart(slots[0].Start); got != "2025-07-01T07:00:00.000+05:30" {
		t.Fatalf("неожиданное начало первого слота: %s", got)
	}
	if got := engine.FormatEnd(slots[0].End); got != "2025-07-01T09:00:00.999+05:30" {
		t.Fatalf("неожиданный конец первого слота: %s", got)
	}

	if got := engine.FormatStart(slots[1].Start); got != "2025-07-01T10:00:00.000+05:30" {
		t.Fatalf("неожиданное начало второго слота: %s", got)
	}
	if got := engine.FormatEnd(slots[1].End); got != "2025-07-01T23:59:59.999+05:30" {
		t.Fatalf("неожиданный конец второго слота: %s", got)
	}
	if slots[1].DurationMinutes <= 839 || slots[1].DurationMinutes >= 840.1 {
		t.Fatalf("ожидали ~839 минут до конца дня, получили %v", slots[1].DurationMinutes)
	}
}

func TestComputeFreeSlotsUTCEvents(t *testing.T) {
	engine := newTestEngine()
	// 03:30–04:30 UTC — это 09:00–10:00 IST.
	events := []domain.CalendarEvent{
		{Start: time.Date(2025, time.July, 1, 3, 30, 0, 0, time.UTC), End: time.Date(2025, time.July, 1, 4, 30, 0, 0, time.UTC)},
	}

	slots, _ := engine.ComputeFreeSlots(events)
	if len(slots) != 2 {
		t.Fatalf("ожидали 2 слота, получили %d", len(slots))
	}
	if got := engine.FormatEnd(slots[0].End); got != "2025-07-01T09:00:00.999+05:30" {
		t.Fatalf("неожиданный конец первого слота: %s", got)
	}
}

func TestComputeFreeSlotsOverlappingEvents(t *testing.T) {
	engine := newTestEngine()
	events := []domain.CalendarEvent{
		{Start: istTime(1, 9, 0), End: istTime(1, 10, 0)},
		{Start: istTime(1, 9, 30), End: istTime(1, 11, 0)},
	}

	slots, _ := engine.ComputeFreeSlots(events)
	if len(slots) != 2 {
		t.Fatalf("ожидали 2 слота, получили %d", len(slots))
	}
	if got := engine.FormatEnd(slots[0].End); got != "2025-07-01T09:00:00.999+05:30" {
		t.Fatalf("перекрывающиеся события должны схлопнуться в один занятый интервал: %s", got)
	}
	if got := engine.FormatStart(slots[1].Start); got != "2025-07-01T11:00:00.000+05:30" {
		t.Fatalf("второй слот должен начинаться после конца занятого интервала: %s", got)
	}
}

func TestComputeFreeSlotsFullDayBusy(t *testing.T) {
	engine := newTestEngine()
	events := []domain.CalendarEvent{
		{Start: istTime(1, 6, 0), End: time.Date(2025, time.July, 1, 23, 59, 59, 0, ist)},
	}

	slots, _ := engine.ComputeFreeSlots(events)
	if len(slots) != 0 {
		t.Fatalf("день полностью занят, ожидали 0 слотов, получили %d", len(slots))
	}
}

func TestComputeFreeSlotsMultiDayEvent(t *testing.T) {
	engine := newTestEngine()
	events := []domain.CalendarEvent{
		{Start: istTime(1, 20, 0), End: istTime(3, 9, 0)},
	}

	slots, _ := engine.ComputeFreeSlots(events)
	if len(slots) != 2 {
		t.Fatalf("ожидали по слоту в первый и третий день, получили %d", len(slots))
	}
	if slots[0].DurationMinutes != 13*60 {
		t.Fatalf("ожидали 780 минут в первый день, получили %v", slots[0].DurationMinutes)
	}
	if got := engine.FormatStart(slots[1].Start); got != "2025-07-03T09:00:00.000+05:30" {
		t.Fatalf("слот третьего дня должен начинаться после конца события: %s", got)
	}
}

func TestComputeFreeSlotsMinuteThreshold(t *testing.T) {
	engine := newTestEngine()
	events := []domain.CalendarEvent{
		{Start: istTime(1, 7, 0), End: istTime(1, 10, 0)},
		// Разрыв ровно в одну минуту — отбрасывается как шум.
		{Start: istTime(1, 10, 1), End: time.Date(2025, time.July, 1, 23, 59, 59, 0, ist)},
	}

	slots, _ := engine.ComputeFreeSlots(events)
	if len(slots) != 0 {
		t.Fatalf("минутный разрыв должен отбрасываться, получили %d слотов", len(slots))
	}
}

func TestComputeFreeSlotsSkipsMalformed(t *testing.T) {
	engine := newTestEngine()
	events := []domain.CalendarEvent{
		{Start: istTime(1, 9, 0)}, // нет конца
		{Start: istTime(1, 12, 0), End: istTime(1, 11, 0)}, // конец раньше начала
		{Start: istTime(1, 9, 0), End: istTime(1, 10, 0)},
	}

	slots, skipped := engine.ComputeFreeSlots(events)
	if skipped != 2 {
		t.Fatalf("ожидали 2 пропущенных события, получили %d", skipped)
	}
	if len(slots) != 2 {
		t.Fatalf("одно корректное событие должно дать 2 слота, получили %d", len(slots))
	}
}

func TestComputeFreeSlotsIdempotent(t *testing.T) {
	engine := newTestEngine()
	events := []domain.CalendarEvent{
		{Start: istTime(1, 9, 0), End: istTime(1, 10, 0)},
		{Start: istTime(2, 14, 0), End: istTime(2, 16, 30)},
	}

	first, _ := engine.ComputeFreeSlots(events)
	second, _ := engine.ComputeFreeSlots(events)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("повторный расчёт должен давать идентичный результат")
	}
}
