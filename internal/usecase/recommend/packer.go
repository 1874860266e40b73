package recommend

import (
	"math"
	"sort"
	"strings"
	"time"

	"moodslots/internal/domain"
	"moodslots/internal/usecase/availability"
)

// Pack раскладывает ранжированных кандидатов по будущим свободным слотам.
// Жадная упаковка без оптимизации: в слот попадает каждый кандидат,
// чья длительность помещается в свободные минуты, в порядке ранга.
// Идентификаторы элементов сквозные по всем окнам одного запуска.
func Pack(engine *availability.Engine, ranked []domain.Candidate, slots []domain.FreeSlot, now time.Time) []domain.PackedWindow {
	future := make([]domain.FreeSlot, 0, len(slots))
	for _, slot := range slots {
		if slot.End.After(now) {
			future = append(future, slot)
		}
	}
	// Слоты могли пройти через границу сериализации, поэтому порядок
	// восстанавливается, а не предполагается.
	sort.SliceStable(future, func(i, j int) bool { return future[i].Start.Before(future[j].Start) })

	windows := make([]domain.PackedWindow, 0, len(future))
	nextID := 1
	for idx, slot := range future {
		freeMinutes := availability.WholeMinutes(slot.DurationMinutes)
		items := make([]domain.PackedItem, 0)
		for _, candidate := range ranked {
			if candidate.DurationMinutes > freeMinutes {
				continue
			}
			if strings.TrimSpace(candidate.Title) == "" {
				continue
			}
			items = append(items, domain.PackedItem{
				ID:              nextID,
				MovieID:         candidate.MovieID,
				Title:           candidate.Title,
				DurationMinutes: candidate.DurationMinutes,
				Score:           math.Round(candidate.Score*100) / 100,
			})
			nextID++
		}
		// Слот без подходящих кандидатов — валидное окно с пустым списком.
		windows = append(windows, domain.PackedWindow{
			SlotID:      idx + 1,
			StartTime:   engine.FormatStart(slot.Start),
			EndTime:     engine.FormatEnd(slot.End),
			FreeMinutes: freeMinutes,
			ItemCount:   len(items),
			Items:       items,
		})
	}
	return windows
}
