package availability

import (
	"fmt"
	"math"
)

// HumanMinutes форматирует длительность в минутах в вид "2h 5m".
// Отрицательные значения обнуляются; 60 минут переносятся в часы.
func HumanMinutes(mins float64) string {
	hours, minutes := splitMinutes(mins)
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// WholeMinutes округляет длительность до целых минут тем же правилом,
// что и HumanMinutes, чтобы строковое и числовое представления совпадали.
func WholeMinutes(mins float64) int {
	hours, minutes := splitMinutes(mins)
	return hours*60 + minutes
}

func splitMinutes(mins float64) (int, int) {
	if mins < 0 {
		mins = 0
	}
	hours := int(mins / 60)
	minutes := int(math.Round(math.Mod(mins, 60)))
	if minutes == 60 {
		hours++
		minutes = 0
	}
	return hours, minutes
}
