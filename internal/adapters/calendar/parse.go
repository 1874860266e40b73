package calendar

import (
	"fmt"
	"time"
)

// Форматы меток времени календарных коллабораторов: ISO-8601 с зоной
// ('Z' или смещение), без зоны (трактуется как UTC) и только дата
// (события на весь день).
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp разбирает метку времени события. Наивные метки считаются UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("нераспознанная метка времени %q", raw)
}
