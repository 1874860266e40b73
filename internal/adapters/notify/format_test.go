package notify

import (
	"strings"
	"testing"

	"moodslots/internal/domain"
)

func TestFormatRecommendation(t *testing.T) {
	rec := domain.Recommendation{
		EnvironmentMood: "Happy",
		SmartwatchMood:  "relaxed",
		VoiceMood:       "happy",
		TotalFree:       "5h 20m",
		Windows: []domain.PackedWindow{
			{
				SlotID:      1,
				StartTime:   "2025-07-01T10:00:00.000+05:30",
				EndTime:     "2025-07-01T13:00:00.999+05:30",
				FreeMinutes: 180,
				ItemCount:   1,
				Items: []domain.PackedItem{
					{ID: 1, MovieID: "M001", Title: "Комедия <вечера>", DurationMinutes: 95, Score: 0.91},
				},
			},
			{SlotID: 2, StartTime: "2025-07-01T20:00:00.000+05:30", FreeMinutes: 30, Items: []domain.PackedItem{}},
		},
	}

	text := FormatRecommendation(rec)
	if !strings.Contains(text, "happy, relaxed") {
		t.Fatalf("настроения должны схлопываться и сортироваться: %s", text)
	}
	if !strings.Contains(text, "Окно 1") || !strings.Contains(text, "3h 0m") {
		t.Fatalf("окно должно содержать номер и длительность: %s", text)
	}
	if !strings.Contains(text, "Комедия &lt;вечера&gt;") {
		t.Fatalf("HTML в названиях должен экранироваться: %s", text)
	}
	if !strings.Contains(text, "Ничего подходящего по длительности.") {
		t.Fatalf("пустое окно должно отображаться явно: %s", text)
	}
}

func TestFormatRecommendationNoWindows(t *testing.T) {
	text := FormatRecommendation(domain.Recommendation{EnvironmentMood: "sad", SmartwatchMood: "sad", VoiceMood: "sad"})
	if !strings.Contains(text, "Свободных окон впереди нет.") {
		t.Fatalf("ожидали явное сообщение об отсутствии окон: %s", text)
	}
}

func TestSplitMessageShort(t *testing.T) {
	parts := SplitMessage("короткий текст")
	if len(parts) != 1 {
		t.Fatalf("короткий текст не разбивается, получили %d частей", len(parts))
	}
}

func TestSplitMessageLong(t *testing.T) {
	line := strings.Repeat("а", 100)
	text := strings.Repeat(line+"\n", 60)
	parts := SplitMessage(text)
	if len(parts) < 2 {
		t.Fatalf("длинный текст должен разбиваться на части")
	}
	for _, part := range parts {
		if len([]rune(part)) > messageLimit {
			t.Fatalf("часть превышает лимит Telegram: %d", len([]rune(part)))
		}
	}
}
