package notify

import (
	"fmt"
	"html"
	"strings"

	"moodslots/internal/domain"
	"moodslots/internal/usecase/availability"
)

// FormatRecommendation формирует HTML-представление подборки для отправки получателю.
func FormatRecommendation(rec domain.Recommendation) string {
	var sections []string

	moods := strings.Join(domain.NewMoodSet(rec.EnvironmentMood, rec.SmartwatchMood, rec.VoiceMood).Labels(), ", ")
	header := "🎬 <b>Подборка под настроение</b>"
	if moods != "" {
		header += "\nНастроения: " + escapeHTML(moods)
	}
	if rec.TotalFree != "" {
		header += "\nСвободно всего: " + escapeHTML(rec.TotalFree)
	}
	sections = append(sections, header)

	if len(rec.Windows) == 0 {
		sections = append(sections, "Свободных окон впереди нет.")
		return strings.TrimSpace(strings.Join(sections, "\n\n"))
	}

	for _, window := range rec.Windows {
		var builder strings.Builder
		builder.WriteString(fmt.Sprintf("🕒 <b>Окно %d</b> — %s (%s)",
			window.SlotID,
			escapeHTML(window.StartTime),
			escapeHTML(availability.HumanMinutes(float64(window.FreeMinutes)))))
		if len(window.Items) == 0 {
			builder.WriteString("\nНичего подходящего по длительности.")
		}
		for _, item := range window.Items {
			builder.WriteString(fmt.Sprintf("\n• %s (%s, %.2f)",
				escapeHTML(item.Title),
				escapeHTML(availability.HumanMinutes(float64(item.DurationMinutes))),
				item.Score))
		}
		sections = append(sections, builder.String())
	}

	return strings.TrimSpace(strings.Join(sections, "\n\n"))
}

func escapeHTML(s string) string {
	return html.EscapeString(s)
}
