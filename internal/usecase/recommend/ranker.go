package recommend

import (
	"sort"

	"moodslots/internal/domain"
)

// FilterAndRank отбирает кандидатов, чьи теги пересекаются с активными
// настроениями, и сортирует их по убыванию оценки. Пустое множество
// настроений не отбирает ничего: без сигнала рекомендации не строятся.
// Фильтрации по длительности здесь нет — это работа упаковщика.
func FilterAndRank(catalog []domain.Candidate, moods domain.MoodSet) []domain.Candidate {
	if len(moods) == 0 {
		return nil
	}
	kept := make([]domain.Candidate, 0, len(catalog))
	for _, candidate := range catalog {
		if candidate.MoodTags.Intersects(moods) {
			kept = append(kept, candidate)
		}
	}
	// Стабильная сортировка: при равных оценках сохраняется порядок каталога.
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score > kept[j].Score })
	return kept
}
