package recommend

import (
	"testing"

	"moodslots/internal/domain"
)

func TestFilterAndRankByMood(t *testing.T) {
	catalog := []domain.Candidate{
		{MovieID: "m1", Title: "Грустный фильм", Score: 0.9, MoodTags: domain.NewMoodSet("sad")},
		{MovieID: "m2", Title: "Комедия", Score: 0.5, MoodTags: domain.NewMoodSet("happy", "relaxed")},
	}

	kept := FilterAndRank(catalog, domain.NewMoodSet("happy"))
	if len(kept) != 1 {
		t.Fatalf("ожидали одного кандидата, получили %d", len(kept))
	}
	if kept[0].MovieID != "m2" {
		t.Fatalf("должен остаться кандидат с пересечением тегов, получили %s", kept[0].MovieID)
	}
}

func TestFilterAndRankOrdersByScore(t *testing.T) {
	catalog := []domain.Candidate{
		{MovieID: "m1", Score: 0.3, MoodTags: domain.NewMoodSet("happy")},
		{MovieID: "m2", Score: 0.9, MoodTags: domain.NewMoodSet("happy")},
		{MovieID: "m3", Score: 0.9, MoodTags: domain.NewMoodSet("happy")},
	}

	kept := FilterAndRank(catalog, domain.NewMoodSet("happy"))
	if kept[0].MovieID != "m2" || kept[1].MovieID != "m3" || kept[2].MovieID != "m1" {
		t.Fatalf("ожидали порядок m2, m3, m1 (равные оценки сохраняют порядок каталога)")
	}
}

func TestFilterAndRankEmptyMoods(t *testing.T) {
	catalog := []domain.Candidate{
		{MovieID: "m1", Score: 0.9, MoodTags: domain.NewMoodSet("happy")},
	}

	if kept := FilterAndRank(catalog, domain.MoodSet{}); len(kept) != 0 {
		t.Fatalf("без сигнала настроения ничего не отбирается, получили %d", len(kept))
	}
}
