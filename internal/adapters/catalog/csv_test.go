package catalog

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

const sampleCSV = `movie_id,title,duration_minutes,ranking_score,mood
M001,Комедия вечера,95.0,0.91,"happy, relaxed"
M002,Тихая драма,128,0.87,sad
M003,Сломанная строка,не число,0.5,happy
M004,,100,0.42,happy
`

func TestCSVRead(t *testing.T) {
	cat := NewCSVCatalog("", zerolog.Nop())
	candidates, skipped, err := cat.read(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if skipped != 1 {
		t.Fatalf("строка с нечисловой длительностью пропускается, получили %d", skipped)
	}
	if len(candidates) != 3 {
		t.Fatalf("ожидали 3 кандидата, получили %d", len(candidates))
	}

	first := candidates[0]
	if first.MovieID != "M001" || first.DurationMinutes != 95 {
		t.Fatalf("длительность 95.0 должна приводиться к 95: %+v", first)
	}
	if !first.MoodTags.Has("happy") || !first.MoodTags.Has("relaxed") {
		t.Fatalf("теги должны разбираться из списка через запятую: %v", first.MoodTags.Labels())
	}
	// Пустое название не отбрасывается каталогом: это забота упаковщика.
	if candidates[2].Title != "" {
		t.Fatalf("ожидали кандидата с пустым названием")
	}
}

func TestCSVMissingColumn(t *testing.T) {
	cat := NewCSVCatalog("", zerolog.Nop())
	_, _, err := cat.read(strings.NewReader("movie_id,title\nM001,X\n"))
	if err == nil {
		t.Fatalf("ожидали ошибку при отсутствии обязательных колонок")
	}
}
