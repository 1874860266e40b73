package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"moodslots/internal/domain"
	"moodslots/internal/infra/metrics"
)

// CSVCatalog читает ранжированный каталог из CSV-файла.
// Ожидаемые колонки: movie_id, title, duration_minutes, ranking_score, mood.
type CSVCatalog struct {
	path string
	log  zerolog.Logger
}

var _ domain.Catalog = (*CSVCatalog)(nil)

// NewCSVCatalog создаёт каталог по пути к файлу.
func NewCSVCatalog(path string, logger zerolog.Logger) *CSVCatalog {
	return &CSVCatalog{path: path, log: logger}
}

// Candidates разбирает файл. Некорректные строки пропускаются с предупреждением.
func (c *CSVCatalog) Candidates(ctx context.Context) ([]domain.Candidate, int, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, 0, fmt.Errorf("открытие каталога: %w", err)
	}
	defer f.Close()
	return c.read(f)
}

func (c *CSVCatalog) read(r io.Reader) ([]domain.Candidate, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("чтение заголовка: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, required := range []string{"movie_id", "duration_minutes", "ranking_score", "mood"} {
		if _, ok := index[required]; !ok {
			return nil, 0, fmt.Errorf("в каталоге нет колонки %s", required)
		}
	}

	candidates := make([]domain.Candidate, 0)
	skipped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			metrics.SkippedCandidates.Inc()
			c.log.Warn().Err(err).Msg("catalog: нечитаемая строка CSV")
			continue
		}
		row := Row{
			MovieID:         field(record, index, "movie_id"),
			Title:           field(record, index, "title"),
			DurationMinutes: field(record, index, "duration_minutes"),
			RankingScore:    field(record, index, "ranking_score"),
			Mood:            field(record, index, "mood"),
		}
		candidate, cerr := Convert(row)
		if cerr != nil {
			skipped++
			metrics.SkippedCandidates.Inc()
			c.log.Warn().Err(cerr).Str("movie_id", row.MovieID).Msg("catalog: пропущена строка")
			continue
		}
		candidates = append(candidates, candidate)
	}
	return candidates, skipped, nil
}

func field(record []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}
