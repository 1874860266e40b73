package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"moodslots/internal/domain"
	"moodslots/internal/infra/metrics"
)

const defaultTimeout = 15 * time.Second

// HTTPCatalog получает ранжированный каталог у коллаборатора ранжирования.
type HTTPCatalog struct {
	http *http.Client
	url  string
	log  zerolog.Logger
}

var _ domain.Catalog = (*HTTPCatalog)(nil)

// NewHTTPCatalog создаёт каталог по адресу сервиса.
func NewHTTPCatalog(url string, timeout time.Duration, logger zerolog.Logger) *HTTPCatalog {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPCatalog{http: &http.Client{Timeout: timeout}, url: url, log: logger}
}

// Candidates запрашивает строки каталога. Некорректные строки пропускаются.
func (c *HTTPCatalog) Candidates(ctx context.Context) (candidates []domain.Candidate, skipped int, err error) {
	started := time.Now()
	defer func() { metrics.ObserveNetworkRequest("catalog", "candidates", c.url, started, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("построение запроса: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("запрос каталога: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("каталог вернул статус %d", resp.StatusCode)
	}

	var rows []Row
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, 0, fmt.Errorf("разбор ответа каталога: %w", err)
	}

	candidates = make([]domain.Candidate, 0, len(rows))
	for _, row := range rows {
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
