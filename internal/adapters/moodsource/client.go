package moodsource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"moodslots/internal/domain"
	"moodslots/internal/infra/metrics"
)

const defaultTimeout = 15 * time.Second

// Client запрашивает метку настроения у одного внешнего классификатора.
type Client struct {
	http   *http.Client
	url    string
	signal string
	field  string
}

var _ domain.MoodSource = (*Client)(nil)

// NewEnvironment создаёт клиента классификатора окружения.
func NewEnvironment(url string, timeout time.Duration) *Client {
	return newClient(url, domain.SignalEnvironment, "predicted_mood", timeout)
}

// NewSmartwatch создаёт клиента классификатора носимого устройства.
func NewSmartwatch(url string, timeout time.Duration) *Client {
	return newClient(url, domain.SignalSmartwatch, "predicted_mood", timeout)
}

// NewVoice создаёт клиента речевой модели эмоций.
func NewVoice(url string, timeout time.Duration) *Client {
	return newClient(url, domain.SignalVoice, "predicted_emotion", timeout)
}

func newClient(url, signal, field string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http:   &http.Client{Timeout: timeout},
		url:    strings.TrimRight(url, "/"),
		signal: signal,
		field:  field,
	}
}

// Fetch возвращает метку настроения как есть. Пустое поле ответа не считается
// ошибкой транспорта: агрегатор сам сообщит об отсутствующем сигнале.
func (c *Client) Fetch(ctx context.Context) (label string, err error) {
	started := time.Now()
	defer func() { metrics.ObserveNetworkRequest("moodsource", "fetch", c.signal, started, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", fmt.Errorf("построение запроса: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("запрос %s: %w", c.signal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("источник %s вернул статус %d", c.signal, resp.StatusCode)
	}

	var payload map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("разбор ответа %s: %w", c.signal, err)
	}
	raw, ok := payload[c.field]
	if !ok {
		return "", nil
	}
	if err := json.Unmarshal(raw, &label); err != nil {
		return "", fmt.Errorf("поле %s не является строкой: %w", c.field, err)
	}
	return label, nil
}
