package domain

import (
	"context"
	"time"
)

// MoodSource возвращает метку настроения одного внешнего классификатора.
type MoodSource interface {
	Fetch(ctx context.Context) (string, error)
}

// CalendarSource возвращает события календаря вместе с числом отброшенных записей.
type CalendarSource interface {
	Events(ctx context.Context) ([]CalendarEvent, int, error)
}

// Catalog возвращает ранжированных кандидатов вместе с числом отброшенных строк.
type Catalog interface {
	Candidates(ctx context.Context) ([]Candidate, int, error)
}

// Recommender строит рекомендации за один запуск.
type Recommender interface {
	Build(ctx context.Context) (Recommendation, error)
}

// ProfileRepo управляет получателями рекомендаций.
type ProfileRepo interface {
	UpsertByChatID(chatID int64, timezone string) (Profile, error)
	GetByChatID(chatID int64) (Profile, error)
	ListForDailyTime(now time.Time) ([]Profile, error)
	UpdateDailyTime(profileID int64, daily time.Time) error
	MarkDelivered(profileID int64, date time.Time) error
	WasDelivered(profileID int64, date time.Time) (bool, error)
}

// JobQueue передаёт задачи на построение рекомендаций между сервисами.
type JobQueue interface {
	Enqueue(ctx context.Context, job RecommendationJob) error
	Pop(ctx context.Context) (RecommendationJob, error)
}

// Notifier доставляет готовые рекомендации получателю.
type Notifier interface {
	Deliver(ctx context.Context, chatID int64, rec Recommendation) error
}

// Cache используется для простых TTL-хранилищ.
type Cache interface {
	Once(key string, ttl time.Duration, fn func() error) error
	Set(key string, value []byte, ttl time.Duration) error
	Get(key string) ([]byte, error)
}
