package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"moodslots/internal/domain"
)

// Postgres реализует domain.ProfileRepo на основе pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ domain.ProfileRepo = (*Postgres)(nil)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	id BIGSERIAL PRIMARY KEY,
	chat_id BIGINT NOT NULL UNIQUE,
	timezone TEXT NOT NULL DEFAULT 'Asia/Kolkata',
	daily_time TIME NOT NULL DEFAULT '20:00',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS deliveries (
	profile_id BIGINT NOT NULL REFERENCES profiles(id),
	delivered_on DATE NOT NULL,
	PRIMARY KEY (profile_id, delivered_on)
);`

// Migrate создаёт таблицы, если их ещё нет.
func (p *Postgres) Migrate(ctx context.Context) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("миграция схемы: %w", err)
	}
	return nil
}

func (p *Postgres) connCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

func (p *Postgres) connCtxWithParent(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return p.connCtx()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// UpsertByChatID создаёт или обновляет профиль получателя.
func (p *Postgres) UpsertByChatID(chatID int64, timezone string) (domain.Profile, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	var profile domain.Profile
	err := p.pool.QueryRow(ctx, `
		INSERT INTO profiles (chat_id, timezone)
		VALUES ($1, COALESCE(NULLIF($2, ''), 'Asia/Kolkata'))
		ON CONFLICT (chat_id) DO UPDATE
		SET timezone = COALESCE(NULLIF($2, ''), profiles.timezone), updated_at = now()
		RETURNING id, chat_id, timezone, daily_time, created_at, updated_at`,
		chatID, timezone,
	).Scan(&profile.ID, &profile.ChatID, &profile.Timezone, &profile.DailyTime, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("upsert профиля: %w", err)
	}
	return profile, nil
}

// GetByChatID возвращает профиль по идентификатору чата.
func (p *Postgres) GetByChatID(chatID int64) (domain.Profile, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	var profile domain.Profile
	err := p.pool.QueryRow(ctx, `
		SELECT id, chat_id, timezone, daily_time, created_at, updated_at
		FROM profiles WHERE chat_id = $1`,
		chatID,
	).Scan(&profile.ID, &profile.ChatID, &profile.Timezone, &profile.DailyTime, &profile.CreatedAt, &profile.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Profile{}, fmt.Errorf("профиль %d не найден", chatID)
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("получение профиля: %w", err)
	}
	return profile, nil
}

// ListForDailyTime возвращает профили, чьё время доставки совпадает с текущей
// минутой в их часовом поясе и которым сегодня ещё не доставляли.
func (p *Postgres) ListForDailyTime(now time.Time) ([]domain.Profile, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	rows, err := p.pool.Query(ctx, `
		SELECT pr.id, pr.chat_id, pr.timezone, pr.daily_time, pr.created_at, pr.updated_at
		FROM profiles pr
		WHERE NOT EXISTS (
			SELECT 1 FROM deliveries d
			WHERE d.profile_id = pr.id
			  AND d.delivered_on = ($1 AT TIME ZONE pr.timezone)::date
		)`,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("выборка профилей: %w", err)
	}
	defer rows.Close()

	var due []domain.Profile
	for rows.Next() {
		var profile domain.Profile
		if err := rows.Scan(&profile.ID, &profile.ChatID, &profile.Timezone, &profile.DailyTime, &profile.CreatedAt, &profile.UpdatedAt); err != nil {
			return nil, fmt.Errorf("чтение профиля: %w", err)
		}
		if dueNow(profile, now) {
			due = append(due, profile)
		}
	}
	return due, rows.Err()
}

// dueNow сверяет час и минуту доставки со временем в поясе профиля.
func dueNow(profile domain.Profile, now time.Time) bool {
	loc, err := time.LoadLocation(profile.Timezone)
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return local.Hour() == profile.DailyTime.Hour() && local.Minute() == profile.DailyTime.Minute()
}

// UpdateDailyTime устанавливает новое время доставки.
func (p *Postgres) UpdateDailyTime(profileID int64, daily time.Time) error {
	ctx, cancel := p.connCtx()
	defer cancel()

	if _, err := p.pool.Exec(ctx, `
		UPDATE profiles SET daily_time = $2, updated_at = now() WHERE id = $1`,
		profileID, daily,
	); err != nil {
		return fmt.Errorf("обновление времени доставки: %w", err)
	}
	return nil
}

// MarkDelivered помечает дату доставленной.
func (p *Postgres) MarkDelivered(profileID int64, date time.Time) error {
	ctx, cancel := p.connCtx()
	defer cancel()

	if _, err := p.pool.Exec(ctx, `
		INSERT INTO deliveries (profile_id, delivered_on)
		VALUES ($1, $2::date)
		ON CONFLICT DO NOTHING`,
		profileID, date,
	); err != nil {
		return fmt.Errorf("отметка доставки: %w", err)
	}
	return nil
}

// WasDelivered сообщает, была ли доставка в указанную дату.
func (p *Postgres) WasDelivered(profileID int64, date time.Time) (bool, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	var delivered bool
	err := p.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM deliveries WHERE profile_id = $1 AND delivered_on = $2::date
		)`,
		profileID, date,
	).Scan(&delivered)
	if err != nil {
		return false, fmt.Errorf("проверка доставки: %w", err)
	}
	return delivered, nil
}
