package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"moodslots/internal/domain"
)

// ErrInvalidTimezone возвращается, если указан некорректный часовой пояс.
var ErrInvalidTimezone = errors.New("invalid timezone")

// Service отвечает за расписание доставки получателя.
type Service struct {
	profiles domain.ProfileRepo
}

// NewService создаёт сервис.
func NewService(profiles domain.ProfileRepo) *Service {
	return &Service{profiles: profiles}
}

// UpdateDailyTime устанавливает новое время ежедневной доставки.
func (s *Service) UpdateDailyTime(ctx context.Context, chatID int64, local time.Time) error {
	profile, err := s.profiles.GetByChatID(chatID)
	if err != nil {
		return fmt.Errorf("получение профиля: %w", err)
	}
	return s.profiles.UpdateDailyTime(profile.ID, local)
}

// UpdateTimezone сохраняет часовой пояс получателя.
func (s *Service) UpdateTimezone(ctx context.Context, chatID int64, timezone string) error {
	normalized, err := normalizeTimezone(timezone)
	if err != nil {
		return err
	}
	if _, err := s.profiles.UpsertByChatID(chatID, normalized); err != nil {
		return fmt.Errorf("обновление часового пояса: %w", err)
	}
	return nil
}

func normalizeTimezone(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", ErrInvalidTimezone
	}
	candidate = strings.ReplaceAll(candidate, " ", "_")
	if _, err := time.LoadLocation(candidate); err == nil {
		return candidate, nil
	}

	lower := strings.ToLower(candidate)
	parts := strings.Split(lower, "/")
	for i, part := range parts {
		segments := strings.Split(part, "_")
		for j, segment := range segments {
			pieces := strings.Split(segment, "-")
			for k, piece := range pieces {
				if piece == "" {
					continue
				}
				pieces[k] = strings.ToUpper(piece[:1]) + piece[1:]
			}
			segments[j] = strings.Join(pieces, "-")
		}
		parts[i] = strings.Join(segments, "_")
	}
	normalized := strings.Join(parts, "/")
	if _, err := time.LoadLocation(normalized); err == nil {
		return normalized, nil
	}
	return "", ErrInvalidTimezone
}
