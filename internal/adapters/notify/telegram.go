package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"moodslots/internal/domain"
	"moodslots/internal/infra/metrics"
)

// Telegram доставляет подборки через Telegram-бота.
type Telegram struct {
	bot *tgbotapi.BotAPI
	log zerolog.Logger
}

var _ domain.Notifier = (*Telegram)(nil)

// NewTelegram создаёт нотификатор по токену бота.
func NewTelegram(token string, logger zerolog.Logger) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("инициализация бота: %w", err)
	}
	return &Telegram{bot: bot, log: logger}, nil
}

// Deliver отправляет подборку в чат, разбивая длинный текст на части.
func (t *Telegram) Deliver(ctx context.Context, chatID int64, rec domain.Recommendation) error {
	text := FormatRecommendation(rec)
	for _, part := range SplitMessage(text) {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(chatID, part)
		msg.ParseMode = tgbotapi.ModeHTML
		if _, err := t.bot.Send(msg); err != nil {
			metrics.DeliveryErrors.Inc()
			return fmt.Errorf("отправка сообщения: %w", err)
		}
	}
	t.log.Debug().Int64("chat", chatID).Int("windows", len(rec.Windows)).Msg("notify: подборка доставлена")
	return nil
}
