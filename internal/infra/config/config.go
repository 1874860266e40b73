package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	Port   int    `envconfig:"PORT" default:"8080"`

	// Окно бодрствования: опорный пояс и границы как смещения от полуночи.
	Availability struct {
		Zone      string        `envconfig:"AVAILABILITY_ZONE" default:"Asia/Kolkata"`
		WakeStart time.Duration `envconfig:"AVAILABILITY_WAKE_START" default:"7h"`
		WakeEnd   time.Duration `envconfig:"AVAILABILITY_WAKE_END" default:"23h59m59s999ms"`
	} `envconfig:""`

	Sources struct {
		EnvironmentURL string        `envconfig:"ENVIRONMENT_MOOD_URL"`
		SmartwatchURL  string        `envconfig:"SMARTWATCH_MOOD_URL"`
		VoiceURL       string        `envconfig:"VOICE_MOOD_URL"`
		CalendarURL    string        `envconfig:"CALENDAR_URL"`
		CalendarICSURL string        `envconfig:"CALENDAR_ICS_URL"`
		CatalogURL     string        `envconfig:"CATALOG_URL"`
		CatalogCSVPath string        `envconfig:"CATALOG_CSV_PATH"`
		Timeout        time.Duration `envconfig:"SOURCE_TIMEOUT" default:"15s"`
	} `envconfig:""`

	Telegram struct {
		Token string `envconfig:"TG_BOT_TOKEN"`
	} `envconfig:""`

	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr string `envconfig:"REDIS_ADDR"`

	RabbitURL string `envconfig:"RABBITMQ_URL"`

	Queues struct {
		Jobs string `envconfig:"JOBS_QUEUE_KEY" default:"recommendation_jobs"`
	} `envconfig:""`

	Cache struct {
		TTL time.Duration `envconfig:"RECOMMENDATION_CACHE_TTL" default:"2m"`
	} `envconfig:""`

	Scheduler struct {
		Spec string `envconfig:"SCHEDULER_CRON" default:"* * * * *"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}
