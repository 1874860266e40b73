package domain

import (
	"sort"
	"strings"
	"time"
)

// CalendarEvent описывает событие календаря из внешнего источника.
type CalendarEvent struct {
	Summary     string
	Start       time.Time
	End         time.Time
	Location    string
	Description string
}

// FreeSlot описывает свободный промежуток внутри дневного окна бодрствования.
type FreeSlot struct {
	Start           time.Time
	End             time.Time
	DurationMinutes float64
}

// MoodSet хранит активные настроения в нижнем регистре.
type MoodSet map[string]struct{}

// NewMoodSet собирает множество настроений из меток.
func NewMoodSet(labels ...string) MoodSet {
	set := make(MoodSet, len(labels))
	for _, label := range labels {
		normalized := strings.ToLower(strings.TrimSpace(label))
		if normalized == "" {
			continue
		}
		set[normalized] = struct{}{}
	}
	return set
}

// Has проверяет наличие настроения в множестве.
func (s MoodSet) Has(label string) bool {
	_, ok := s[strings.ToLower(strings.TrimSpace(label))]
	return ok
}

// Intersects сообщает, пересекаются ли два множества настроений.
func (s MoodSet) Intersects(other MoodSet) bool {
	for label := range other {
		if _, ok := s[label]; ok {
			return true
		}
	}
	return false
}

// Labels возвращает отсортированный список настроений.
func (s MoodSet) Labels() []string {
	out := make([]string, 0, len(s))
	for label := range s {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

// MoodSignals содержит сырые метки трёх обязательных источников.
type MoodSignals struct {
	Environment string
	Smartwatch  string
	Voice       string
}

// Candidate описывает кандидата из ранжированного каталога.
type Candidate struct {
	MovieID         string
	Title           string
	DurationMinutes int
	Score           float64
	MoodTags        MoodSet
}

// PackedItem описывает фильм, назначенный в свободный слот.
type PackedItem struct {
	ID              int     `json:"id"`
	MovieID         string  `json:"movie_id"`
	Title           string  `json:"title"`
	DurationMinutes int     `json:"duration_minutes"`
	Score           float64 `json:"score"`
}

// PackedWindow описывает один свободный слот с подобранными фильмами.
type PackedWindow struct {
	SlotID      int          `json:"slot_id"`
	StartTime   string       `json:"start_time"`
	EndTime     string       `json:"end_time"`
	FreeMinutes int          `json:"free_minutes"`
	ItemCount   int          `json:"item_count"`
	Items       []PackedItem `json:"items"`
}

// FreeSlotView — свободный слот в отображаемом виде.
type FreeSlotView struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Duration string `json:"duration"`
}

// Recommendation — итоговый ответ движка за один запуск.
type Recommendation struct {
	EnvironmentMood   string         `json:"environment_mood"`
	SmartwatchMood    string         `json:"smartwatch_mood"`
	VoiceMood         string         `json:"voice_mood"`
	FreeSlots         []FreeSlotView `json:"calendar_free_slots"`
	TotalFree         string         `json:"calendar_total_free"`
	Windows           []PackedWindow `json:"windows"`
	SkippedEvents     int            `json:"skipped_events"`
	SkippedCandidates int            `json:"skipped_candidates"`
	GeneratedAt       time.Time      `json:"generated_at"`
}

// Profile описывает получателя рекомендаций.
type Profile struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	Timezone  string    `json:"timezone"`
	DailyTime time.Time `json:"daily_time"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecommendationJob — задача на построение рекомендаций.
type RecommendationJob struct {
	ID         string    `json:"id"`
	ProfileID  int64     `json:"profile_id"`
	ChatID     int64     `json:"chat_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}
