package catalog

import (
	"strconv"
	"strings"

	"moodslots/internal/domain"
)

// Row — строка ранжированного каталога в сыром виде.
// Длительность и оценка приходят строками и разбираются с валидацией.
type Row struct {
	MovieID         string `json:"movie_id"`
	Title           string `json:"title"`
	DurationMinutes string `json:"duration_minutes"`
	RankingScore    string `json:"ranking_score"`
	Mood            string `json:"mood"`
}

// Convert превращает сырую строку в кандидата.
func Convert(row Row) (domain.Candidate, error) {
	if row.MovieID == "" {
		return domain.Candidate{}, &domain.MalformedRecordError{Kind: "candidate", Reason: "нет movie_id"}
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(row.DurationMinutes), 64)
	if err != nil {
		return domain.Candidate{}, &domain.MalformedRecordError{Kind: "candidate", Reason: "нечисловая длительность"}
	}
	score, err := strconv.ParseFloat(strings.TrimSpace(row.RankingScore), 64)
	if err != nil {
		return domain.Candidate{}, &domain.MalformedRecordError{Kind: "candidate", Reason: "нечисловая оценка"}
	}
	tags := domain.NewMoodSet(strings.Split(row.Mood, ",")...)
	return domain.Candidate{
		MovieID:         row.MovieID,
		Title:           row.Title,
		DurationMinutes: int(duration),
		Score:           score,
		MoodTags:        tags,
	}, nil
}
