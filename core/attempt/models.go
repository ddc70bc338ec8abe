package attempt

import (
	"sort"
	"time"
)

type Mode string

const (
	Answering Mode = "answering"
	Completed Mode = "completed"
)

// Response is the letter a respondent chose for a question. One per (respondent, question).
type Response struct {
	ID           string    `json:"id"`
	RespondentID string    `json:"respondent_id"`
	QuizID       string    `json:"quiz_id"`
	QuestionID   string    `json:"question_id"`
	Letter       string    `json:"letter"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// Completion is the ledger entry marking a quiz as finished by a respondent.
type Completion struct {
	RespondentID string    `json:"respondent_id"`
	QuizID       string    `json:"quiz_id"`
	Completed    bool      `json:"completed"`
	CompletedAt  time.Time `json:"completed_at"` // UTC
}

// FirstAnswers maps each question to its chosen letter.
// When a question has several responses (legacy duplicates), the earliest by (created_at, id) wins.
func FirstAnswers(responses []Response) map[string]string {
	sorted := make([]Response, len(responses))
	copy(sorted, responses)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	answers := make(map[string]string, len(sorted))
	for _, r := range sorted {
		if _, ok := answers[r.QuestionID]; !ok {
			answers[r.QuestionID] = r.Letter
		}
	}
	return answers
}
