package core

import (
	"context"
	"time"
)

// QuizCompleted is emitted once a respondent submits the last question of a quiz.
type QuizCompleted struct {
	RespondentID string    `json:"respondent_id"`
	Username     string    `json:"username,omitempty"`
	QuizID       string    `json:"quiz_id"`
	CompletedAt  time.Time `json:"completed_at"`
	Score
}

// Notifier is any sink that can be told about completed quizzes.
// Delivery is best-effort: implementations log their own failures.
type Notifier interface {
	QuizCompleted(ctx context.Context, evt QuizCompleted)
}
