package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core/analytics"
	"github.com/trezcool/mtihani/core/attempt"
	"github.com/trezcool/mtihani/core/quiz"
)

type (
	questionRow struct {
		ID         string         `db:"id"`
		QuizID     string         `db:"quiz_id"`
		Numero     int            `db:"numero"`
		Subject    string         `db:"subject"`
		Difficulty sql.NullString `db:"difficulty"`
	}

	responseRow struct {
		ID           string    `db:"id"`
		RespondentID string    `db:"respondent_id"`
		QuizID       string    `db:"quiz_id"`
		QuestionID   string    `db:"question_id"`
		Letter       string    `db:"letter"`
		CreatedAt    time.Time `db:"created_at"`
		UpdatedAt    time.Time `db:"updated_at"`
	}

	keyRow struct {
		QuestionID string `db:"question_id"`
		Letter     string `db:"letter"`
	}
)

// analyticsRepository is the read side of the scoring engine: three batch queries per result.
type analyticsRepository struct {
	db *sqlx.DB
}

var _ analytics.Repository = (*analyticsRepository)(nil) // interface compliance check

func NewAnalyticsRepository(db *sql.DB) *analyticsRepository {
	return &analyticsRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo analyticsRepository) QuizQuestions(ctx context.Context, quizID string) ([]quiz.Question, error) {
	var rows []questionRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT id, quiz_id, numero, subject, difficulty FROM question WHERE quiz_id = $1 ORDER BY numero, id`, quizID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting questions")
	}
	questions := make([]quiz.Question, 0, len(rows))
	for _, row := range rows {
		questions = append(questions, quiz.Question{
			ID:         row.ID,
			QuizID:     row.QuizID,
			Numero:     row.Numero,
			Subject:    row.Subject,
			Difficulty: row.Difficulty.String,
		})
	}
	return questions, nil
}

// in expands the IN (?) clause of query over args, then rebinds it for postgres.
func (repo analyticsRepository) in(query string, args ...interface{}) (string, []interface{}, error) {
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, err
	}
	return repo.db.Rebind(query), args, nil
}

func (repo analyticsRepository) RespondentResponses(ctx context.Context, respondentID string, questionIDs []string) ([]attempt.Response, error) {
	if len(questionIDs) == 0 {
		return []attempt.Response{}, nil
	}
	query, args, err := repo.in(
		`SELECT id, respondent_id, quiz_id, question_id, letter, created_at, updated_at FROM response
		WHERE respondent_id = ? AND question_id IN (?) ORDER BY created_at, id`,
		respondentID, questionIDs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "building responses query")
	}

	var rows []responseRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "selecting responses")
	}
	responses := make([]attempt.Response, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, attempt.Response{
			ID:           row.ID,
			RespondentID: row.RespondentID,
			QuizID:       row.QuizID,
			QuestionID:   row.QuestionID,
			Letter:       row.Letter,
			CreatedAt:    row.CreatedAt.UTC(),
			UpdatedAt:    row.UpdatedAt.UTC(),
		})
	}
	return responses, nil
}

func (repo analyticsRepository) CorrectOptions(ctx context.Context, questionIDs []string) ([]quiz.AnswerOption, error) {
	if len(questionIDs) == 0 {
		return []quiz.AnswerOption{}, nil
	}
	query, args, err := repo.in(
		`SELECT question_id, letter FROM answer_option WHERE correct AND question_id IN (?) ORDER BY question_id, letter`,
		questionIDs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "building answer key query")
	}

	var rows []keyRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "selecting answer key")
	}
	opts := make([]quiz.AnswerOption, 0, len(rows))
	for _, row := range rows {
		opts = append(opts, quiz.AnswerOption{QuestionID: row.QuestionID, Letter: row.Letter, Correct: true})
	}
	return opts, nil
}
