package boiledrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/sqlboiler/v4/queries"
	"github.com/volatiletech/sqlboiler/v4/queries/qm"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/attempt"
	"github.com/trezcool/mtihani/core/quiz"
)

type (
	responseRow struct {
		ID           string    `boil:"id"`
		RespondentID string    `boil:"respondent_id"`
		QuizID       string    `boil:"quiz_id"`
		QuestionID   string    `boil:"question_id"`
		Letter       string    `boil:"letter"`
		CreatedAt    time.Time `boil:"created_at"`
		UpdatedAt    time.Time `boil:"updated_at"`
	}

	completionRow struct {
		RespondentID string    `boil:"respondent_id"`
		QuizID       string    `boil:"quiz_id"`
		Completed    bool      `boil:"completed"`
		CompletedAt  time.Time `boil:"completed_at"`
	}
)

const (
	responseColumns   = "id, respondent_id, quiz_id, question_id, letter, created_at, updated_at"
	completionColumns = "respondent_id, quiz_id, completed, completed_at"
)

func unboilResponse(row responseRow) attempt.Response {
	return attempt.Response{
		ID:           row.ID,
		RespondentID: row.RespondentID,
		QuizID:       row.QuizID,
		QuestionID:   row.QuestionID,
		Letter:       row.Letter,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
}

func unboilCompletion(row completionRow) attempt.Completion {
	return attempt.Completion{
		RespondentID: row.RespondentID,
		QuizID:       row.QuizID,
		Completed:    row.Completed,
		CompletedAt:  row.CompletedAt.UTC(),
	}
}

type attemptRepository struct {
	baseRepository
}

var _ attempt.Repository = (*attemptRepository)(nil) // interface compliance check

func NewAttemptRepository(exec core.DBExecutor) *attemptRepository {
	return &attemptRepository{baseRepository{exec: exec}}
}

// UpsertResponse relies on the unique (respondent_id, question_id) index: a resubmission only changes the letter.
func (repo attemptRepository) UpsertResponse(ctx context.Context, r attempt.Response, exec ...core.DBExecutor) (attempt.Response, error) {
	var row responseRow
	err := queries.Raw(
		"INSERT INTO "+responseTable+" ("+responseColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7)"+
			" ON CONFLICT (respondent_id, question_id) DO UPDATE SET letter = EXCLUDED.letter, updated_at = EXCLUDED.updated_at"+
			" RETURNING "+responseColumns,
		uuid.New().String(), r.RespondentID, r.QuizID, r.QuestionID, r.Letter, r.CreatedAt.UTC(), r.UpdatedAt.UTC(),
	).Bind(ctx, repo.getExec(exec), &row)
	if err != nil {
		return attempt.Response{}, trapFKErr(err, quiz.ErrQuestionNotFound, "upserting response")
	}
	return unboilResponse(row), nil
}

func (repo attemptRepository) QueryResponses(
	ctx context.Context,
	respondentID string,
	questionIDs []string,
	exec ...core.DBExecutor,
) ([]attempt.Response, error) {
	if len(questionIDs) == 0 {
		return []attempt.Response{}, nil
	}
	var rows []responseRow
	err := newQuery(
		qm.Select(responseColumns),
		qm.From(responseTable),
		qm.Where("respondent_id = ?", respondentID),
		qm.WhereIn("question_id IN ?", interfaces(questionIDs)...),
		qm.OrderBy("created_at ASC, id ASC"),
	).Bind(ctx, repo.getExec(exec), &rows)
	if err != nil {
		return nil, errors.Wrap(err, "querying responses")
	}
	responses := make([]attempt.Response, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, unboilResponse(row))
	}
	return responses, nil
}

func (repo attemptRepository) UpsertCompletion(ctx context.Context, c attempt.Completion, exec ...core.DBExecutor) (attempt.Completion, error) {
	var row completionRow
	err := queries.Raw(
		"INSERT INTO "+completionTable+" ("+completionColumns+") VALUES ($1, $2, $3, $4)"+
			" ON CONFLICT (respondent_id, quiz_id) DO UPDATE SET completed = EXCLUDED.completed, completed_at = EXCLUDED.completed_at"+
			" RETURNING "+completionColumns,
		c.RespondentID, c.QuizID, c.Completed, c.CompletedAt.UTC(),
	).Bind(ctx, repo.getExec(exec), &row)
	if err != nil {
		return attempt.Completion{}, trapFKErr(err, quiz.ErrNotFound, "upserting completion")
	}
	return unboilCompletion(row), nil
}

func (repo attemptRepository) GetCompletion(ctx context.Context, respondentID, quizID string, exec ...core.DBExecutor) (attempt.Completion, error) {
	if _, err := uuid.Parse(quizID); err != nil {
		return attempt.Completion{}, attempt.ErrNotCompleted
	}
	var row completionRow
	err := newQuery(
		qm.Select(completionColumns),
		qm.From(completionTable),
		qm.Where("respondent_id = ? AND quiz_id = ?", respondentID, quizID),
	).Bind(ctx, repo.getExec(exec), &row)
	if err != nil {
		return attempt.Completion{}, trapNoRowsErr(err, attempt.ErrNotCompleted, "finding completion")
	}
	return unboilCompletion(row), nil
}

func (repo attemptRepository) DeleteCompletion(ctx context.Context, respondentID, quizID string, exec ...core.DBExecutor) error {
	if !isUUID(quizID) {
		return attempt.ErrNotCompleted
	}
	res, err := queries.Raw(
		"DELETE FROM "+completionTable+" WHERE respondent_id = $1 AND quiz_id = $2", respondentID, quizID,
	).ExecContext(ctx, repo.getExec(exec))
	if err != nil {
		return errors.Wrap(err, "deleting completion")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return attempt.ErrNotCompleted
	}
	return nil
}

func (repo attemptRepository) QueryCompletions(ctx context.Context, quizID string, exec ...core.DBExecutor) ([]attempt.Completion, error) {
	if !isUUID(quizID) {
		return []attempt.Completion{}, nil
	}
	var rows []completionRow
	err := newQuery(
		qm.Select(completionColumns),
		qm.From(completionTable),
		qm.Where("quiz_id = ?", quizID),
		qm.OrderBy("completed_at DESC, respondent_id ASC"),
	).Bind(ctx, repo.getExec(exec), &rows)
	if err != nil {
		return nil, errors.Wrap(err, "querying completions")
	}
	comps := make([]attempt.Completion, 0, len(rows))
	for _, row := range rows {
		comps = append(comps, unboilCompletion(row))
	}
	return comps, nil
}
