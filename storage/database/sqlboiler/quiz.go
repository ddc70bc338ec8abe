package boiledrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries"
	"github.com/volatiletech/sqlboiler/v4/queries/qm"
	"github.com/volatiletech/strmangle"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/quiz"
)

type (
	quizRow struct {
		ID        string      `boil:"id"`
		Period    string      `boil:"period"`
		Year      int         `boil:"year"`
		FolderID  null.String `boil:"folder_id"`
		CreatedBy string      `boil:"created_by"`
		CreatedAt time.Time   `boil:"created_at"`
	}

	questionRow struct {
		ID         string      `boil:"id"`
		QuizID     string      `boil:"quiz_id"`
		Numero     int         `boil:"numero"`
		Prompt     string      `boil:"prompt"`
		Image      null.String `boil:"image"`
		Subject    string      `boil:"subject"`
		Difficulty null.String `boil:"difficulty"`
	}

	optionRow struct {
		ID         string      `boil:"id"`
		QuestionID string      `boil:"question_id"`
		Letter     string      `boil:"letter"`
		Text       null.String `boil:"text"`
		Image      null.String `boil:"image"`
		Correct    bool        `boil:"correct"`
	}
)

const (
	quizColumns     = "id, period, year, folder_id, created_by, created_at"
	questionColumns = "id, quiz_id, numero, prompt, image, subject, difficulty"
	optionColumns   = "id, question_id, letter, text, image, correct"
)

func nullString(s string) null.String { return null.NewString(s, s != "") }

func unboilQuiz(row quizRow) quiz.Quiz {
	return quiz.Quiz{
		ID:        row.ID,
		Period:    row.Period,
		Year:      row.Year,
		FolderID:  row.FolderID.Ptr(),
		CreatedBy: row.CreatedBy,
		CreatedAt: row.CreatedAt.UTC(),
	}
}

func unboilQuestion(row questionRow) quiz.Question {
	return quiz.Question{
		ID:         row.ID,
		QuizID:     row.QuizID,
		Numero:     row.Numero,
		Prompt:     row.Prompt,
		Image:      row.Image.String,
		Subject:    row.Subject,
		Difficulty: row.Difficulty.String,
	}
}

func unboilOption(row optionRow) quiz.AnswerOption {
	return quiz.AnswerOption{
		ID:         row.ID,
		QuestionID: row.QuestionID,
		Letter:     row.Letter,
		Text:       row.Text.String,
		Image:      row.Image.String,
		Correct:    row.Correct,
	}
}

type quizRepository struct {
	baseRepository
}

var _ quiz.Repository = (*quizRepository)(nil) // interface compliance check

func NewQuizRepository(exec core.DBExecutor) *quizRepository {
	return &quizRepository{baseRepository{exec: exec}}
}

func (repo quizRepository) CreateQuiz(ctx context.Context, qz quiz.Quiz, exec ...core.DBExecutor) (quiz.Quiz, error) {
	qz.ID = uuid.New().String()
	qz.CreatedAt = qz.CreatedAt.UTC()
	_, err := queries.Raw(
		"INSERT INTO "+quizTable+" ("+quizColumns+") VALUES ($1, $2, $3, $4, $5, $6)",
		qz.ID, qz.Period, qz.Year, null.StringFromPtr(qz.FolderID), qz.CreatedBy, qz.CreatedAt,
	).ExecContext(ctx, repo.getExec(exec))
	if err != nil {
		return quiz.Quiz{}, errors.Wrap(err, "inserting quiz")
	}
	qz.Questions = nil
	return qz, nil
}

func (repo quizRepository) CreateQuestion(ctx context.Context, q quiz.Question, exec ...core.DBExecutor) (quiz.Question, error) {
	q.ID = uuid.New().String()
	_, err := queries.Raw(
		"INSERT INTO "+questionTable+" ("+questionColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7)",
		q.ID, q.QuizID, q.Numero, q.Prompt, nullString(q.Image), q.Subject, nullString(q.Difficulty),
	).ExecContext(ctx, repo.getExec(exec))
	if err != nil {
		return quiz.Question{}, trapFKErr(err, quiz.ErrNotFound, "inserting question")
	}
	q.Options = nil
	return q, nil
}

// CreateOptions inserts all options in one statement.
func (repo quizRepository) CreateOptions(ctx context.Context, opts []quiz.AnswerOption, exec ...core.DBExecutor) ([]quiz.AnswerOption, error) {
	if len(opts) == 0 {
		return []quiz.AnswerOption{}, nil
	}

	const nCols = 6
	created := make([]quiz.AnswerOption, 0, len(opts))
	args := make([]interface{}, 0, len(opts)*nCols)
	for _, opt := range opts {
		opt.ID = uuid.New().String()
		args = append(args, opt.ID, opt.QuestionID, opt.Letter, nullString(opt.Text), nullString(opt.Image), opt.Correct)
		created = append(created, opt)
	}
	query := "INSERT INTO " + optionTable + " (" + optionColumns + ") VALUES " +
		strmangle.Placeholders(dialect.UseIndexPlaceholders, len(args), 1, nCols)

	if _, err := queries.Raw(query, args...).ExecContext(ctx, repo.getExec(exec)); err != nil {
		return nil, trapFKErr(err, quiz.ErrQuestionNotFound, "inserting options")
	}
	return created, nil
}

func (repo quizRepository) GetQuiz(ctx context.Context, id string, exec ...core.DBExecutor) (quiz.Quiz, error) {
	if _, err := uuid.Parse(id); err != nil {
		return quiz.Quiz{}, quiz.ErrNotFound
	}
	var row quizRow
	err := newQuery(
		qm.Select(quizColumns),
		qm.From(quizTable),
		qm.Where("id = ?", id),
	).Bind(ctx, repo.getExec(exec), &row)
	if err != nil {
		return quiz.Quiz{}, trapNoRowsErr(err, quiz.ErrNotFound, "finding quiz")
	}
	return unboilQuiz(row), nil
}

func (repo quizRepository) QueryQuizzes(
	ctx context.Context,
	filter quiz.QueryFilter,
	ordering []core.DBOrdering,
	exec ...core.DBExecutor,
) ([]quiz.Quiz, error) {
	if filter.FolderID != nil && !isUUID(*filter.FolderID) {
		return []quiz.Quiz{}, nil
	}
	mods := []qm.QueryMod{
		qm.Select(quizColumns),
		qm.From(quizTable),
	}
	if filter.FolderID != nil {
		mods = append(mods, qm.Where("folder_id = ?", *filter.FolderID))
	}
	if filter.Year != 0 {
		mods = append(mods, qm.Where("year = ?", filter.Year))
	}
	if filter.Search != "" {
		mods = append(mods, qm.Where("period ILIKE ?", "%"+filter.Search+"%"))
	}
	if len(ordering) > 0 {
		mods = append(mods, orderBy(append(ordering, core.DBOrdering{Field: "id", Ascending: true})))
	}

	var rows []quizRow
	if err := newQuery(mods...).Bind(ctx, repo.getExec(exec), &rows); err != nil {
		return nil, errors.Wrap(err, "querying quizzes")
	}
	quizzes := make([]quiz.Quiz, 0, len(rows))
	for _, row := range rows {
		quizzes = append(quizzes, unboilQuiz(row))
	}
	return quizzes, nil
}

func (repo quizRepository) queryOptions(ctx context.Context, exec core.DBExecutor, mods ...qm.QueryMod) ([]quiz.AnswerOption, error) {
	mods = append([]qm.QueryMod{qm.Select(optionColumns), qm.From(optionTable)}, mods...)
	mods = append(mods, qm.OrderBy("question_id ASC, letter ASC"))

	var rows []optionRow
	if err := newQuery(mods...).Bind(ctx, exec, &rows); err != nil {
		return nil, err
	}
	opts := make([]quiz.AnswerOption, 0, len(rows))
	for _, row := range rows {
		opts = append(opts, unboilOption(row))
	}
	return opts, nil
}

func (repo quizRepository) QueryQuestions(ctx context.Context, quizID string, exec ...core.DBExecutor) ([]quiz.Question, error) {
	exe := repo.getExec(exec)

	var rows []questionRow
	err := newQuery(
		qm.Select(questionColumns),
		qm.From(questionTable),
		qm.Where("quiz_id = ?", quizID),
		qm.OrderBy("numero ASC, id ASC"),
	).Bind(ctx, exe, &rows)
	if err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}
	if len(rows) == 0 {
		return []quiz.Question{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	opts, err := repo.queryOptions(ctx, exe, qm.WhereIn("question_id IN ?", interfaces(ids)...))
	if err != nil {
		return nil, errors.Wrap(err, "querying options")
	}
	byQuestion := make(map[string][]quiz.AnswerOption, len(rows))
	for _, opt := range opts {
		byQuestion[opt.QuestionID] = append(byQuestion[opt.QuestionID], opt)
	}

	questions := make([]quiz.Question, 0, len(rows))
	for _, row := range rows {
		q := unboilQuestion(row)
		q.Options = byQuestion[q.ID]
		questions = append(questions, q)
	}
	return questions, nil
}

func (repo quizRepository) GetQuestion(ctx context.Context, id string, exec ...core.DBExecutor) (quiz.Question, error) {
	if _, err := uuid.Parse(id); err != nil {
		return quiz.Question{}, quiz.ErrQuestionNotFound
	}
	exe := repo.getExec(exec)

	var row questionRow
	err := newQuery(
		qm.Select(questionColumns),
		qm.From(questionTable),
		qm.Where("id = ?", id),
	).Bind(ctx, exe, &row)
	if err != nil {
		return quiz.Question{}, trapNoRowsErr(err, quiz.ErrQuestionNotFound, "finding question")
	}

	q := unboilQuestion(row)
	if q.Options, err = repo.queryOptions(ctx, exe, qm.Where("question_id = ?", id)); err != nil {
		return quiz.Question{}, errors.Wrap(err, "querying options")
	}
	return q, nil
}

func (repo quizRepository) CorrectOptions(ctx context.Context, questionIDs []string, exec ...core.DBExecutor) ([]quiz.AnswerOption, error) {
	if len(questionIDs) == 0 {
		return []quiz.AnswerOption{}, nil
	}
	opts, err := repo.queryOptions(ctx, repo.getExec(exec),
		qm.WhereIn("question_id IN ?", interfaces(questionIDs)...),
		qm.Where("correct = ?", true),
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying correct options")
	}
	return opts, nil
}

func (repo quizRepository) CountQuizzesInFolder(ctx context.Context, folderID string, exec ...core.DBExecutor) (int, error) {
	if !isUUID(folderID) {
		return 0, nil
	}
	var n int
	err := queries.Raw("SELECT COUNT(*) FROM "+quizTable+" WHERE folder_id = $1", folderID).
		QueryRowContext(ctx, repo.getExec(exec)).
		Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, "counting quizzes")
	}
	return n, nil
}
