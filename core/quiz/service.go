package quiz

import (
	"context"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/folder"
)

var (
	// errors
	ErrNotFound         = errors.New("quiz not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrNoCorrectOption  = errors.New("question has no correct option")
)

type (
	Repository interface {
		// CreateQuiz inserts the quiz row only.
		CreateQuiz(ctx context.Context, qz Quiz, exec ...core.DBExecutor) (Quiz, error)
		CreateQuestion(ctx context.Context, q Question, exec ...core.DBExecutor) (Question, error)
		CreateOptions(ctx context.Context, opts []AnswerOption, exec ...core.DBExecutor) ([]AnswerOption, error)
		// GetQuiz returns the quiz row only, without questions.
		GetQuiz(ctx context.Context, id string, exec ...core.DBExecutor) (Quiz, error)
		QueryQuizzes(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Quiz, error)
		// QueryQuestions returns the questions of a quiz ordered by numero, each with its options ordered by letter.
		QueryQuestions(ctx context.Context, quizID string, exec ...core.DBExecutor) ([]Question, error)
		GetQuestion(ctx context.Context, id string, exec ...core.DBExecutor) (Question, error)
		// CorrectOptions returns every option flagged correct among the questions, ordered by question then letter.
		CorrectOptions(ctx context.Context, questionIDs []string, exec ...core.DBExecutor) ([]AnswerOption, error)
		CountQuizzesInFolder(ctx context.Context, folderID string, exec ...core.DBExecutor) (int, error)
	}

	// FolderGetter resolves folders a quiz may be filed under.
	FolderGetter interface {
		Get(ctx context.Context, id string) (folder.Folder, error)
	}

	Service struct {
		repo     Repository
		tx       core.TxRunner
		folders  FolderGetter
		validate *validator.Validate
	}
)

var _ folder.ItemCounter = (*Service)(nil) // interface compliance check

func NewService(repo Repository, tx core.TxRunner, folders FolderGetter, validate *validator.Validate) *Service {
	return &Service{
		repo:     repo,
		tx:       tx,
		folders:  folders,
		validate: validate,
	}
}

func (svc *Service) checkFolder(ctx context.Context, folderID string) error {
	f, err := svc.folders.Get(ctx, folderID)
	if err != nil {
		if errors.Cause(err) == folder.ErrNotFound {
			return core.NewValidationError(err, core.FieldError{Field: "folder_id", Error: "folder not found"})
		}
		return errors.Wrap(err, "getting folder")
	}
	if f.Kind != folder.KindQuiz {
		return core.NewValidationError(nil, core.FieldError{Field: "folder_id", Error: "not a quiz folder"})
	}
	return nil
}

// Create validates nq then stores the quiz, its questions (numbered from 1 in input order) and their options
// in a single transaction. Nothing is stored when any step fails.
func (svc *Service) Create(ctx context.Context, author core.Respondent, nq NewQuiz) (Quiz, error) {
	if err := nq.Validate(svc.validate); err != nil {
		return Quiz{}, err
	}
	if nq.FolderID != nil {
		if err := svc.checkFolder(ctx, *nq.FolderID); err != nil {
			return Quiz{}, err
		}
	}

	var created Quiz
	err := svc.tx.RunInTx(ctx, func(exec core.DBExecutor) error {
		qz, err := svc.repo.CreateQuiz(ctx, Quiz{
			Period:    nq.Period,
			Year:      nq.Year,
			FolderID:  nq.FolderID,
			CreatedBy: author.ID,
			CreatedAt: core.NowFunc(),
		}, exec)
		if err != nil {
			return errors.Wrap(err, "inserting quiz")
		}

		qz.Questions = make([]Question, 0, len(nq.Questions))
		for i, nqq := range nq.Questions {
			numero := i + 1
			q, err := svc.repo.CreateQuestion(ctx, Question{
				QuizID:     qz.ID,
				Numero:     numero,
				Prompt:     nqq.Prompt,
				Image:      nqq.Image,
				Subject:    nqq.Subject,
				Difficulty: nqq.Difficulty,
			}, exec)
			if err != nil {
				return errors.Wrapf(err, "inserting question %d", numero)
			}

			opts := make([]AnswerOption, 0, len(nqq.Options))
			for _, no := range nqq.Options {
				opts = append(opts, AnswerOption{
					QuestionID: q.ID,
					Letter:     no.Letter,
					Text:       no.Text,
					Image:      no.Image,
					Correct:    no.Correct,
				})
			}
			if q.Options, err = svc.repo.CreateOptions(ctx, opts, exec); err != nil {
				return errors.Wrapf(err, "inserting options of question %d", numero)
			}
			qz.Questions = append(qz.Questions, q)
		}

		created = qz
		return nil
	})
	if err != nil {
		return Quiz{}, errors.Wrap(err, "creating quiz")
	}
	return created, nil
}

// Get returns the quiz with its ordered questions & options.
func (svc *Service) Get(ctx context.Context, id string) (Quiz, error) {
	qz, err := svc.repo.GetQuiz(ctx, id)
	if err != nil {
		return Quiz{}, errors.Wrap(err, "getting quiz")
	}
	if qz.Questions, err = svc.repo.QueryQuestions(ctx, qz.ID); err != nil {
		return Quiz{}, errors.Wrap(err, "querying questions")
	}
	return qz, nil
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Quiz, error) {
	filter.Clean()
	ordering = core.FilterOrderings(ordering, OrderingFields)
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "year", Ascending: false}, {Field: "created_at", Ascending: false}}
	}
	quizzes, err := svc.repo.QueryQuizzes(ctx, filter, ordering)
	if err != nil {
		return nil, errors.Wrap(err, "querying quizzes")
	}
	if quizzes == nil {
		quizzes = []Quiz{}
	}
	return quizzes, nil
}

// Questions returns the questions of quizID ordered by numero.
func (svc *Service) Questions(ctx context.Context, quizID string) ([]Question, error) {
	if _, err := svc.repo.GetQuiz(ctx, quizID); err != nil {
		return nil, errors.Wrap(err, "getting quiz")
	}
	questions, err := svc.repo.QueryQuestions(ctx, quizID)
	if err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}
	return questions, nil
}

// ResolveCorrectOption returns the correct option of a question.
// Questions stored with several correct options resolve to the first one by letter.
func (svc *Service) ResolveCorrectOption(ctx context.Context, questionID string) (AnswerOption, error) {
	q, err := svc.repo.GetQuestion(ctx, questionID)
	if err != nil {
		return AnswerOption{}, errors.Wrap(err, "getting question")
	}
	correct := q.CorrectOptions()
	if len(correct) == 0 {
		return AnswerOption{}, ErrNoCorrectOption
	}
	sort.SliceStable(correct, func(i, j int) bool { return correct[i].Letter < correct[j].Letter })
	return correct[0], nil
}

// AnswerKey resolves the correct letter of every question in one lookup.
// Questions without a correct option are left out of the key.
func (svc *Service) AnswerKey(ctx context.Context, questionIDs []string) (map[string]string, error) {
	if len(questionIDs) == 0 {
		return map[string]string{}, nil
	}
	opts, err := svc.repo.CorrectOptions(ctx, questionIDs)
	if err != nil {
		return nil, errors.Wrap(err, "querying correct options")
	}
	return BuildAnswerKey(opts), nil
}

// BuildAnswerKey maps each question to the lowest correct letter among opts.
func BuildAnswerKey(opts []AnswerOption) map[string]string {
	key := make(map[string]string, len(opts))
	for _, opt := range opts {
		if !opt.Correct {
			continue
		}
		if cur, ok := key[opt.QuestionID]; !ok || opt.Letter < cur {
			key[opt.QuestionID] = opt.Letter
		}
	}
	return key
}

// CountInFolder implements folder.ItemCounter.
func (svc *Service) CountInFolder(ctx context.Context, folderID string) (int, error) {
	return svc.repo.CountQuizzesInFolder(ctx, folderID)
}
