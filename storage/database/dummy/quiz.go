package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/quiz"
)

type quizRepository struct {
	db *DB
}

var _ quiz.Repository = (*quizRepository)(nil) // interface compliance check

func NewQuizRepository(db *DB) quiz.Repository {
	return &quizRepository{db: db}
}

func (repo *quizRepository) CreateQuiz(_ context.Context, qz quiz.Quiz, _ ...core.DBExecutor) (quiz.Quiz, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	qz.ID = newID()
	qz.Questions = nil
	repo.db.quizzes[qz.ID] = qz
	return qz, nil
}

func (repo *quizRepository) CreateQuestion(_ context.Context, q quiz.Question, _ ...core.DBExecutor) (quiz.Question, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.quizzes[q.QuizID]; !ok {
		return quiz.Question{}, quiz.ErrNotFound
	}
	q.ID = newID()
	q.Options = nil
	repo.db.questions[q.ID] = q
	return q, nil
}

func (repo *quizRepository) CreateOptions(_ context.Context, opts []quiz.AnswerOption, _ ...core.DBExecutor) ([]quiz.AnswerOption, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	created := make([]quiz.AnswerOption, 0, len(opts))
	for _, opt := range opts {
		if _, ok := repo.db.questions[opt.QuestionID]; !ok {
			return nil, quiz.ErrQuestionNotFound
		}
		opt.ID = newID()
		repo.db.options[opt.ID] = opt
		created = append(created, opt)
	}
	return created, nil
}

func (repo *quizRepository) GetQuiz(_ context.Context, id string, _ ...core.DBExecutor) (quiz.Quiz, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if qz, ok := repo.db.quizzes[id]; ok {
		return qz, nil
	}
	return quiz.Quiz{}, quiz.ErrNotFound
}

func (repo *quizRepository) QueryQuizzes(
	_ context.Context,
	filter quiz.QueryFilter,
	ordering []core.DBOrdering,
	_ ...core.DBExecutor,
) ([]quiz.Quiz, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	search := strings.ToLower(filter.Search)
	quizzes := make([]quiz.Quiz, 0)
	for _, qz := range repo.db.quizzes {
		if filter.FolderID != nil && core.StringValue(qz.FolderID) != *filter.FolderID {
			continue
		}
		if filter.Year != 0 && qz.Year != filter.Year {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(qz.Period), search) {
			continue
		}
		quizzes = append(quizzes, qz)
	}

	sort.Slice(quizzes, func(i, j int) bool {
		a, b := quizzes[i], quizzes[j]
		for _, ord := range ordering {
			var cmp int
			switch ord.Field {
			case "period":
				cmp = strings.Compare(a.Period, b.Period)
			case "year":
				cmp = a.Year - b.Year
			case "created_at":
				cmp = a.CreatedAt.Compare(b.CreatedAt)
			}
			if cmp != 0 {
				return (cmp < 0) == ord.Ascending
			}
		}
		return a.ID < b.ID
	})
	return quizzes, nil
}

func (repo *quizRepository) questionOptions(questionID string) []quiz.AnswerOption {
	var opts []quiz.AnswerOption
	for _, opt := range repo.db.options {
		if opt.QuestionID == questionID {
			opts = append(opts, opt)
		}
	}
	sort.Slice(opts, func(i, j int) bool { return opts[i].Letter < opts[j].Letter })
	return opts
}

func (repo *quizRepository) QueryQuestions(_ context.Context, quizID string, _ ...core.DBExecutor) ([]quiz.Question, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	questions := make([]quiz.Question, 0)
	for _, q := range repo.db.questions {
		if q.QuizID == quizID {
			q.Options = repo.questionOptions(q.ID)
			questions = append(questions, q)
		}
	}
	sort.Slice(questions, func(i, j int) bool {
		if questions[i].Numero != questions[j].Numero {
			return questions[i].Numero < questions[j].Numero
		}
		return questions[i].ID < questions[j].ID
	})
	return questions, nil
}

func (repo *quizRepository) GetQuestion(_ context.Context, id string, _ ...core.DBExecutor) (quiz.Question, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	q, ok := repo.db.questions[id]
	if !ok {
		return quiz.Question{}, quiz.ErrQuestionNotFound
	}
	q.Options = repo.questionOptions(q.ID)
	return q, nil
}

func (repo *quizRepository) CorrectOptions(_ context.Context, questionIDs []string, _ ...core.DBExecutor) ([]quiz.AnswerOption, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	wanted := make(map[string]struct{}, len(questionIDs))
	for _, id := range questionIDs {
		wanted[id] = struct{}{}
	}
	opts := make([]quiz.AnswerOption, 0, len(questionIDs))
	for _, opt := range repo.db.options {
		if _, ok := wanted[opt.QuestionID]; ok && opt.Correct {
			opts = append(opts, opt)
		}
	}
	sort.Slice(opts, func(i, j int) bool {
		if opts[i].QuestionID != opts[j].QuestionID {
			return opts[i].QuestionID < opts[j].QuestionID
		}
		return opts[i].Letter < opts[j].Letter
	})
	return opts, nil
}

func (repo *quizRepository) CountQuizzesInFolder(_ context.Context, folderID string, _ ...core.DBExecutor) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var n int
	for _, qz := range repo.db.quizzes {
		if core.StringValue(qz.FolderID) == folderID {
			n++
		}
	}
	return n, nil
}
