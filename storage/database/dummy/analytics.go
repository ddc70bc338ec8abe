package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/mtihani/core/analytics"
	"github.com/trezcool/mtihani/core/attempt"
	"github.com/trezcool/mtihani/core/quiz"
)

type analyticsRepository struct {
	db *DB
}

var _ analytics.Repository = (*analyticsRepository)(nil) // interface compliance check

func NewAnalyticsRepository(db *DB) analytics.Repository {
	return &analyticsRepository{db: db}
}

func (repo *analyticsRepository) QuizQuestions(_ context.Context, quizID string) ([]quiz.Question, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	questions := make([]quiz.Question, 0)
	for _, q := range repo.db.questions {
		if q.QuizID == quizID {
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

func (repo *analyticsRepository) RespondentResponses(_ context.Context, respondentID string, questionIDs []string) ([]attempt.Response, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.db.queryResponses(respondentID, questionIDs), nil
}

func (repo *analyticsRepository) CorrectOptions(_ context.Context, questionIDs []string) ([]quiz.AnswerOption, error) {
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
	return opts, nil
}
