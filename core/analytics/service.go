package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/attempt"
	"github.com/trezcool/mtihani/core/quiz"
)

// ErrCacheMiss is returned by Cache.Get when nothing is stored under the key.
var ErrCacheMiss = errors.New("cache miss")

type (
	// Repository is the read model gathering the inputs of Score.
	Repository interface {
		// QuizQuestions returns the questions of a quiz ordered by numero, without options.
		QuizQuestions(ctx context.Context, quizID string) ([]quiz.Question, error)
		// RespondentResponses returns every stored response of the respondent to the questions,
		// duplicates included, ordered by created_at then id.
		RespondentResponses(ctx context.Context, respondentID string, questionIDs []string) ([]attempt.Response, error)
		// CorrectOptions returns the options flagged correct among the questions.
		CorrectOptions(ctx context.Context, questionIDs []string) ([]quiz.AnswerOption, error)
	}

	// Ledger tells whether a respondent completed a quiz. attempt.Repository is one.
	Ledger interface {
		GetCompletion(ctx context.Context, respondentID, quizID string, exec ...core.DBExecutor) (attempt.Completion, error)
	}

	Cache interface {
		Get(ctx context.Context, key string) (Summary, error)
		Set(ctx context.Context, key string, sum Summary) error
	}

	Service struct {
		repo   Repository
		ledger Ledger
		cache  Cache // optional
		logger core.Logger
	}
)

var _ attempt.Scorer = (*Service)(nil) // interface compliance check

func NewService(repo Repository, ledger Ledger, cache Cache, logger core.Logger) *Service {
	return &Service{
		repo:   repo,
		ledger: ledger,
		cache:  cache,
		logger: logger,
	}
}

// CacheKey identifies the result of one completion. A redone attempt has a new completed_at, hence a new key.
func CacheKey(respondentID, quizID string, completedAt time.Time) string {
	return fmt.Sprintf("result:%s:%s:%d", quizID, respondentID, completedAt.UnixNano())
}

// Result returns the summary of a completed attempt, or ErrNotCompleted.
func (svc *Service) Result(ctx context.Context, respondent core.Respondent, quizID string) (Summary, error) {
	comp, err := svc.ledger.GetCompletion(ctx, respondent.ID, quizID)
	if err != nil {
		return Summary{}, errors.Wrap(err, "checking completion")
	}
	if !comp.Completed {
		return Summary{}, attempt.ErrNotCompleted
	}

	key := CacheKey(respondent.ID, quizID, comp.CompletedAt)
	if svc.cache != nil {
		sum, err := svc.cache.Get(ctx, key)
		switch {
		case err == nil:
			return sum, nil
		case errors.Cause(err) != ErrCacheMiss:
			svc.logger.Warn(fmt.Sprintf("reading cached result %s: %v", key, err), err, respondent)
		}
	}

	sum, err := svc.compute(ctx, respondent.ID, quizID)
	if err != nil {
		return Summary{}, err
	}
	if svc.cache != nil {
		if err := svc.cache.Set(ctx, key, sum); err != nil {
			svc.logger.Warn(fmt.Sprintf("caching result %s: %v", key, err), err, respondent)
		}
	}
	return sum, nil
}

// Overall implements attempt.Scorer. It does not consult the ledger.
func (svc *Service) Overall(ctx context.Context, respondentID, quizID string) (core.Score, error) {
	sum, err := svc.compute(ctx, respondentID, quizID)
	if err != nil {
		return core.Score{}, err
	}
	return sum.Overall, nil
}

func (svc *Service) compute(ctx context.Context, respondentID, quizID string) (Summary, error) {
	questions, err := svc.repo.QuizQuestions(ctx, quizID)
	if err != nil {
		return Summary{}, errors.Wrap(err, "querying questions")
	}

	var (
		responses []attempt.Response
		key       = map[string]string{}
	)
	if len(questions) > 0 {
		ids := make([]string, 0, len(questions))
		for _, q := range questions {
			ids = append(ids, q.ID)
		}
		if responses, err = svc.repo.RespondentResponses(ctx, respondentID, ids); err != nil {
			return Summary{}, errors.Wrap(err, "querying responses")
		}
		opts, err := svc.repo.CorrectOptions(ctx, ids)
		if err != nil {
			return Summary{}, errors.Wrap(err, "querying answer key")
		}
		key = quiz.BuildAnswerKey(opts)
	}

	sum := Score(questions, responses, key)
	sum.QuizID = quizID
	sum.RespondentID = respondentID
	return sum, nil
}
