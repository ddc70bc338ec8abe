package attempt

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/quiz"
)

var (
	// errors
	ErrNotCompleted  = errors.New("quiz not completed")
	ErrCompleted     = errors.New("quiz already completed")
	ErrNoAnswer      = errors.New("no answer selected for the current question")
	ErrInvalidLetter = errors.New("no such option for the current question")
	ErrNoQuestions   = errors.New("quiz has no questions")
)

type (
	Repository interface {
		// UpsertResponse inserts the response, or updates the letter of the existing (respondent, question) one.
		UpsertResponse(ctx context.Context, r Response, exec ...core.DBExecutor) (Response, error)
		// QueryResponses returns the respondent's responses to the questions, ordered by created_at then id.
		QueryResponses(ctx context.Context, respondentID string, questionIDs []string, exec ...core.DBExecutor) ([]Response, error)
		// UpsertCompletion inserts the completion, or refreshes completed_at of the existing one.
		UpsertCompletion(ctx context.Context, c Completion, exec ...core.DBExecutor) (Completion, error)
		// GetCompletion fails with ErrNotCompleted when the respondent has not finished the quiz.
		GetCompletion(ctx context.Context, respondentID, quizID string, exec ...core.DBExecutor) (Completion, error)
		DeleteCompletion(ctx context.Context, respondentID, quizID string, exec ...core.DBExecutor) error
		// QueryCompletions returns the completions of a quiz, latest first.
		QueryCompletions(ctx context.Context, quizID string, exec ...core.DBExecutor) ([]Completion, error)
	}

	// QuestionSource supplies the ordered questions of a quiz.
	QuestionSource interface {
		Questions(ctx context.Context, quizID string) ([]quiz.Question, error)
	}

	// Scorer computes the overall score of a completed attempt.
	Scorer interface {
		Overall(ctx context.Context, respondentID, quizID string) (core.Score, error)
	}

	Service struct {
		repo      Repository
		questions QuestionSource
		scorer    Scorer
		notifier  core.Notifier
		logger    core.Logger
	}
)

func NewService(repo Repository, questions QuestionSource, scorer Scorer, notifier core.Notifier, logger core.Logger) *Service {
	return &Service{
		repo:      repo,
		questions: questions,
		scorer:    scorer,
		notifier:  notifier,
		logger:    logger,
	}
}

// Open starts (or resumes) a respondent's attempt at a quiz.
// A quiz already in the ledger opens Completed; otherwise the session is Answering,
// pre-filled with the responses stored so far.
func (svc *Service) Open(ctx context.Context, respondent core.Respondent, quizID string) (*Session, error) {
	questions, err := svc.questions.Questions(ctx, quizID)
	if err != nil {
		return nil, errors.Wrap(err, "getting questions")
	}

	comp, err := svc.repo.GetCompletion(ctx, respondent.ID, quizID)
	switch {
	case err == nil && comp.Completed:
		return completedSession(respondent, quizID, questions, comp), nil
	case err != nil && errors.Cause(err) != ErrNotCompleted:
		return nil, errors.Wrap(err, "checking completion")
	}

	ids := make([]string, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	var answers map[string]string
	if len(ids) > 0 {
		responses, err := svc.repo.QueryResponses(ctx, respondent.ID, ids)
		if err != nil {
			return nil, errors.Wrap(err, "querying responses")
		}
		answers = FirstAnswers(responses)
	}
	return newSession(respondent, quizID, questions, answers), nil
}

// SubmitCurrent stores the working answer of the current question.
// Submitting the last question records the completion, moves the session to Completed
// and notifies the completion sinks.
func (svc *Service) SubmitCurrent(ctx context.Context, s *Session) (Response, error) {
	if s.Mode() == Completed {
		return Response{}, ErrCompleted
	}
	q, ok := s.Current()
	if !ok {
		return Response{}, ErrNoQuestions
	}
	letter := s.Answer(q.ID)
	if letter == "" {
		return Response{}, ErrNoAnswer
	}

	now := core.NowFunc()
	resp, err := svc.repo.UpsertResponse(ctx, Response{
		RespondentID: s.Respondent.ID,
		QuizID:       s.QuizID,
		QuestionID:   q.ID,
		Letter:       letter,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return Response{}, errors.Wrapf(err, "saving response to question %d", q.Numero)
	}
	if !s.IsLast() {
		return resp, nil
	}

	comp, err := svc.repo.UpsertCompletion(ctx, Completion{
		RespondentID: s.Respondent.ID,
		QuizID:       s.QuizID,
		Completed:    true,
		CompletedAt:  now,
	})
	if err != nil {
		return Response{}, errors.Wrap(err, "recording completion")
	}
	s.complete(comp)
	svc.notifyCompleted(ctx, s.Respondent, comp)
	return resp, nil
}

// notifyCompleted is best-effort: failures are logged, never returned.
func (svc *Service) notifyCompleted(ctx context.Context, respondent core.Respondent, comp Completion) {
	if svc.notifier == nil {
		return
	}
	score, err := svc.scorer.Overall(ctx, respondent.ID, comp.QuizID)
	if err != nil {
		msg := fmt.Sprintf("scoring quiz %s for notification: %v", comp.QuizID, err)
		svc.logger.Error(msg, errors.Wrap(err, "scoring for notification"), respondent)
		return
	}
	svc.notifier.QuizCompleted(ctx, core.QuizCompleted{
		RespondentID: respondent.ID,
		Username:     respondent.Username,
		QuizID:       comp.QuizID,
		CompletedAt:  comp.CompletedAt,
		Score:        score,
	})
}

// Submit answers one question of a quiz in a single call: open, position, select, submit.
func (svc *Service) Submit(ctx context.Context, respondent core.Respondent, quizID, questionID, letter string) (*Session, Response, error) {
	s, err := svc.Open(ctx, respondent, quizID)
	if err != nil {
		return nil, Response{}, errors.Wrap(err, "opening session")
	}
	if s.Mode() == Completed {
		return s, Response{}, ErrCompleted
	}
	if err = s.GoTo(questionID); err != nil {
		return s, Response{}, err
	}
	if err = s.Select(letter); err != nil {
		return s, Response{}, err
	}
	resp, err := svc.SubmitCurrent(ctx, s)
	if err != nil {
		return s, Response{}, err
	}
	return s, resp, nil
}

// Completion returns the ledger entry of a respondent for a quiz, or ErrNotCompleted.
func (svc *Service) Completion(ctx context.Context, respondentID, quizID string) (Completion, error) {
	return svc.repo.GetCompletion(ctx, respondentID, quizID)
}

// Completions lists who finished a quiz, latest first.
func (svc *Service) Completions(ctx context.Context, quizID string) ([]Completion, error) {
	comps, err := svc.repo.QueryCompletions(ctx, quizID)
	if err != nil {
		return nil, errors.Wrap(err, "querying completions")
	}
	if comps == nil {
		comps = []Completion{}
	}
	return comps, nil
}

// ClearCompletion removes a ledger entry so the respondent may answer the quiz again.
// Stored responses are kept and pre-fill the next session.
func (svc *Service) ClearCompletion(ctx context.Context, respondentID, quizID string) error {
	if _, err := svc.repo.GetCompletion(ctx, respondentID, quizID); err != nil {
		return errors.Wrap(err, "getting completion")
	}
	return svc.repo.DeleteCompletion(ctx, respondentID, quizID)
}
