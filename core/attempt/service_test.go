package attempt_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/attempt"
	"github.com/trezcool/mtihani/core/quiz"
	"github.com/trezcool/mtihani/tests"
)

func newQuiz(t *testing.T, env *testutil.Env) quiz.Quiz {
	return testutil.CreateQuiz(t, env.Quizzes, testutil.Teacher,
		testutil.Question("Math", "easy", "a"),
		testutil.Question("Math", "medium", "b"),
		testutil.Question("Physics", "hard", "c"),
	)
}

func TestService_Open(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	qz := newQuiz(t, env)

	t.Run("unknown quiz", func(t *testing.T) {
		_, err := env.Attempts.Open(ctx, testutil.Student, "nope")
		assert.Equal(t, quiz.ErrNotFound, errors.Cause(err))
	})

	t.Run("fresh", func(t *testing.T) {
		s, err := env.Attempts.Open(ctx, testutil.Student, qz.ID)
		require.NoError(t, err)
		assert.Equal(t, attempt.Answering, s.Mode())
		assert.Equal(t, 0, s.Index())
		assert.Equal(t, 3, s.Len())
		assert.Empty(t, s.Answers())
	})

	t.Run("resumes after the last stored response", func(t *testing.T) {
		testutil.AnswerAll(t, env.Attempts, testutil.Student, qz, "a", "a")

		s, err := env.Attempts.Open(ctx, testutil.Student, qz.ID)
		require.NoError(t, err)
		assert.Equal(t, attempt.Answering, s.Mode())
		assert.Equal(t, 2, s.Index())
		assert.Equal(t, map[string]string{qz.Questions[0].ID: "a", qz.Questions[1].ID: "a"}, s.Answers())
	})

	t.Run("other respondents start fresh", func(t *testing.T) {
		s, err := env.Attempts.Open(ctx, testutil.Student2, qz.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, s.Index())
		assert.Empty(t, s.Answers())
	})
}

func TestService_SubmitCurrent(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	qz := newQuiz(t, env)

	s, err := env.Attempts.Open(ctx, testutil.Student, qz.ID)
	require.NoError(t, err)

	_, err = env.Attempts.SubmitCurrent(ctx, s)
	assert.Equal(t, attempt.ErrNoAnswer, err)

	require.NoError(t, s.Select("a"))
	resp, err := env.Attempts.SubmitCurrent(ctx, s)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, qz.Questions[0].ID, resp.QuestionID)
	assert.Equal(t, attempt.Answering, s.Mode(), "only the last question completes the quiz")

	s.Next()
	require.NoError(t, s.Select("b"))
	_, err = env.Attempts.SubmitCurrent(ctx, s)
	require.NoError(t, err)
	assert.Empty(t, env.Sink.Events())

	s.Next()
	require.True(t, s.IsLast())
	require.NoError(t, s.Select("a"))
	_, err = env.Attempts.SubmitCurrent(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, attempt.Completed, s.Mode())

	comp, err := env.Attempts.Completion(ctx, testutil.Student.ID, qz.ID)
	require.NoError(t, err)
	assert.True(t, comp.Completed)
	assert.Equal(t, comp.CompletedAt, s.CompletedAt())

	_, err = env.Attempts.SubmitCurrent(ctx, s)
	assert.Equal(t, attempt.ErrCompleted, err)

	events := env.Sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, core.QuizCompleted{
		RespondentID: testutil.Student.ID,
		Username:     testutil.Student.Username,
		QuizID:       qz.ID,
		CompletedAt:  comp.CompletedAt,
		Score:        core.Score{Total: 3, Correct: 2, Incorrect: 1, Percentage: 67},
	}, events[0])
}

func TestService_Submit(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	qz := newQuiz(t, env)
	q1 := qz.Questions[0]

	tests := []struct {
		name       string
		questionID string
		letter     string
		wantErr    error
	}{
		{name: "unknown question", questionID: "nope", letter: "a", wantErr: quiz.ErrQuestionNotFound},
		{name: "unknown letter", questionID: q1.ID, letter: "z", wantErr: attempt.ErrInvalidLetter},
		{name: "blank letter", questionID: q1.ID, letter: " ", wantErr: attempt.ErrInvalidLetter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := env.Attempts.Submit(ctx, testutil.Student, qz.ID, tt.questionID, tt.letter)
			assert.Equal(t, tt.wantErr, errors.Cause(err))
		})
	}

	t.Run("resubmitting updates the single response", func(t *testing.T) {
		first, err := submit(ctx, env, qz, 0, "b")
		require.NoError(t, err)
		second, err := submit(ctx, env, qz, 0, "C")
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "c", second.Letter)

		responses, err := env.AttemptRepo.QueryResponses(ctx, testutil.Student.ID, []string{q1.ID})
		require.NoError(t, err)
		require.Len(t, responses, 1)
		assert.Equal(t, "c", responses[0].Letter)
	})
}

func submit(ctx context.Context, env *testutil.Env, qz quiz.Quiz, i int, letter string) (attempt.Response, error) {
	_, resp, err := env.Attempts.Submit(ctx, testutil.Student, qz.ID, qz.Questions[i].ID, letter)
	return resp, err
}

// A completed quiz re-opens read-only until its ledger entry is cleared.
func TestService_completionLifecycle(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	qz := newQuiz(t, env)

	testutil.AnswerAll(t, env.Attempts, testutil.Student, qz, "a", "b", "c")

	s, err := env.Attempts.Open(ctx, testutil.Student, qz.ID)
	require.NoError(t, err)
	assert.Equal(t, attempt.Completed, s.Mode())
	assert.Equal(t, attempt.ErrCompleted, s.Select("a"))

	_, _, err = env.Attempts.Submit(ctx, testutil.Student, qz.ID, qz.Questions[0].ID, "b")
	assert.Equal(t, attempt.ErrCompleted, errors.Cause(err))

	comps, err := env.Attempts.Completions(ctx, qz.ID)
	require.NoError(t, err)
	require.Len(t, comps, 1)
	assert.Equal(t, testutil.Student.ID, comps[0].RespondentID)

	require.NoError(t, env.Attempts.ClearCompletion(ctx, testutil.Student.ID, qz.ID))
	err = env.Attempts.ClearCompletion(ctx, testutil.Student.ID, qz.ID)
	assert.Equal(t, attempt.ErrNotCompleted, errors.Cause(err))

	s, err = env.Attempts.Open(ctx, testutil.Student, qz.ID)
	require.NoError(t, err)
	assert.Equal(t, attempt.Answering, s.Mode())
	assert.Equal(t, "b", s.Answer(qz.Questions[1].ID), "stored responses survive a cleared completion")

	comps, err = env.Attempts.Completions(ctx, qz.ID)
	require.NoError(t, err)
	assert.NotNil(t, comps)
	assert.Empty(t, comps)
}

// Legacy data may hold several responses per question; the earliest one is the answer.
func TestService_Open_duplicateResponses(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	qz := newQuiz(t, env)
	q1 := qz.Questions[0]

	t0 := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)
	for _, r := range []attempt.Response{
		{ID: "dup-2", Letter: "c", CreatedAt: t0.Add(time.Minute)},
		{ID: "dup-1", Letter: "b", CreatedAt: t0},
	} {
		r.RespondentID = testutil.Student.ID
		r.QuizID = qz.ID
		r.QuestionID = q1.ID
		r.UpdatedAt = r.CreatedAt
		env.DB.InsertResponse(r)
	}

	s, err := env.Attempts.Open(ctx, testutil.Student, qz.ID)
	require.NoError(t, err)
	assert.Equal(t, "b", s.Answer(q1.ID))
	assert.Equal(t, 1, s.Index())
}

func TestService_notificationFailure(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	env.Sink.Err = errors.New("sink down")
	qz := testutil.CreateQuiz(t, env.Quizzes, testutil.Teacher, testutil.Question("Math", "easy", "a"))

	s, resp, err := env.Attempts.Submit(ctx, testutil.Student, qz.ID, qz.Questions[0].ID, "a")
	require.NoError(t, err, "sink failures never fail a submission")
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, attempt.Completed, s.Mode())
	assert.Empty(t, env.Sink.Events())
}
