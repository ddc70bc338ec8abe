package analytics_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/analytics"
	"github.com/trezcool/mtihani/core/attempt"
	"github.com/trezcool/mtihani/tests"
)

func TestService_Result(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	qz := testutil.CreateQuiz(t, env.Quizzes, testutil.Teacher,
		testutil.Question("Math", "easy", "a"),
		testutil.Question("Math", "medium", "a", "a", "x", "y"),
		testutil.Question("Physics", "hard", "c"),
	)

	t.Run("not completed", func(t *testing.T) {
		_, err := env.Analytics.Result(ctx, testutil.Student, qz.ID)
		assert.Equal(t, attempt.ErrNotCompleted, errors.Cause(err))
	})

	// a on "a", x on "a", c on "c"
	testutil.AnswerAll(t, env.Attempts, testutil.Student, qz, "a", "x", "c")

	t.Run("completed", func(t *testing.T) {
		sum, err := env.Analytics.Result(ctx, testutil.Student, qz.ID)
		require.NoError(t, err)

		assert.Equal(t, qz.ID, sum.QuizID)
		assert.Equal(t, testutil.Student.ID, sum.RespondentID)
		assert.Equal(t, core.Score{Total: 3, Correct: 2, Incorrect: 1, Percentage: 67}, sum.Overall)
		assert.Equal(t, []analytics.TierBucket{
			{Difficulty: "easy", Score: core.Score{Total: 1, Correct: 1, Percentage: 100}},
			{Difficulty: "medium", Score: core.Score{Total: 1, Incorrect: 1, Percentage: 0}},
			{Difficulty: "hard", Score: core.Score{Total: 1, Correct: 1, Percentage: 100}},
		}, sum.Difficulty)
	})

	t.Run("cached", func(t *testing.T) {
		hits := env.ResultsCache.Hits
		_, err := env.Analytics.Result(ctx, testutil.Student, qz.ID)
		require.NoError(t, err)
		assert.Equal(t, hits+1, env.ResultsCache.Hits)
	})

	t.Run("other respondent", func(t *testing.T) {
		_, err := env.Analytics.Result(ctx, testutil.Student2, qz.ID)
		assert.Equal(t, attempt.ErrNotCompleted, errors.Cause(err))
	})
}

func TestService_ResultAfterRedo(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	qz := testutil.CreateQuiz(t, env.Quizzes, testutil.Teacher, testutil.Question("Math", "easy", "a"))

	testutil.AnswerAll(t, env.Attempts, testutil.Student, qz, "b")
	sum, err := env.Analytics.Result(ctx, testutil.Student, qz.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Overall.Correct)

	require.NoError(t, env.Attempts.ClearCompletion(ctx, testutil.Student.ID, qz.ID))
	_, err = env.Analytics.Result(ctx, testutil.Student, qz.ID)
	assert.Equal(t, attempt.ErrNotCompleted, errors.Cause(err))

	testutil.AnswerAll(t, env.Attempts, testutil.Student, qz, "a")
	sum, err = env.Analytics.Result(ctx, testutil.Student, qz.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Overall.Correct, "a new completion must not be served from the previous cache entry")
}

func TestService_Overall(t *testing.T) {
	env := testutil.NewEnv(t)
	qz := testutil.CreateQuiz(t, env.Quizzes, testutil.Teacher,
		testutil.Question("Math", "easy", "a"),
		testutil.Question("Math", "easy", "b"),
	)

	score, err := env.Analytics.Overall(context.Background(), testutil.Student.ID, qz.ID)
	require.NoError(t, err)
	assert.Equal(t, core.Score{Total: 2, Incorrect: 2}, score)
}
