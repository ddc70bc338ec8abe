package analytics

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/attempt"
	"github.com/trezcool/mtihani/core/quiz"
)

func question(id string, numero int, subject, difficulty string) quiz.Question {
	return quiz.Question{ID: id, Numero: numero, Subject: subject, Difficulty: difficulty}
}

func response(id, questionID, letter string, at time.Time) attempt.Response {
	return attempt.Response{ID: id, RespondentID: "r1", QuestionID: questionID, Letter: letter, CreatedAt: at}
}

func tier(sum Summary, difficulty string) core.Score {
	for _, b := range sum.Difficulty {
		if b.Difficulty == difficulty {
			return b.Score
		}
	}
	return core.Score{}
}

func TestScore_easyMediumHard(t *testing.T) {
	now := time.Now()
	questions := []quiz.Question{
		question("q1", 1, "Math", "easy"),
		question("q2", 2, "Math", "medium"),
		question("q3", 3, "Physics", "hard"),
	}
	responses := []attempt.Response{
		response("r1", "q1", "a", now),
		response("r2", "q2", "b", now),
		response("r3", "q3", "c", now),
	}
	key := map[string]string{"q1": "a", "q2": "x", "q3": "c"}

	sum := Score(questions, responses, key)

	assert.Equal(t, core.Score{Total: 3, Correct: 2, Incorrect: 1, Percentage: 67}, sum.Overall)
	assert.Equal(t, 100, tier(sum, quiz.Easy).Percentage)
	assert.Equal(t, 0, tier(sum, quiz.Medium).Percentage)
	assert.Equal(t, 100, tier(sum, quiz.Hard).Percentage)
	assert.Equal(t, []SubjectBucket{
		{Subject: "Math", Score: core.Score{Total: 2, Correct: 1, Incorrect: 1, Percentage: 50}},
		{Subject: "Physics", Score: core.Score{Total: 1, Correct: 1, Incorrect: 0, Percentage: 100}},
	}, sum.Subjects)
	assert.Equal(t, QuestionResult{
		QuestionID: "q2", Numero: 2, Chosen: "b", Answer: "x", Correct: false, Subject: "Math", Difficulty: quiz.Medium,
	}, sum.Questions[1])
}

func TestScore_noQuestions(t *testing.T) {
	sum := Score(nil, nil, nil)

	assert.Equal(t, core.Score{}, sum.Overall)
	require.Len(t, sum.Difficulty, 3)
	for _, b := range sum.Difficulty {
		assert.Equal(t, 0, b.Percentage)
	}
	assert.Empty(t, sum.Subjects)
	assert.NotNil(t, sum.Questions)
}

func TestScore_letterCaseIgnored(t *testing.T) {
	questions := []quiz.Question{question("q1", 1, "Math", "easy")}
	responses := []attempt.Response{response("r1", "q1", "B", time.Now())}

	sum := Score(questions, responses, map[string]string{"q1": "b"})

	assert.True(t, sum.Questions[0].Correct)
	assert.Equal(t, 1, sum.Overall.Correct)
}

func TestScore_missingLetters(t *testing.T) {
	questions := []quiz.Question{
		question("q1", 1, "Math", "easy"),   // unanswered
		question("q2", 2, "Math", "easy"),   // no key
		question("q3", 3, "Math", "medium"), // neither
	}
	responses := []attempt.Response{response("r2", "q2", "a", time.Now())}

	sum := Score(questions, responses, map[string]string{"q1": "a"})

	assert.Equal(t, NoLetter, sum.Questions[0].Chosen)
	assert.Equal(t, "a", sum.Questions[0].Answer)
	assert.Equal(t, "a", sum.Questions[1].Chosen)
	assert.Equal(t, NoLetter, sum.Questions[1].Answer)
	assert.Equal(t, NoLetter, sum.Questions[2].Chosen)
	assert.Equal(t, NoLetter, sum.Questions[2].Answer)
	for _, qr := range sum.Questions {
		assert.False(t, qr.Correct)
	}
	assert.Equal(t, core.Score{Total: 3, Correct: 0, Incorrect: 3, Percentage: 0}, sum.Overall)
}

func TestScore_unknownDifficultyIsMedium(t *testing.T) {
	tests := []struct {
		name       string
		difficulty string
		want       string
	}{
		{name: "typo", difficulty: "hard!", want: quiz.Medium},
		{name: "empty", difficulty: "", want: quiz.Medium},
		{name: "spaces", difficulty: "   ", want: quiz.Medium},
		{name: "other word", difficulty: "extreme", want: quiz.Medium},
		{name: "upper case", difficulty: "HARD", want: quiz.Hard},
		{name: "padded", difficulty: " Easy ", want: quiz.Easy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questions := []quiz.Question{question("q1", 1, "Math", tt.difficulty)}
			sum := Score(questions, nil, map[string]string{"q1": "a"})

			assert.Equal(t, tt.want, sum.Questions[0].Difficulty)
			assert.Equal(t, 1, tier(sum, tt.want).Total)
		})
	}
}

// Subject tags are aggregated verbatim: "Math" and "math " are two buckets.
// AuditSubjects reports such pairs; scoring does not merge them.
func TestScore_subjectsNotNormalized(t *testing.T) {
	questions := []quiz.Question{
		question("q1", 1, "Math", "easy"),
		question("q2", 2, "math ", "easy"),
		question("q3", 3, "Math", "easy"),
	}
	sum := Score(questions, nil, nil)

	require.Len(t, sum.Subjects, 2)
	assert.Equal(t, "Math", sum.Subjects[0].Subject)
	assert.Equal(t, 2, sum.Subjects[0].Total)
	assert.Equal(t, "math ", sum.Subjects[1].Subject)
	assert.Equal(t, 1, sum.Subjects[1].Total)
}

func TestScore_duplicateResponsesFirstWins(t *testing.T) {
	t0 := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)
	questions := []quiz.Question{question("q1", 1, "Math", "easy")}
	key := map[string]string{"q1": "a"}

	tests := []struct {
		name      string
		responses []attempt.Response
		want      string
	}{
		{
			name: "earliest created_at",
			responses: []attempt.Response{
				response("r-2", "q1", "b", t0.Add(time.Minute)),
				response("r-9", "q1", "a", t0),
			},
			want: "a",
		},
		{
			name: "same created_at, lowest id",
			responses: []attempt.Response{
				response("r-b", "q1", "c", t0),
				response("r-a", "q1", "b", t0),
			},
			want: "b",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum := Score(questions, tt.responses, key)
			assert.Equal(t, tt.want, sum.Questions[0].Chosen)

			// input order does not matter
			reversed := []attempt.Response{tt.responses[1], tt.responses[0]}
			assert.Equal(t, tt.want, Score(questions, reversed, key).Questions[0].Chosen)
		})
	}
}

func TestScore_orderedByNumero(t *testing.T) {
	questions := []quiz.Question{
		question("q3", 3, "C", "easy"),
		question("q1", 1, "A", "easy"),
		question("q2", 2, "B", "easy"),
	}
	sum := Score(questions, nil, nil)

	for i, qr := range sum.Questions {
		assert.Equal(t, i+1, qr.Numero)
	}
	assert.Equal(t, "A", sum.Subjects[0].Subject)
}

func TestScore_bucketsAddUp(t *testing.T) {
	now := time.Now()
	difficulties := []string{"easy", "medium", "hard", "HARD", "", "nope", "Easy"}
	var (
		questions []quiz.Question
		responses []attempt.Response
		key       = make(map[string]string)
	)
	for i, d := range difficulties {
		id := string(rune('a' + i))
		questions = append(questions, question(id, i+1, "S", d))
		responses = append(responses, response("r"+id, id, "a", now))
		if i%2 == 0 {
			key[id] = "a"
		} else {
			key[id] = "b"
		}
	}

	sum := Score(questions, responses, key)

	var correct, incorrect, total int
	for _, b := range sum.Difficulty {
		correct += b.Correct
		incorrect += b.Incorrect
		total += b.Total
		assert.Equal(t, core.Percentage(b.Correct, b.Total), b.Percentage)
	}
	assert.Equal(t, len(questions), correct+incorrect)
	assert.Equal(t, len(questions), total)
	assert.Equal(t, sum.Overall.Correct, correct)
}

func TestScore_idempotent(t *testing.T) {
	now := time.Now()
	questions := []quiz.Question{
		question("q1", 1, "Math", "easy"),
		question("q2", 2, "Physics", "weird"),
		question("q3", 3, "Chemistry", "hard"),
	}
	responses := []attempt.Response{
		response("r1", "q1", "a", now),
		response("r2", "q2", "c", now),
		response("r3", "q2", "a", now.Add(time.Second)),
	}
	key := map[string]string{"q1": "a", "q2": "c"}

	first, err := json.Marshal(Score(questions, responses, key))
	require.NoError(t, err)
	second, err := json.Marshal(Score(questions, responses, key))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPercentageRounding(t *testing.T) {
	tests := []struct {
		correct, total, want int
	}{
		{0, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13}, // 12.5 rounds half away from zero
		{3, 8, 38}, // 37.5
		{5, 5, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, core.Percentage(tt.correct, tt.total), "%d/%d", tt.correct, tt.total)
	}
}
