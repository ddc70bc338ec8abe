package analytics

import (
	"sort"
	"strings"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/attempt"
	"github.com/trezcool/mtihani/core/quiz"
)

// NoLetter stands for a missing response or a missing answer key.
const NoLetter = "-"

type (
	QuestionResult struct {
		QuestionID string `json:"question_id"`
		Numero     int    `json:"numero"`
		Chosen     string `json:"chosen"`
		Answer     string `json:"answer"`
		Correct    bool   `json:"correct"`
		Subject    string `json:"subject"`
		Difficulty string `json:"difficulty"` // canonical tier
	}

	TierBucket struct {
		Difficulty string `json:"difficulty"`
		core.Score
	}

	// SubjectBucket aggregates the questions tagged with the exact same subject string.
	SubjectBucket struct {
		Subject string `json:"subject"`
		core.Score
	}

	// Summary is the result of one respondent on one quiz.
	// Slices, not maps, keep its JSON form stable.
	Summary struct {
		QuizID       string           `json:"quiz_id,omitempty"`
		RespondentID string           `json:"respondent_id,omitempty"`
		Overall      core.Score       `json:"overall"`
		Difficulty   []TierBucket     `json:"difficulty"` // easy, medium, hard
		Subjects     []SubjectBucket  `json:"subjects"`   // in order of first appearance
		Questions    []QuestionResult `json:"questions"`  // by numero
	}
)

type tally struct{ correct, total int }

func (t *tally) add(ok bool) {
	t.total++
	if ok {
		t.correct++
	}
}

func (t tally) score() core.Score { return core.NewScore(t.correct, t.total) }

// Score computes the result summary of one attempt. It has no side effects.
// responses may hold several records for a question: the first by (created_at, id) counts.
// key maps question ids to correct letters; questions missing from it can never be answered correctly.
func Score(questions []quiz.Question, responses []attempt.Response, key map[string]string) Summary {
	ordered := make([]quiz.Question, len(questions))
	copy(ordered, questions)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Numero != ordered[j].Numero {
			return ordered[i].Numero < ordered[j].Numero
		}
		return ordered[i].ID < ordered[j].ID
	})
	answers := attempt.FirstAnswers(responses)

	var overall tally
	tiers := make(map[string]*tally, len(quiz.Difficulties))
	for _, d := range quiz.Difficulties {
		tiers[d] = &tally{}
	}
	subjects := make(map[string]*tally)
	var subjectOrder []string

	results := make([]QuestionResult, 0, len(ordered))
	for _, q := range ordered {
		chosen, answer := letterOrNone(answers[q.ID]), letterOrNone(key[q.ID])
		ok := chosen != NoLetter && answer != NoLetter && strings.EqualFold(chosen, answer)
		tier := quiz.CoerceDifficulty(q.Difficulty)

		results = append(results, QuestionResult{
			QuestionID: q.ID,
			Numero:     q.Numero,
			Chosen:     chosen,
			Answer:     answer,
			Correct:    ok,
			Subject:    q.Subject,
			Difficulty: tier,
		})

		overall.add(ok)
		tiers[tier].add(ok)
		st, seen := subjects[q.Subject]
		if !seen {
			st = &tally{}
			subjects[q.Subject] = st
			subjectOrder = append(subjectOrder, q.Subject)
		}
		st.add(ok)
	}

	sum := Summary{
		Overall:    overall.score(),
		Difficulty: make([]TierBucket, 0, len(quiz.Difficulties)),
		Subjects:   make([]SubjectBucket, 0, len(subjectOrder)),
		Questions:  results,
	}
	for _, d := range quiz.Difficulties {
		sum.Difficulty = append(sum.Difficulty, TierBucket{Difficulty: d, Score: tiers[d].score()})
	}
	for _, s := range subjectOrder {
		sum.Subjects = append(sum.Subjects, SubjectBucket{Subject: s, Score: subjects[s].score()})
	}
	return sum
}

func letterOrNone(letter string) string {
	if letter = strings.TrimSpace(letter); letter == "" {
		return NoLetter
	}
	return letter
}
