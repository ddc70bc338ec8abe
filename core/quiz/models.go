package quiz

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mtihani/core"
)

// Difficulty tiers
const (
	Easy   = "easy"
	Medium = "medium"
	Hard   = "hard"
)

// Difficulties lists the canonical tiers, easiest first.
var Difficulties = []string{Easy, Medium, Hard}

// CoerceDifficulty maps a stored difficulty to its canonical tier.
// Anything that does not case-normalize to easy, medium or hard (including "") is medium.
func CoerceDifficulty(s string) string {
	switch d := core.CleanString(s, true /* lower */); d {
	case Easy, Medium, Hard:
		return d
	default:
		return Medium
	}
}

type Quiz struct {
	ID        string     `json:"id"`
	Period    string     `json:"period"` // free-text month label
	Year      int        `json:"year"`
	FolderID  *string    `json:"folder_id"`
	CreatedBy string     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"` // UTC
	Questions []Question `json:"questions,omitempty"`
}

type Question struct {
	ID         string         `json:"id"`
	QuizID     string         `json:"quiz_id"`
	Numero     int            `json:"numero"` // 1-based position within the quiz
	Prompt     string         `json:"prompt"`
	Image      string         `json:"image,omitempty"` // storage reference
	Subject    string         `json:"subject"`         // opaque, never normalized
	Difficulty string         `json:"difficulty"`      // as stored; see CoerceDifficulty
	Options    []AnswerOption `json:"options,omitempty"`
}

// CorrectOptions returns the options flagged correct, in letter order.
func (q Question) CorrectOptions() []AnswerOption {
	var correct []AnswerOption
	for _, opt := range q.Options {
		if opt.Correct {
			correct = append(correct, opt)
		}
	}
	return correct
}

// HasLetter reports whether one of q's options carries letter (already lower-cased).
func (q Question) HasLetter(letter string) bool {
	for _, opt := range q.Options {
		if opt.Letter == letter {
			return true
		}
	}
	return false
}

type AnswerOption struct {
	ID         string `json:"id"`
	QuestionID string `json:"question_id"`
	Letter     string `json:"letter"`
	Text       string `json:"text,omitempty"`
	Image      string `json:"image,omitempty"` // storage reference
	Correct    bool   `json:"correct,omitempty"`
}

// WithoutAnswers returns a copy of qz whose options carry no correct flag.
func (qz Quiz) WithoutAnswers() Quiz {
	questions := make([]Question, len(qz.Questions))
	for i, q := range qz.Questions {
		opts := make([]AnswerOption, len(q.Options))
		for j, opt := range q.Options {
			opt.Correct = false
			opts[j] = opt
		}
		q.Options = opts
		questions[i] = q
	}
	qz.Questions = questions
	return qz
}

// NewQuiz contains information needed to create a new Quiz.
type NewQuiz struct {
	Period    string        `json:"period" validate:"required,max=50"`
	Year      int           `json:"year" validate:"required,gte=1900,lte=9999"`
	FolderID  *string       `json:"folder_id" validate:"omitempty,uuid"`
	Questions []NewQuestion `json:"questions" validate:"required,min=1,dive"`
}

type NewQuestion struct {
	Prompt     string      `json:"prompt" validate:"required"`
	Image      string      `json:"image" validate:"max=500"`
	Subject    string      `json:"subject" validate:"required,max=100"`
	Difficulty string      `json:"difficulty" validate:"oneof=easy medium hard"`
	Options    []NewOption `json:"options" validate:"required,min=1,dive"`
}

type NewOption struct {
	Letter  string `json:"letter" validate:"required,letter"`
	Text    string `json:"text" validate:"required_without=Image"`
	Image   string `json:"image" validate:"max=500"`
	Correct bool   `json:"correct"`
}

func (nq *NewQuiz) Validate(validate *validator.Validate) error {
	nq.Period = core.CleanString(nq.Period)
	if nq.FolderID != nil {
		nq.FolderID = core.StringPtr(core.CleanString(*nq.FolderID))
	}
	for i := range nq.Questions {
		q := &nq.Questions[i]
		q.Prompt = core.CleanString(q.Prompt)
		q.Image = core.CleanString(q.Image)
		// subject is kept verbatim
		q.Difficulty = core.CleanString(q.Difficulty, true /* lower */)
		if q.Difficulty == "" {
			q.Difficulty = Medium
		}
		for j := range q.Options {
			opt := &q.Options[j]
			opt.Letter = core.CleanString(opt.Letter, true /* lower */)
			opt.Text = core.CleanString(opt.Text)
			opt.Image = core.CleanString(opt.Image)
		}
	}
	return validate.Struct(nq)
}

type QueryFilter struct {
	FolderID *string `query:"folder"`
	Year     int     `query:"year"`
	Search   string  `query:"search"` // case-insensitive match on the period label
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	if qf.FolderID != nil {
		qf.FolderID = core.StringPtr(core.CleanString(*qf.FolderID))
	}
}

// Ordering fields accepted by Query, mapped to column names.
var OrderingFields = map[string]string{
	"period":     "period",
	"year":       "year",
	"created_at": "created_at",
}
