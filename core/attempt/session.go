package attempt

import (
	"time"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/quiz"
)

// Session is one respondent's pass over a quiz.
// Answering sessions move freely between questions and hold working answers in memory;
// only Service.SubmitCurrent persists. Completed sessions are read-only.
type Session struct {
	Respondent core.Respondent
	QuizID     string

	questions   []quiz.Question
	answers     map[string]string // question id -> letter
	index       int
	mode        Mode
	completedAt time.Time
}

func newSession(respondent core.Respondent, quizID string, questions []quiz.Question, answers map[string]string) *Session {
	if answers == nil {
		answers = make(map[string]string)
	}
	s := &Session{
		Respondent: respondent,
		QuizID:     quizID,
		questions:  questions,
		answers:    answers,
		mode:       Answering,
	}

	// resume on the first unanswered question
	s.index = len(questions) - 1
	for i, q := range questions {
		if answers[q.ID] == "" {
			s.index = i
			break
		}
	}
	if s.index < 0 {
		s.index = 0
	}
	return s
}

func completedSession(respondent core.Respondent, quizID string, questions []quiz.Question, c Completion) *Session {
	s := newSession(respondent, quizID, questions, nil)
	s.complete(c)
	return s
}

func (s *Session) Mode() Mode { return s.mode }
func (s *Session) Index() int { return s.index }
func (s *Session) Len() int   { return len(s.questions) }

func (s *Session) IsLast() bool { return s.index == len(s.questions)-1 }

func (s *Session) CompletedAt() time.Time { return s.completedAt }

// Current returns the question at the current index; false for quizzes without questions.
func (s *Session) Current() (quiz.Question, bool) {
	if s.index < 0 || s.index >= len(s.questions) {
		return quiz.Question{}, false
	}
	return s.questions[s.index], true
}

// Answer returns the working answer for a question, "" when none.
func (s *Session) Answer(questionID string) string {
	return s.answers[questionID]
}

// Answers returns a copy of the working answers.
func (s *Session) Answers() map[string]string {
	answers := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	return answers
}

// Select sets the working answer of the current question. Nothing is persisted.
func (s *Session) Select(letter string) error {
	if s.mode == Completed {
		return ErrCompleted
	}
	q, ok := s.Current()
	if !ok {
		return ErrNoQuestions
	}
	letter = core.CleanString(letter, true /* lower */)
	if !q.HasLetter(letter) {
		return ErrInvalidLetter
	}
	s.answers[q.ID] = letter
	return nil
}

// Next moves to the following question, staying on the last one.
func (s *Session) Next() {
	if s.index < len(s.questions)-1 {
		s.index++
	}
}

// Previous moves to the preceding question, staying on the first one.
func (s *Session) Previous() {
	if s.index > 0 {
		s.index--
	}
}

// GoTo moves to the question with the given id.
func (s *Session) GoTo(questionID string) error {
	for i, q := range s.questions {
		if q.ID == questionID {
			s.index = i
			return nil
		}
	}
	return quiz.ErrQuestionNotFound
}

func (s *Session) complete(c Completion) {
	s.mode = Completed
	s.completedAt = c.CompletedAt
}

// View is the serializable state of a Session.
type View struct {
	QuizID      string            `json:"quiz_id"`
	Mode        Mode              `json:"mode"`
	Index       int               `json:"index"`
	Total       int               `json:"total"`
	QuestionID  string            `json:"question_id,omitempty"`
	Answers     map[string]string `json:"answers"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

func (s *Session) View() View {
	v := View{
		QuizID:  s.QuizID,
		Mode:    s.mode,
		Index:   s.index,
		Total:   len(s.questions),
		Answers: s.Answers(),
	}
	if q, ok := s.Current(); ok && s.mode == Answering {
		v.QuestionID = q.ID
	}
	if s.mode == Completed {
		at := s.completedAt
		v.CompletedAt = &at
	}
	return v
}
