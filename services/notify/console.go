package notifysvc

import (
	"context"
	"fmt"
	"sync"

	"github.com/trezcool/mtihani/core"
)

type ConsoleSink struct {
	logger core.Logger
}

func NewConsoleSink(logger core.Logger) *ConsoleSink {
	return &ConsoleSink{logger: logger}
}

func (s *ConsoleSink) Name() string { return "console" }

func (s *ConsoleSink) Send(_ context.Context, evt core.QuizCompleted) error {
	s.logger.Info(fmt.Sprintf(
		"quiz %s completed by %s at %s: %d/%d (%d%%)",
		evt.QuizID, evt.RespondentID, evt.CompletedAt.Format("2006-01-02 15:04:05"),
		evt.Correct, evt.Total, evt.Percentage,
	))
	return nil
}

// RecordingSink keeps the events it receives.
type RecordingSink struct {
	mu     sync.Mutex
	events []core.QuizCompleted
	Err    error // returned by Send when set
}

func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

func (s *RecordingSink) Name() string { return "recording" }

func (s *RecordingSink) Send(_ context.Context, evt core.QuizCompleted) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
	return nil
}

func (s *RecordingSink) Events() []core.QuizCompleted {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := make([]core.QuizCompleted, len(s.events))
	copy(events, s.events)
	return events
}
