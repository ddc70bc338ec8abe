package notifysvc

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/services/metrics"
)

// Sink delivers completion events to one destination.
type Sink interface {
	Name() string
	Send(ctx context.Context, evt core.QuizCompleted) error
}

// Fanout dispatches every event to all its sinks, each in its own goroutine
// bounded by timeout. Failures are logged and counted, never returned.
type Fanout struct {
	sinks   []Sink
	timeout time.Duration
	logger  core.Logger
	sync    bool
	wg      sync.WaitGroup
}

var _ core.Notifier = (*Fanout)(nil) // interface compliance check

func NewFanout(logger core.Logger, timeout time.Duration, sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks, timeout: timeout, logger: logger}
}

// NewFanoutMock delivers synchronously.
func NewFanoutMock(logger core.Logger, sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks, timeout: 5 * time.Second, logger: logger, sync: true}
}

func (f *Fanout) QuizCompleted(_ context.Context, evt core.QuizCompleted) {
	for _, sink := range f.sinks {
		if f.sync {
			f.send(sink, evt)
			continue
		}
		f.wg.Add(1)
		go func(sink Sink) {
			defer f.wg.Done()
			f.send(sink, evt)
		}(sink)
	}
}

// send is detached from the request: the respondent may be gone by the time a slow sink answers.
func (f *Fanout) send(sink Sink, evt core.QuizCompleted) {
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	if err := sink.Send(ctx, evt); err != nil {
		metrics.NotificationFailures.WithLabelValues(sink.Name()).Inc()
		f.logger.Error(
			fmt.Sprintf("notifying %s of quiz %s completion: %v", sink.Name(), evt.QuizID, err),
			errors.Wrap(err, "notifying completion"),
			map[string]interface{}{"respondent_id": evt.RespondentID, "quiz_id": evt.QuizID},
		)
		return
	}
	metrics.NotificationsSent.WithLabelValues(sink.Name()).Inc()
}

// Wait blocks until in-flight notifications are done.
func (f *Fanout) Wait() {
	f.wg.Wait()
}

// New builds the fanout of the configured sinks. The returned closers must be closed on shutdown.
func New(conf *core.Config, logger core.Logger) (*Fanout, []io.Closer, error) {
	var (
		sinks   []Sink
		closers []io.Closer
	)
	for _, name := range conf.Notify.Sinks {
		switch name {
		case "console":
			sinks = append(sinks, NewConsoleSink(logger))
		case "webhook":
			if conf.Notify.WebhookURL == "" {
				return nil, closers, errors.New("webhook sink: missing webhook URL")
			}
			sinks = append(sinks, NewWebhookSink(conf.Notify.WebhookURL, conf.Notify.WebhookSecret))
		case "amqp":
			pub, err := NewAMQPSink(conf.Notify.AMQPURL, conf.Notify.AMQPExchange)
			if err != nil {
				return nil, closers, errors.Wrap(err, "amqp sink")
			}
			sinks = append(sinks, pub)
			closers = append(closers, pub)
		case "email":
			if conf.Notify.SendgridAPIKey == "" || conf.Notify.StaffEmail == "" {
				return nil, closers, errors.New("email sink: missing sendgrid API key or staff email")
			}
			sinks = append(sinks, NewEmailSink(conf))
		case "":
		default:
			return nil, closers, errors.Errorf("unknown notification sink %q", name)
		}
	}
	return NewFanout(logger, conf.Notify.Timeout, sinks...), closers, nil
}
