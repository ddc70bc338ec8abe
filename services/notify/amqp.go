package notifysvc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/rabbitmq/amqp091-go"

	"github.com/trezcool/mtihani/core"
)

const completedRoutingKey = "quiz.completed"

type envelope struct {
	Type    string             `json:"type"`
	Payload core.QuizCompleted `json:"payload"`
}

// AMQPSink publishes events on a durable topic exchange.
type AMQPSink struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
}

func NewAMQPSink(url, exchange string) (*AMQPSink, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to broker")
	}
	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "opening channel")
	}
	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, errors.Wrap(err, "declaring exchange")
	}
	return &AMQPSink{conn: conn, channel: channel, exchange: exchange}, nil
}

func (s *AMQPSink) Name() string { return "amqp" }

func (s *AMQPSink) Send(ctx context.Context, evt core.QuizCompleted) error {
	body, err := json.Marshal(envelope{Type: completedRoutingKey, Payload: evt})
	if err != nil {
		return errors.Wrap(err, "encoding event")
	}
	err = s.channel.PublishWithContext(ctx,
		s.exchange,          // exchange
		completedRoutingKey, // routing key
		false,               // mandatory
		false,               // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
			Headers: amqp091.Table{
				"respondent_id": evt.RespondentID,
				"quiz_id":       evt.QuizID,
			},
		},
	)
	if err != nil {
		return errors.Wrap(err, "publishing event")
	}
	return nil
}

func (s *AMQPSink) Close() error {
	if err := s.channel.Close(); err != nil {
		_ = s.conn.Close()
		return errors.Wrap(err, "closing channel")
	}
	return s.conn.Close()
}
