package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Thamizhanban2006/code-clash/internal/game"
)

const submissionQueue = "submissions"

// SubmissionPublisher pushes accepted submissions onto a durable RabbitMQ
// queue for the downstream grading/audit pipeline. Publishing is best effort;
// the game never waits on it.
type SubmissionPublisher struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	q      amqp.Queue
	logger *slog.Logger
}

func NewSubmissionPublisher(url string, logger *slog.Logger) (*SubmissionPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		submissionQueue, // name
		true,            // durable
		false,           // delete when unused
		false,           // exclusive
		false,           // no-wait
		nil,             // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	return &SubmissionPublisher{conn: conn, ch: ch, q: q, logger: logger}, nil
}

// Publish implements game.SubmissionSink.
func (p *SubmissionPublisher) Publish(ctx context.Context, sub game.Submission) error {
	body, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		"",       // exchange
		p.q.Name, // routing key
		false,    // mandatory
		false,    // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("publish submission: %w", err)
	}

	p.logger.Debug("submission queued", "room_id", sub.RoomID, "player", sub.PlayerName)
	return nil
}

func (p *SubmissionPublisher) Close() {
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
