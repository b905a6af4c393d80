package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/doomzday403/admin-console/internal/core/domain"
)

// MailQueue is the durable queue shared by the API and the mailer.
const MailQueue = "email_queue"

// DeclareMailQueue declares the durable mail queue on ch.
func DeclareMailQueue(ch *amqp.Channel) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		MailQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("declare %s: %w", MailQueue, err)
	}
	return q, nil
}

// AMQPPublisher publishes mail jobs as JSON to the mail queue.
type AMQPPublisher struct {
	mu sync.Mutex
	ch *amqp.Channel
}

// NewAMQPPublisher declares the mail queue and returns a publisher on ch.
func NewAMQPPublisher(ch *amqp.Channel) (*AMQPPublisher, error) {
	if _, err := DeclareMailQueue(ch); err != nil {
		return nil, err
	}
	return &AMQPPublisher{ch: ch}, nil
}

func (p *AMQPPublisher) Send(ctx context.Context, msg domain.MailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode mail job: %w", err)
	}

	// amqp channels are not safe for concurrent publishing.
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx, "", MailQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish mail job: %w", err)
	}
	return nil
}
