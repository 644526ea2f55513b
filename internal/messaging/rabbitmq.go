package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"

	"housing-allocation-backend/internal/notification"
)

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQPublisher implements notification.Sink by publishing events as JSON to a durable queue.
// Downstream consumers (the email service) turn them into student-facing messages.
type RabbitMQPublisher struct {
	conn      *amqp.Connection
	ch        channel
	queueName string
	cb        *gobreaker.CircuitBreaker
}

// NewRabbitMQPublisher dials amqpURL and declares queueName.
func NewRabbitMQPublisher(amqpURL, queueName string) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queueName, err)
	}

	p := newPublisher(ch, queueName)
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, queueName string) *RabbitMQPublisher {
	return &RabbitMQPublisher{
		ch:        ch,
		queueName: queueName,
		cb:        newCircuitBreaker("RabbitMQ-Publisher", 30*time.Second),
	}
}

// Publish sends evt to the queue. An open circuit fails fast with gobreaker.ErrOpenState.
func (p *RabbitMQPublisher) Publish(ctx context.Context, evt notification.Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= 0 {
		return ctx.Err()
	}

	_, err = p.cb.Execute(func() (interface{}, error) {
		return nil, p.ch.PublishWithContext(
			ctx,
			"",          // exchange (default)
			p.queueName, // routing key == queue name
			false,       // mandatory
			false,       // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Type:         string(evt.Kind),
				Timestamp:    time.Now().UTC(),
				Body:         body,
			},
		)
	})
	return err
}

// Close closes the channel and the connection.
func (p *RabbitMQPublisher) Close() error {
	if p.ch != nil {
		if err := p.ch.Close(); err != nil {
			return err
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
