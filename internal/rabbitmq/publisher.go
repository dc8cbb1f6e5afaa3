package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

const (
	exchangeName = "audit"
	queueName    = "audit.events"
)

// Event описывает одно аудит-событие приложения.
type Event struct {
	Action     string    `json:"action"` // например "group.created"
	UserID     int64     `json:"user_id,omitempty"`
	EntityID   int64     `json:"entity_id,omitempty"`
	EntityName string    `json:"entity_name,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher публикует аудит-события в выделенную очередь.
type Publisher struct {
	ch *amqp.Channel
}

// NewPublisher открывает канал и объявляет exchange с очередью аудита.
func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	const op = "rabbitmq.NewPublisher"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	err = ch.ExchangeDeclare(
		exchangeName,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	_, err = ch.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = ch.QueueBind(queueName, "events", exchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Publisher{ch: ch}, nil
}

// Publish отправляет событие в очередь аудита.
func (p *Publisher) Publish(event Event) error {
	const op = "rabbitmq.Publish"
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = p.ch.Publish(
		exchangeName,
		"events",
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает канал публикации.
func (p *Publisher) Close() error {
	return p.ch.Close()
}
