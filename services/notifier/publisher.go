package notifier

import (
	"fmt"
	"os"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	exchangeName = "church.notifications"
	exchangeKind = "topic"
)

// AMQPPublisher pushes domain events to a topic exchange so other services
// (dashboards, chat bridges) can subscribe to lifecycle changes.
type AMQPPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewAMQPPublisherFromEnv connects using RABBITMQ_URL. Returns (nil, nil)
// when the variable is unset so the broker stays optional.
func NewAMQPPublisherFromEnv() (*AMQPPublisher, error) {
	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		return nil, nil
	}
	return NewAMQPPublisher(url)
}

func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchangeName, exchangeKind, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq exchange declare: %w", err)
	}

	return &AMQPPublisher{conn: conn, channel: ch}, nil
}

// Publish sends the raw JSON payload with the event type as routing key.
func (p *AMQPPublisher) Publish(eventType string, payload []byte) error {
	if err := p.channel.Publish(
		exchangeName,
		eventType,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        payload,
		},
	); err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

func (p *AMQPPublisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
