/**
 * @description
 * RabbitMQ publisher for enrollment and renewal outcome events.
 */
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Exchange is the topic exchange all service events are published to.
const Exchange = "protonmedicare.events"

// Publisher is the interface implemented by event publishers.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
	Close()
}

// EventProducer holds the RabbitMQ connection and channel.
type EventProducer struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

// NoopProducer is used when the broker is unavailable; events are logged and
// dropped so outcomes are never blocked on messaging.
type NoopProducer struct{}

func (p *NoopProducer) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	log.Printf("[MQ-NOOP] dropping event exchange=%s routing_key=%s", exchange, routingKey)
	return nil
}

func (p *NoopProducer) Close() {}

// NewEventProducer creates a RabbitMQ publisher.
func NewEventProducer(amqpURL string) (*EventProducer, error) {
	clean := strings.TrimSpace(amqpURL)
	u, err := url.Parse(clean)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return nil, errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}

	conn, err := amqp091.DialConfig(clean, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &EventProducer{conn: conn, channel: ch}, nil
}

// Publish sends a message to an exchange with a routing key.
func (p *EventProducer) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	if p.channel == nil {
		return errors.New("rabbitmq channel not initialized")
	}

	if err := p.channel.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	return p.channel.PublishWithContext(ctx, exchange, routingKey, false, false, amqp091.Publishing{
		ContentType: "application/json",
		Body:        payload,
		Timestamp:   time.Now(),
	})
}

// Close closes the RabbitMQ connection.
func (p *EventProducer) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
