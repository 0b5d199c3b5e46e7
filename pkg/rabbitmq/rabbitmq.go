package rabbitmq

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
)

const (
	DefaultExchange = "inkwell.events"
	DefaultQueue    = "inkwell.audit"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	queue    string
	log      logrus.FieldLogger

	// amqp channels are not safe for concurrent publishing.
	mu sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL      string
	Exchange string
	Queue    string
}

// Event is the JSON envelope of every message on the exchange.
type Event struct {
	Name       string                 `json:"event"`
	OccurredAt time.Time              `json:"occurredAt"`
	Data       map[string]interface{} `json:"data"`
}

// NewClient creates a new RabbitMQ client.
// It connects, declares the topic exchange and binds the audit queue to every
// routing key on it.
func NewClient(cfg Config, log logrus.FieldLogger) (*Client, error) {
	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueue
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declare(ch, cfg); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"exchange": cfg.Exchange,
		"queue":    cfg.Queue,
	}).Info("RabbitMQ client connected")

	return &Client{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange,
		queue:    cfg.Queue,
		log:      log,
	}, nil
}

func declare(ch *amqp.Channel, cfg Config) error {
	err := ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // kind
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	_, err = ch.QueueDeclare(
		cfg.Queue, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", cfg.Queue, err)
	}

	if err := ch.QueueBind(cfg.Queue, "#", cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", cfg.Queue, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// Encode wraps data in an Event envelope and marshals it.
func Encode(routingKey string, data map[string]interface{}, at time.Time) ([]byte, error) {
	body, err := json.Marshal(Event{Name: routingKey, OccurredAt: at, Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event %s: %w", routingKey, err)
	}
	return body, nil
}

// Publish sends a persistent JSON event to the exchange under routingKey.
func (c *Client) Publish(routingKey string, data map[string]interface{}) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	now := time.Now()
	body, err := Encode(routingKey, data, now)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err = c.channel.Publish(
		c.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    now,
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}

	c.log.WithField("event", routingKey).Debug("event published")
	return nil
}

// Consume starts a goroutine that feeds every message on the audit queue to
// messageHandler. Messages are acked on success; a failed message is dropped
// rather than requeued, since redelivery would fail the same way.
func (c *Client) Consume(messageHandler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.queue, // queue
		"",      // consumer tag
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.log.WithField("queue", c.queue).Info("waiting for domain events")

	go func() {
		for msg := range msgs {
			if err := messageHandler(msg); err != nil {
				c.log.WithError(err).WithField("delivery_tag", msg.DeliveryTag).Warn("failed to process message")
				if nackErr := msg.Nack(false, false); nackErr != nil {
					c.log.WithError(nackErr).Warn("failed to nack message")
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				c.log.WithError(ackErr).Warn("failed to ack message")
			}
		}
	}()

	return nil
}

// AuditHandler returns a message handler that decodes each event and writes
// it to log. onEvent, when set, is called with the event name.
func AuditHandler(log logrus.FieldLogger, onEvent func(name string)) func(msg amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var ev Event
		if err := json.Unmarshal(msg.Body, &ev); err != nil {
			return fmt.Errorf("failed to decode event: %w", err)
		}
		if ev.Name == "" {
			ev.Name = msg.RoutingKey
		}

		log.WithFields(logrus.Fields{
			"event":       ev.Name,
			"occurred_at": ev.OccurredAt,
			"data":        ev.Data,
		}).Info("audit")

		if onEvent != nil {
			onEvent(ev.Name)
		}
		return nil
	}
}
