package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"seniors/pkg/config"
	"seniors/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	MediaCleanupQueueName  = "media_cleanup_queue"
	MediaExchange          = "media"
	MediaCleanupRoutingKey = "media.cleanup"
)

// MediaCleanupTask asks the worker to delete objects a request could not remove itself.
type MediaCleanupTask struct {
	PostID uint64   `json:"post_id"`
	Keys   []string `json:"keys,omitempty"`
	Prefix string   `json:"prefix,omitempty"`
	Reason string   `json:"reason"`
}

func (t MediaCleanupTask) Validate() error {
	if len(t.Keys) == 0 && t.Prefix == "" {
		return errors.New("cleanup task needs keys or a prefix")
	}
	return nil
}

type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *logger.Logger
}

func NewRabbitMQClient(cfg *config.Config, log *logger.Logger) (*Client, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		cfg.RabbitMQUser,
		cfg.RabbitMQPassword,
		cfg.RabbitMQHost,
		cfg.RabbitMQPort,
	)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		MediaExchange, // name
		"direct",      // type
		true,          // durable
		false,         // auto-deleted
		false,         // internal
		false,         // no-wait
		nil,           // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = channel.QueueDeclare(
		MediaCleanupQueueName, // name
		true,                  // durable
		false,                 // delete when unused
		false,                 // exclusive
		false,                 // no-wait
		nil,                   // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	err = channel.QueueBind(
		MediaCleanupQueueName,  // queue name
		MediaCleanupRoutingKey, // routing key
		MediaExchange,          // exchange
		false,
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	log.Info("Connected to RabbitMQ at %s:%s", cfg.RabbitMQHost, cfg.RabbitMQPort)

	return &Client{
		conn:    conn,
		channel: channel,
		logger:  log,
	}, nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// PublishMediaCleanup enqueues a persistent cleanup task.
func (c *Client) PublishMediaCleanup(ctx context.Context, task MediaCleanupTask) error {
	if err := task.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	err = c.channel.PublishWithContext(ctx,
		MediaExchange,          // exchange
		MediaCleanupRoutingKey, // routing key
		false,                  // mandatory
		false,                  // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		c.logger.Error("[RABBITMQ] Failed to publish message to exchange=%s, routing_key=%s: %v", MediaExchange, MediaCleanupRoutingKey, err)
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.logger.Info("[RABBITMQ] Published media cleanup task post_id=%d keys=%d prefix=%q", task.PostID, len(task.Keys), task.Prefix)
	return nil
}

// ConsumeMediaCleanup delivers tasks to handler until the channel closes.
// A handler error requeues the message; undecodable messages are dropped.
func (c *Client) ConsumeMediaCleanup(handler func(task MediaCleanupTask) error) error {
	msgs, err := c.channel.Consume(
		MediaCleanupQueueName, // queue
		"",                    // consumer
		false,                 // auto-ack
		false,                 // exclusive
		false,                 // no-local
		false,                 // no-wait
		nil,                   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("[RABBITMQ] Started consuming from queue: %s", MediaCleanupQueueName)

	go func() {
		for msg := range msgs {
			task, err := DecodeMediaCleanupTask(msg.Body)
			if err != nil {
				c.logger.Error("[RABBITMQ] Dropping media cleanup message: %v, body=%s", err, string(msg.Body))
				msg.Nack(false, false)
				continue
			}

			if err := handler(task); err != nil {
				c.logger.Error("[RABBITMQ] Media cleanup failed, requeueing: %v, task=%+v", err, task)
				msg.Nack(false, true)
				continue
			}

			msg.Ack(false)
		}
	}()

	return nil
}

func DecodeMediaCleanupTask(body []byte) (MediaCleanupTask, error) {
	var task MediaCleanupTask
	if err := json.Unmarshal(body, &task); err != nil {
		return task, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	return task, task.Validate()
}

// GetQueueLength returns the number of messages in the queue
func (c *Client) GetQueueLength() (int, error) {
	queue, err := c.channel.QueueInspect(MediaCleanupQueueName)
	if err != nil {
		return 0, err
	}
	return queue.Messages, nil
}
