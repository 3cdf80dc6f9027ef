package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"gigledger/pkg/metrics"
	"gigledger/pkg/trace"
)

type MessageHandler func(ctx context.Context, evt Event) error

type Consumer struct {
	conn       *amqp091.Connection
	channel    *amqp091.Channel
	queue      amqp091.Queue
	routingKey string
	handler    MessageHandler
	logger     *zap.Logger
}

// NewConsumer binds queueName to the events exchange under routingKey, which
// may be a pattern ("job.#"). Each worker concern gets its own queue so
// concerns fan out independently.
func NewConsumer(url, queueName, routingKey string, logger *zap.Logger) (*Consumer, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		ExchangeName,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	dlqArgs, err := declareDLQ(ch, queueName)
	if err != nil {
		return nil, err
	}

	q, err := ch.QueueDeclare(
		queueName,
		true,    // durable
		false,   // delete when unused
		false,   // exclusive
		false,   // no-wait
		dlqArgs, // rejects dead-letter to events.dlq
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	err = ch.QueueBind(
		q.Name,
		routingKey,
		ExchangeName,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	return &Consumer{
		conn:       conn,
		channel:    ch,
		queue:      q,
		routingKey: routingKey,
		logger:     logger,
	}, nil
}

func (c *Consumer) SetHandler(h MessageHandler) {
	c.handler = h
}

func (c *Consumer) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// StartConsuming blocks processing messages; run it in a goroutine. Messages
// are manually acked; handler failures Nack with requeue.
func (c *Consumer) StartConsuming() error {
	if c.handler == nil {
		return fmt.Errorf("consumer handler not set")
	}

	msgs, err := c.channel.Consume(
		c.queue.Name,
		"worker",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("Consumer started",
		zap.String("routing_key", c.routingKey),
		zap.String("queue", c.queue.Name),
	)

	for msg := range msgs {
		ctx := trace.NewContext(context.Background(), trace.GenerateTraceID())
		start := time.Now()

		var evt Event
		if err := json.Unmarshal(msg.Body, &evt); err != nil {
			c.logger.Error("Dropping malformed event",
				zap.String("queue", c.queue.Name),
				zap.Error(err),
			)
			// malformed forever, requeueing would loop
			_ = msg.Nack(false, false)
			continue
		}

		if err := c.handler(ctx, evt); err != nil {
			c.logger.Error("Handler error",
				zap.String("event_type", evt.Type),
				zap.String("queue", c.queue.Name),
				zap.Error(err),
			)
			// poison messages dead-letter, transient failures requeue
			_ = msg.Nack(false, !errors.Is(err, ErrDiscard))
			continue
		}

		if err := msg.Ack(false); err != nil {
			c.logger.Error("Failed to ack message",
				zap.String("queue", c.queue.Name),
				zap.Error(err),
			)
		}
		metrics.RecordMQConsumeLatency(msg.RoutingKey, c.queue.Name, time.Since(start))
	}

	return nil
}
