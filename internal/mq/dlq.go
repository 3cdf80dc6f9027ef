package mq

import (
	"errors"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
)

const DLQExchangeName = "events.dlq"

// ErrDiscard tells the consumer to dead-letter the message instead of
// requeueing it. Handlers wrap it around poison messages: malformed
// payloads, non-retryable failures, exhausted retry budgets.
var ErrDiscard = errors.New("discard message")

// declareDLQ sets up the dead-letter exchange and a per-queue DLQ, and
// returns the arguments the primary queue needs to route rejects there.
func declareDLQ(ch *amqp091.Channel, queueName string) (amqp091.Table, error) {
	err := ch.ExchangeDeclare(
		DLQExchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare DLQ exchange: %w", err)
	}

	dlqName := fmt.Sprintf("%s.dlq", queueName)
	q, err := ch.QueueDeclare(
		dlqName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare DLQ queue: %w", err)
	}

	err = ch.QueueBind(q.Name, queueName, DLQExchangeName, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to bind DLQ queue: %w", err)
	}

	return amqp091.Table{
		"x-dead-letter-exchange":    DLQExchangeName,
		"x-dead-letter-routing-key": queueName,
	}, nil
}
