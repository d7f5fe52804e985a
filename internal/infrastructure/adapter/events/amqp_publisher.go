package events

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"

	coreport "github.com/creatorhub/token-ledger/internal/domain/port/core"
)

const (
	// TransferCompletedQueue receives transfer completion events
	TransferCompletedQueue = "ledger.transfer.completed"
	// UnlockCreatedQueue receives unlock receipt events
	UnlockCreatedQueue = "ledger.unlock.created"
)

// AMQPPublisher delivers ledger events to RabbitMQ. Queues are durable and
// messages persistent so events survive broker restarts. Publish failures are
// returned to the caller, which logs and moves on; event delivery never
// blocks a committed ledger operation.
type AMQPPublisher struct {
	conn         *amqp.Connection
	channel      *amqp.Channel
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
}

// NewAMQPPublisher connects to the broker and declares the ledger queues
func NewAMQPPublisher(url string, logger coreport.Logger, timeProvider coreport.TimeProvider) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ", map[string]any{
			"error": err.Error(),
		})
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		logger.Error("Failed to open RabbitMQ channel", map[string]any{
			"error": err.Error(),
		})
		return nil, err
	}

	publisher := &AMQPPublisher{
		conn:         conn,
		channel:      ch,
		logger:       logger,
		timeProvider: timeProvider,
	}

	for _, queue := range []string{TransferCompletedQueue, UnlockCreatedQueue} {
		if err := publisher.declareQueue(queue); err != nil {
			_ = publisher.Close()
			return nil, err
		}
	}

	logger.Info("Connected to RabbitMQ", map[string]any{
		"queues": []string{TransferCompletedQueue, UnlockCreatedQueue},
	})

	return publisher, nil
}

// declareQueue ensures a durable queue exists. Idempotent.
func (p *AMQPPublisher) declareQueue(name string) error {
	_, err := p.channel.QueueDeclare(
		name,  // name
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	)
	if err != nil {
		p.logger.Error("Failed to declare queue", map[string]any{
			"queue": name,
			"error": err.Error(),
		})
	}
	return err
}

// PublishTransferCompleted publishes a transfer completion event
func (p *AMQPPublisher) PublishTransferCompleted(ctx context.Context, event coreport.TransferCompletedEvent) error {
	return p.publish(ctx, TransferCompletedQueue, event)
}

// PublishUnlockCreated publishes an unlock receipt event
func (p *AMQPPublisher) PublishUnlockCreated(ctx context.Context, event coreport.UnlockCreatedEvent) error {
	return p.publish(ctx, UnlockCreatedQueue, event)
}

func (p *AMQPPublisher) publish(ctx context.Context, queue string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal event", map[string]any{
			"queue": queue,
			"error": err.Error(),
		})
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.timeProvider.Now().UTC(),
		Body:         body,
	}

	if err := p.channel.PublishWithContext(ctx,
		"",    // default exchange
		queue, // routing key = queue name
		false, // mandatory
		false, // immediate
		pub,
	); err != nil {
		p.logger.Error("Failed to publish event", map[string]any{
			"queue": queue,
			"error": err.Error(),
		})
		return err
	}

	return nil
}

// Close releases the channel and connection
func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
