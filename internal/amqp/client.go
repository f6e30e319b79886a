// Package amqp publishes storage change notifications on a fanout exchange
// and lets each tracker instance consume the others' notifications.
package amqp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"tracker/internal/log"
	"tracker/internal/store"
)

const publishTimeout = 5 * time.Second

type Client struct {
	mu           sync.Mutex // guards channel publishes
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	instance     string
	logger       *log.Logger
}

func NewClient(url, exchangeName string, logger *log.Logger) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		instance:     uuid.NewString(),
		logger:       logger.WithComponent(log.ComponentAMQP),
	}

	err = channel.ExchangeDeclare(
		exchangeName, // name
		"fanout",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return client, nil
}

// Instance identifies this process in published messages.
func (c *Client) Instance() string {
	return c.instance
}

// NotifyChange implements store.Notifier
func (c *Client) NotifyChange(ctx context.Context, change store.Change) error {
	msg := NewChangeMessage(c.instance, change.Op, change.TransactionID, time.Now())
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	c.mu.Lock()
	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		"",             // routing key, ignored by fanout
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Timestamp:   msg.Timestamp,
			Body:        body,
		},
	)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	c.logger.DebugContext(ctx, "Published change message",
		log.FieldOperation, change.Op,
		log.FieldTransactionID, change.TransactionID,
		log.FieldInstance, c.instance)
	return nil
}

// ConsumeChanges binds an exclusive, auto-deleted queue to the exchange and
// calls handler for every change published by another instance. It returns
// when ctx is done or the delivery channel closes.
func (c *Client) ConsumeChanges(ctx context.Context, handler func(context.Context, *ChangeMessage) error) error {
	c.mu.Lock()
	q, err := c.channel.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err == nil {
		err = c.channel.QueueBind(q.Name, "", c.exchangeName, false, nil)
	}
	var msgs <-chan amqp091.Delivery
	if err == nil {
		msgs, err = c.channel.Consume(
			q.Name, // queue
			"",     // consumer
			false,  // auto-ack (we want manual ack)
			true,   // exclusive
			false,  // no-local
			false,  // no-wait
			nil,    // args
		)
	}
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.logger.InfoContext(ctx, "Started consuming change messages", "queue", q.Name)

	for {
		select {
		case <-ctx.Done():
			c.logger.InfoContext(ctx, "Stopping change consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			switch c.dispatch(ctx, delivery.Body, handler) {
			case outcomeAck:
				delivery.Ack(false)
			case outcomeReject:
				delivery.Nack(false, false)
			case outcomeRequeue:
				delivery.Nack(false, true)
			}
		}
	}
}

type outcome int

const (
	outcomeAck outcome = iota
	outcomeReject
	outcomeRequeue
)

// dispatch decodes one delivery and runs handler unless the message came
// from this instance.
func (c *Client) dispatch(ctx context.Context, body []byte, handler func(context.Context, *ChangeMessage) error) outcome {
	msg, err := ChangeMessageFromJSON(body)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to unmarshal message", "error", err)
		return outcomeReject
	}
	if msg.Instance == c.instance {
		return outcomeAck
	}
	if err := handler(ctx, msg); err != nil {
		c.logger.ErrorContext(ctx, "Failed to handle change message",
			"error", err,
			log.FieldTransactionID, msg.TransactionID,
			log.FieldInstance, msg.Instance)
		return outcomeRequeue
	}
	return outcomeAck
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
