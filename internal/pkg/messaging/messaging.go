package messaging

import (
	"context"
	"io"
	"time"
)

// Messaging publishes events and runs consumers on subjects.
type Messaging interface {
	io.Closer

	// Publish sends msg to subject and returns once the server has it.
	Publish(ctx context.Context, subject string, msg OutgoingMessage) error
	// Consume blocks, dispatching subject messages to handler until ctx is done.
	Consume(ctx context.Context, subject string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes a received message.
type Handler func(ctx context.Context, msg Message) error

// OutgoingMessage is an event to publish.
type OutgoingMessage struct {
	Body    []byte
	Headers []Header
}

// Header is a key/value pair carried next to the body.
type Header struct {
	Key   string
	Value []byte
}

// Message is a received event.
type Message interface {
	Body() []byte
	Headers() []Header
	// Header returns the first value of key, or "" when absent.
	Header(key string) string
	Subject() string
	// Timestamp is when the consumer picked the message up.
	Timestamp() time.Time
}

type consumeOptions struct {
	concurrency int
	queueGroup  string
}

// ConsumeOption configures Consume.
type ConsumeOption func(*consumeOptions)

func newConsumeOptions(opts ...ConsumeOption) consumeOptions {
	co := consumeOptions{concurrency: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(&co)
		}
	}
	if co.concurrency <= 0 {
		co.concurrency = 1
	}
	return co
}

// WithConcurrency sets how many handler goroutines process messages in parallel.
func WithConcurrency(n int) ConsumeOption {
	return func(o *consumeOptions) { o.concurrency = n }
}

// WithQueueGroup load-balances the subject across every consumer of the group.
func WithQueueGroup(queueGroup string) ConsumeOption {
	return func(o *consumeOptions) { o.queueGroup = queueGroup }
}
