// Package notify fans ledger events out to the configured sinks.
package notify

import (
	"context"
	"time"

	"listrik/internal/core"
)

// Publisher delivers ledger events somewhere outside the process.
type Publisher interface {
	Publish(ctx context.Context, ev core.LedgerEvent) error
	Close() error
}

// Forgetter is implemented by publishers that keep per-session state outside
// the process and can drop it once the session has ended.
type Forgetter interface {
	Forget(ctx context.Context, sessionID string) error
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the publisher and the function releasing its connections.
type Result struct {
	Publisher Publisher
	Sinks     []SinkType
	Cleanup   CleanupFunc
}

// Factory creates publishers based on configuration
type Factory interface {
	CreatePublisher(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for publisher creation. A sink with an empty
// address is disabled.
type Config struct {
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	MQTTBroker    string
	MQTTBaseTopic string
	MQTTClientID  string
	MQTTUsername  string
	MQTTPassword  string
	MQTTRetain    bool

	// SessionTTL is the idle lifetime of a dashboard session.
	SessionTTL time.Duration

	// Required makes a sink that fails to connect an error instead of a warning.
	Required bool
}

// SinkType names an event destination.
type SinkType string

const (
	AMQPSink SinkType = "amqp"
	MQTTSink SinkType = "mqtt"
)

func (s SinkType) String() string {
	return string(s)
}
