package notify

import (
	"context"
	"fmt"

	"listrik/internal/amqp"
	"listrik/internal/log"
	"listrik/internal/mqtt"
)

// Connectors open the concrete sinks. Tests swap them for fakes.
type Connectors struct {
	AMQP func(ctx context.Context, c Config, logger *log.Logger) (Publisher, error)
	MQTT func(ctx context.Context, c Config, logger *log.Logger) (Publisher, error)
}

// DefaultConnectors dial real brokers.
func DefaultConnectors() Connectors {
	return Connectors{
		AMQP: func(ctx context.Context, c Config, logger *log.Logger) (Publisher, error) {
			return amqp.NewClient(ctx, c.AMQPURL, c.AMQPExchange, c.AMQPQueue, logger)
		},
		MQTT: func(ctx context.Context, c Config, logger *log.Logger) (Publisher, error) {
			return mqtt.New(ctx, mqtt.Options{
				Broker:     c.MQTTBroker,
				ClientID:   c.MQTTClientID,
				Username:   c.MQTTUsername,
				Password:   c.MQTTPassword,
				BaseTopic:  c.MQTTBaseTopic,
				Retain:     c.MQTTRetain,
				SessionTTL: c.SessionTTL,
			}, logger)
		},
	}
}

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger     *log.Logger
	connectors Connectors
}

// NewFactory creates a new publisher factory
func NewFactory(logger *log.Logger, connectors Connectors) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger:     logger.WithComponent(log.ComponentNotify),
		connectors: connectors,
	}
}

// CreatePublisher connects every enabled sink. Without Required a sink that
// cannot connect is skipped with a warning, so the dashboard still starts.
func (f *DefaultFactory) CreatePublisher(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	fan := NewFanout()
	var sinks []SinkType
	for _, sink := range config.Enabled() {
		connect := f.connector(sink)
		if connect == nil {
			continue
		}
		pub, err := connect(ctx, config, f.logger)
		if err != nil {
			if config.Required {
				fan.Close()
				return nil, fmt.Errorf("failed to initialize %s publisher: %w", sink, err)
			}
			f.logger.Warn("Failed to initialize publisher, continuing without it",
				"sink", sink.String(),
				log.FieldError, err)
			continue
		}
		fan.Add(sink, pub)
		sinks = append(sinks, sink)
		f.logger.Info("Initialized publisher", "sink", sink.String())
	}

	if fan.Len() == 0 {
		return &Result{Publisher: Noop{}, Cleanup: Noop{}.Close}, nil
	}
	return &Result{
		Publisher: fan,
		Sinks:     sinks,
		Cleanup:   fan.Close,
	}, nil
}

func (f *DefaultFactory) connector(sink SinkType) func(context.Context, Config, *log.Logger) (Publisher, error) {
	switch sink {
	case AMQPSink:
		return f.connectors.AMQP
	case MQTTSink:
		return f.connectors.MQTT
	default:
		return nil
	}
}
