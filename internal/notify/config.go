package notify

import (
	"fmt"

	"listrik/internal/config"
)

// FromAppConfig converts the application config to publisher config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	return Config{
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		MQTTBroker:    appConfig.MQTTBroker,
		MQTTBaseTopic: appConfig.MQTTBaseTopic,
		MQTTClientID:  appConfig.MQTTClientID,
		MQTTUsername:  appConfig.MQTTUsername,
		MQTTPassword:  appConfig.MQTTPassword,
		MQTTRetain:    appConfig.MQTTRetain,

		SessionTTL: appConfig.SessionTTL,
	}, nil
}

// Enabled lists the sinks with an address configured.
func (c Config) Enabled() []SinkType {
	var out []SinkType
	if c.AMQPURL != "" {
		out = append(out, AMQPSink)
	}
	if c.MQTTBroker != "" {
		out = append(out, MQTTSink)
	}
	return out
}

// Validate validates the publisher configuration
func (c Config) Validate() error {
	if c.AMQPURL != "" && (c.AMQPExchange == "" || c.AMQPQueue == "") {
		return fmt.Errorf("AMQP exchange and queue are required when AMQP URL is set")
	}
	if c.MQTTBroker != "" && c.MQTTClientID == "" {
		return fmt.Errorf("MQTT client ID is required when MQTT broker is set")
	}
	return nil
}
