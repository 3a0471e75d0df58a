package mqtt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"listrik/internal/cache"
	"listrik/internal/core"
	"listrik/internal/log"
)

const (
	PayloadOnline  = "online"
	PayloadOffline = "offline"

	defaultTimeout = 2 * time.Second

	// announcedCapacity bounds the sessions remembered as announced. A session
	// pushed out is announced again on its next event.
	announcedCapacity = 10000
	defaultSessionTTL = 24 * time.Hour
)

// Options configures the broker connection.
type Options struct {
	Broker    string
	ClientID  string
	Username  string
	Password  string
	BaseTopic string
	Retain    bool
	Timeout   time.Duration
	// SessionTTL is how long a session stays marked as announced without events.
	SessionTTL time.Duration
}

// client is the part of pahomqtt.Client the publisher needs.
type client interface {
	Connect() pahomqtt.Token
	Publish(topic string, qos byte, retained bool, payload any) pahomqtt.Token
	IsConnected() bool
	Disconnect(quiesce uint)
}

// Publisher mirrors each session's summary to MQTT as retained sensor states
// and announces the sensors through Home Assistant discovery.
type Publisher struct {
	client    client
	baseTopic string
	retain    bool
	timeout   time.Duration
	logger    *log.Logger

	announced *cache.LRUCache[struct{}]
}

// OptsFromConfig builds paho options with a retained offline will on the
// bridge state topic.
func OptsFromConfig(o Options) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(o.Broker)
	opts.SetClientID(o.ClientID)
	if o.Username != "" {
		opts.SetUsername(o.Username)
	}
	if o.Password != "" {
		opts.SetPassword(o.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetWill(bridgeStateTopic(baseTopic(o.BaseTopic)), PayloadOffline, 0, true)
	return opts
}

// New connects to the broker and marks the bridge online. The online state is
// republished on every reconnect.
func New(ctx context.Context, o Options, logger *log.Logger) (*Publisher, error) {
	if logger == nil {
		logger = log.Discard()
	}
	opts := OptsFromConfig(o)
	p := newPublisher(nil, o, logger)
	opts.SetOnConnectHandler(func(c pahomqtt.Client) {
		p.logger.Info("Connected to MQTT broker", "broker", o.Broker)
		c.Publish(p.BridgeStateTopic(), 0, true, PayloadOnline)
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		p.logger.Warn("MQTT connection lost", log.FieldError, err)
	})
	p.client = pahomqtt.NewClient(opts)

	if err := wait(ctx, p.client.Connect(), 15*time.Second); err != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", err)
	}
	return p, nil
}

func newPublisher(c client, o Options, logger *log.Logger) *Publisher {
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ttl := o.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Publisher{
		client:    c,
		baseTopic: baseTopic(o.BaseTopic),
		retain:    o.Retain,
		timeout:   timeout,
		logger:    logger.WithComponent(log.ComponentMQTT),
		announced: cache.NewLRUCache[struct{}](announcedCapacity, ttl, cache.WithSlidingExpiration[struct{}]()),
	}
}

func baseTopic(t string) string {
	t = strings.Trim(t, "/")
	if t == "" {
		return "listrik"
	}
	return t
}

func (p *Publisher) BridgeStateTopic() string {
	return bridgeStateTopic(p.baseTopic)
}

// SensorStateTopic is the state topic of one summary sensor of a session.
func (p *Publisher) SensorStateTopic(sessionID, sensorID string) string {
	return fmt.Sprintf("%s/%s/sensor/%s/state", p.baseTopic, topicSafe(sessionID), sensorID)
}

// Publish writes every summary sensor of the event's session, announcing the
// session's sensors first if this is the first event seen for it.
func (p *Publisher) Publish(ctx context.Context, ev core.LedgerEvent) error {
	if !p.client.IsConnected() {
		return errors.New("MQTT client not connected")
	}
	session := topicSafe(ev.SessionID)

	var errs []error
	if _, ok := p.announced.Get(session); !ok {
		if err := p.announce(ctx, session); err != nil {
			errs = append(errs, err)
		} else {
			p.announced.Set(session, struct{}{})
		}
	}

	for _, s := range Sensors() {
		topic := p.SensorStateTopic(session, s.Id)
		if err := wait(ctx, p.client.Publish(topic, 1, p.retain, s.Value(ev.Summary)), p.timeout); err != nil {
			errs = append(errs, fmt.Errorf("publish %s: %w", topic, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "Published ledger summary",
		log.FieldSessionID, ev.SessionID,
		log.FieldEventType, ev.Type)
	return nil
}

// Forget removes an ended session from the broker: its discovery configs are
// cleared with empty retained payloads, as are its sensor states when those
// are retained. A later event for the same session announces it again.
func (p *Publisher) Forget(ctx context.Context, sessionID string) error {
	session := topicSafe(sessionID)
	p.announced.Delete(session)
	if !p.client.IsConnected() {
		return errors.New("MQTT client not connected")
	}

	var errs []error
	for _, s := range Sensors() {
		topics := []string{DiscoveryTopic(p.baseTopic, session, s)}
		if p.retain {
			topics = append(topics, p.SensorStateTopic(session, s.Id))
		}
		for _, topic := range topics {
			if err := wait(ctx, p.client.Publish(topic, 0, true, ""), p.timeout); err != nil {
				errs = append(errs, fmt.Errorf("clear %s: %w", topic, err))
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	p.logger.DebugContext(ctx, "Cleared session topics", log.FieldSessionID, sessionID)
	return nil
}

func (p *Publisher) announce(ctx context.Context, session string) error {
	var errs []error
	for _, s := range Sensors() {
		msg := SensorDiscoveryMessage(p, session, s)
		payload, err := msg.ToJSON()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		topic := DiscoveryTopic(p.baseTopic, session, s)
		if err := wait(ctx, p.client.Publish(topic, 0, true, payload), p.timeout); err != nil {
			errs = append(errs, fmt.Errorf("announce %s: %w", topic, err))
		}
	}
	return errors.Join(errs...)
}

// Close marks the bridge offline and disconnects.
func (p *Publisher) Close() error {
	if !p.client.IsConnected() {
		return nil
	}
	err := wait(context.Background(), p.client.Publish(p.BridgeStateTopic(), 0, true, PayloadOffline), p.timeout)
	p.client.Disconnect(250)
	return err
}

func wait(ctx context.Context, token pahomqtt.Token, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-token.Done():
		return token.Error()
	case <-timer.C:
		return errors.New("MQTT operation timed out")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func bridgeStateTopic(base string) string {
	return fmt.Sprintf("%s/bridge/state", base)
}

// topicSafe strips characters with a meaning in MQTT topics.
func topicSafe(s string) string {
	if s == "" {
		return "default"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '+', '#', ' ':
			return '_'
		}
		return r
	}, s)
}
