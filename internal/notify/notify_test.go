package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"listrik/internal/config"
	"listrik/internal/core"
	"listrik/internal/log"
)

type recorder struct {
	events []core.LedgerEvent
	err    error
	closed bool
	order  *[]string
	name   string
}

func (r *recorder) Publish(_ context.Context, ev core.LedgerEvent) error {
	r.events = append(r.events, ev)
	return r.err
}

func (r *recorder) Close() error {
	r.closed = true
	if r.order != nil {
		*r.order = append(*r.order, r.name)
	}
	return nil
}

func TestFanout(t *testing.T) {
	var order []string
	a := &recorder{err: errors.New("down"), order: &order, name: "a"}
	b := &recorder{order: &order, name: "b"}
	f := NewFanout()
	f.Add(AMQPSink, a)
	f.Add(MQTTSink, b)

	err := f.Publish(context.Background(), core.LedgerEvent{Type: core.EventTariffSelected})
	if err == nil || !strings.Contains(err.Error(), "amqp: down") {
		t.Fatalf("err = %v", err)
	}
	if len(a.events) != 1 || len(b.events) != 1 {
		t.Fatalf("every sink should receive the event: a=%d b=%d", len(a.events), len(b.events))
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(order) != 2 || order[0] != "b" || order[1] != "a" {
		t.Fatalf("close order = %v", order)
	}
}

type forgettingRecorder struct {
	recorder
	forgotten []string
	err       error
}

func (r *forgettingRecorder) Forget(_ context.Context, sessionID string) error {
	r.forgotten = append(r.forgotten, sessionID)
	return r.err
}

func TestFanoutForget(t *testing.T) {
	plain := &recorder{}
	failing := &forgettingRecorder{err: errors.New("broker gone")}
	ok := &forgettingRecorder{}
	f := NewFanout()
	f.Add(AMQPSink, plain)
	f.Add(MQTTSink, failing)
	f.Add(MQTTSink, ok)

	err := f.Forget(context.Background(), "s1")
	if err == nil || !strings.Contains(err.Error(), "mqtt: broker gone") {
		t.Fatalf("err = %v", err)
	}
	if len(failing.forgotten) != 1 || len(ok.forgotten) != 1 || ok.forgotten[0] != "s1" {
		t.Fatalf("forgotten = %v / %v", failing.forgotten, ok.forgotten)
	}
}

func fakeConnectors(amqpErr error, pubs map[SinkType]*recorder) Connectors {
	return Connectors{
		AMQP: func(context.Context, Config, *log.Logger) (Publisher, error) {
			if amqpErr != nil {
				return nil, amqpErr
			}
			return pubs[AMQPSink], nil
		},
		MQTT: func(context.Context, Config, *log.Logger) (Publisher, error) {
			return pubs[MQTTSink], nil
		},
	}
}

func TestFactory_NoSinks(t *testing.T) {
	res, err := NewFactory(log.Discard(), fakeConnectors(nil, nil)).CreatePublisher(context.Background(), Config{})
	if err != nil {
		t.Fatalf("CreatePublisher: %v", err)
	}
	if _, ok := res.Publisher.(Noop); !ok || len(res.Sinks) != 0 {
		t.Fatalf("publisher = %T sinks=%v", res.Publisher, res.Sinks)
	}
	if err := res.Cleanup(); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
}

func TestFactory_BothSinks(t *testing.T) {
	pubs := map[SinkType]*recorder{AMQPSink: {}, MQTTSink: {}}
	cfg := Config{AMQPURL: "amqp://x", AMQPExchange: "e", AMQPQueue: "q", MQTTBroker: "tcp://x:1883", MQTTClientID: "c"}

	res, err := NewFactory(log.Discard(), fakeConnectors(nil, pubs)).CreatePublisher(context.Background(), cfg)
	if err != nil {
		t.Fatalf("CreatePublisher: %v", err)
	}
	if len(res.Sinks) != 2 {
		t.Fatalf("sinks = %v", res.Sinks)
	}
	res.Publisher.Publish(context.Background(), core.LedgerEvent{})
	res.Cleanup()
	if len(pubs[AMQPSink].events) != 1 || !pubs[MQTTSink].closed {
		t.Fatalf("fan-out not wired to the created sinks")
	}
}

func TestFactory_FailingSink(t *testing.T) {
	pubs := map[SinkType]*recorder{MQTTSink: {}}
	cfg := Config{AMQPURL: "amqp://x", AMQPExchange: "e", AMQPQueue: "q", MQTTBroker: "tcp://x:1883", MQTTClientID: "c"}
	factory := NewFactory(log.Discard(), fakeConnectors(errors.New("refused"), pubs))

	res, err := factory.CreatePublisher(context.Background(), cfg)
	if err != nil {
		t.Fatalf("optional sink failure should not fail: %v", err)
	}
	if len(res.Sinks) != 1 || res.Sinks[0] != MQTTSink {
		t.Fatalf("sinks = %v", res.Sinks)
	}

	cfg.Required = true
	if _, err := factory.CreatePublisher(context.Background(), cfg); err == nil {
		t.Fatalf("required sink failure should fail")
	}
}

func TestConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{MQTTBroker: "tcp://b:1883", MQTTClientID: "listrik"})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if got := cfg.Enabled(); len(got) != 1 || got[0] != MQTTSink {
		t.Fatalf("enabled = %v", got)
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatalf("nil config should fail")
	}
	if err := (Config{AMQPURL: "amqp://x"}).Validate(); err == nil {
		t.Fatalf("amqp without exchange should fail")
	}
}
