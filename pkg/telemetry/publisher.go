package telemetry

import (
	"context"
	"encoding/json"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/krosbot/kros.go/pkg/slave"
)

// Broker is the publishing surface the Publisher needs from a Queue.
type Broker interface {
	PubWith(topic string, data []byte, qos byte, retain bool) paho.Token
}

// Status is the JSON status document published after each
// transaction. The status topic is retained so late subscribers see
// the last known state immediately.
type Status struct {
	Device  string     `json:"device"`
	Seq     uint64     `json:"seq"`
	Enabled bool       `json:"enabled"`
	Speeds  [4]float32 `json:"speeds"`
	Tx      uint64     `json:"tx"`
	Probes  uint64     `json:"probes"`
	Errors  uint64     `json:"errors"`
	Faults  uint64     `json:"faults"`
}

// Publisher forwards slave transactions to an MQTT broker. It
// implements slave.Observer without blocking the IRQ path: the
// observer callback only enqueues, a Run goroutine publishes.
type Publisher struct {
	broker Broker
	device string
	ch     chan slave.Transaction
}

// NewPublisher creates a publisher for the given device id.
func NewPublisher(broker Broker, device string) *Publisher {
	return &Publisher{
		broker: broker,
		device: device,
		ch:     make(chan slave.Transaction, 16),
	}
}

// Transaction implements slave.Observer. Transactions are dropped
// when the publish queue is full; telemetry never backpressures the
// bus.
func (p *Publisher) Transaction(tx slave.Transaction) {
	select {
	case p.ch <- tx:
	default:
		glog.V(1).Infof("telemetry: dropped transaction %d", tx.Seq)
	}
}

// Name implements framework.Named.
func (p *Publisher) Name() string {
	return "telemetry"
}

// Run implements framework.Runnable, draining queued transactions
// until the context is canceled.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case tx := <-p.ch:
			p.publish(tx)
		}
	}
}

func (p *Publisher) publish(tx slave.Transaction) {
	status := Status{
		Device:  p.device,
		Seq:     tx.Seq,
		Enabled: tx.Enabled,
		Speeds:  tx.Speeds,
		Tx:      tx.Stats.Tx,
		Probes:  tx.Stats.Probes,
		Errors:  tx.Stats.Errors,
		Faults:  tx.Stats.Faults,
	}
	data, err := json.Marshal(&status)
	if err != nil {
		glog.Errorf("telemetry: marshal status: %v", err)
		return
	}
	p.broker.PubWith(p.device+"/status", data, 0, true)
	p.broker.PubWith(p.device+"/frames", tx.Response.Bytes(), 0, false)
}
