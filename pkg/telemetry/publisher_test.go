package telemetry

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"

	"github.com/krosbot/kros.go/pkg/payload"
	"github.com/krosbot/kros.go/pkg/slave"
)

type published struct {
	topic  string
	data   []byte
	retain bool
}

type stubBroker struct {
	ch chan published
}

func (b *stubBroker) PubWith(topic string, data []byte, qos byte, retain bool) paho.Token {
	b.ch <- published{topic: topic, data: data, retain: retain}
	return &paho.DummyToken{}
}

func TestPublisherPublishesStatusAndFrame(t *testing.T) {
	broker := &stubBroker{ch: make(chan published, 4)}
	p := NewPublisher(broker, "dev1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	rsp := payload.New(payload.Ack, 1, 1, -1, -1)
	p.Transaction(slave.Transaction{
		Seq:      7,
		Response: *rsp,
		Enabled:  true,
		Speeds:   [4]float32{1, 1, -1, -1},
		Stats:    slave.Stats{Tx: 7, Probes: 1},
	})

	status := expectPublished(t, broker, "dev1/status")
	require.True(t, status.retain, "status topic is retained")
	var doc Status
	require.NoError(t, json.Unmarshal(status.data, &doc))
	require.Equal(t, "dev1", doc.Device)
	require.Equal(t, uint64(7), doc.Seq)
	require.True(t, doc.Enabled)
	require.Equal(t, [4]float32{1, 1, -1, -1}, doc.Speeds)
	require.Equal(t, uint64(1), doc.Probes)

	frame := expectPublished(t, broker, "dev1/frames")
	require.False(t, frame.retain)
	decoded, err := payload.FromBytes(frame.data)
	require.NoError(t, err)
	require.Equal(t, rsp, decoded)
}

func expectPublished(t *testing.T, b *stubBroker, topic string) published {
	select {
	case p := <-b.ch:
		require.Equal(t, topic, p.topic)
		return p
	case <-time.After(time.Second):
		t.Fatalf("no publish on %q", topic)
		return published{}
	}
}

func TestPublisherNeverBlocksObserver(t *testing.T) {
	// no Run draining the queue; the observer must still return
	p := NewPublisher(&stubBroker{ch: make(chan published)}, "dev1")
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			p.Transaction(slave.Transaction{Seq: uint64(i)})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("observer blocked on a full publish queue")
	}
}
