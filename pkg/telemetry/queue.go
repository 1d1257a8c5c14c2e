// Package telemetry publishes peripheral status over MQTT so
// monitors can watch the bus traffic without touching the bus.
package telemetry

import (
	"fmt"
	"net/url"
	"strings"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
)

// Handler is the callback when a subscribed message is received.
type Handler func(topic string, data []byte)

// ClientOptionsFromURL creates paho ClientOptions from a URL of the
// form mqtt://[user:pass@]host:port/topic-prefix[?client-id=...].
func ClientOptionsFromURL(serverURL string) (*paho.ClientOptions, string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, "", err
	}
	if u.Host == "" {
		return nil, "", fmt.Errorf("broker URL %q: missing host", serverURL)
	}
	scheme := u.Scheme
	if scheme == "" || scheme == "mqtt" {
		scheme = "tcp"
	}

	topicPrefix := strings.TrimPrefix(u.Path, "/")
	if topicPrefix != "" && !strings.HasSuffix(topicPrefix, "/") {
		topicPrefix += "/"
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(scheme + "://" + u.Host).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			opts.SetPassword(pwd)
		}
	}
	if clientID := u.Query().Get("client-id"); clientID != "" {
		opts.SetClientID(clientID)
	}
	return opts, topicPrefix, nil
}

// Queue wraps the MQTT client with a fixed topic prefix.
type Queue struct {
	Client      paho.Client
	TopicPrefix string
}

// NewQueue creates a Queue from a broker URL.
func NewQueue(brokerURL string) (*Queue, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetOnConnectHandler(func(paho.Client) {
		glog.Info("telemetry: connected")
	})
	opts.SetConnectionLostHandler(func(c paho.Client, err error) {
		glog.Warningf("telemetry: connection lost: %v", err)
	})
	return &Queue{Client: paho.NewClient(opts), TopicPrefix: topicPrefix}, nil
}

// Connect connects the client and waits for the result.
func (q *Queue) Connect() error {
	token := q.Client.Connect()
	token.Wait()
	return token.Error()
}

// Close implements io.Closer.
func (q *Queue) Close() error {
	q.Client.Disconnect(0)
	return nil
}

// Pub publishes to a prefixed topic.
func (q *Queue) Pub(topic string, data []byte) paho.Token {
	return q.PubWith(topic, data, 0, false)
}

// PubWith publishes with QoS and retain settings.
func (q *Queue) PubWith(topic string, data []byte, qos byte, retain bool) paho.Token {
	glog.V(2).Infof("telemetry: PUB %q (%d bytes)", q.TopicPrefix+topic, len(data))
	return q.Client.Publish(q.TopicPrefix+topic, qos, retain, data)
}

// Sub subscribes to a prefixed topic, which may contain wildcards.
func (q *Queue) Sub(topic string, h Handler) paho.Token {
	full := q.TopicPrefix + topic
	glog.V(2).Infof("telemetry: SUB %q", full)
	return q.Client.Subscribe(full, 0, func(c paho.Client, msg paho.Message) {
		t := msg.Topic()
		if strings.HasPrefix(t, q.TopicPrefix) {
			t = t[len(q.TopicPrefix):]
		}
		h(t, msg.Payload())
	})
}
