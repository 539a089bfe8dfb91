package events

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const defaultTopicPrefix = "gotodo"

// MQTTPublisher mirrors events to an MQTT broker on <prefix>/<userID>/todos.
type MQTTPublisher struct {
	client mqtt.Client
	prefix string
	log    *zap.Logger
}

// NewMQTTPublisher wraps a connected client.
func NewMQTTPublisher(client mqtt.Client, prefix string, log *zap.Logger) *MQTTPublisher {
	if prefix == "" {
		prefix = defaultTopicPrefix
	}
	return &MQTTPublisher{client: client, prefix: strings.Trim(prefix, "/"), log: log}
}

// ConnectMQTT dials the broker named by rawURL (tcp host from the URL, topic
// prefix from its path) and returns a publisher.
func ConnectMQTT(rawURL, clientID string, log *zap.Logger) (*MQTTPublisher, error) {
	uri, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse mqtt url: %w", err)
	}

	client := mqtt.NewClient(createClientOptions(clientID, uri))
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connect to mqtt broker %s: timed out", uri.Host)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to mqtt broker %s: %w", uri.Host, err)
	}
	log.Info("connected to MQTT broker", zap.String("host", uri.Host))

	return NewMQTTPublisher(client, strings.TrimPrefix(uri.Path, "/"), log), nil
}

func createClientOptions(clientID string, uri *url.URL) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", uri.Host))
	if uri.User != nil {
		opts.SetUsername(uri.User.Username())
		if password, ok := uri.User.Password(); ok {
			opts.SetPassword(password)
		}
	}
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	return opts
}

// Topic returns the topic events of userID are published on.
func (p *MQTTPublisher) Topic(userID string) string {
	return fmt.Sprintf("%s/%s/todos", p.prefix, userID)
}

// Publish sends e with QoS 0 and does not wait for the broker.
func (p *MQTTPublisher) Publish(e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		p.log.Error("failed to encode mqtt event", zap.Error(err))
		return
	}
	token := p.client.Publish(p.Topic(e.UserID), 0, false, payload)
	go func() {
		<-token.Done()
		if err := token.Error(); err != nil {
			p.log.Warn("mqtt publish failed", zap.String("topic", p.Topic(e.UserID)), zap.Error(err))
		}
	}()
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
