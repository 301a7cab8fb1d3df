// Package mqtt publishes compiled scheduling runs to an MQTT broker so
// downstream consumers (notification bots, dashboards) can react to new
// schedules without polling the output files.
package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/martinmn/defsched/core/schedule"
	"github.com/martinmn/defsched/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT publisher.
type Config struct {
	Enabled        bool   `json:"enabled"`
	Broker         string `json:"broker"`
	ClientID       string `json:"client_id"`
	Username       string `json:"username"`
	Password       string `json:"password"`
	Topic          string `json:"topic"`
	QoS            byte   `json:"qos"`
	Retain         bool   `json:"retain"`
	UseTLS         bool   `json:"use_tls"`
	CABundle       string `json:"ca_bundle"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

func (c Config) timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Publisher sends run payloads over MQTT.
type Publisher struct {
	cli     pahoClient
	topic   string
	qos     byte
	retain  bool
	timeout time.Duration
	log     logger.Logger
}

// runPayload is the wire format of a published run.
type runPayload struct {
	RunID   string           `json:"run_id"`
	Summary schedule.Summary `json:"summary"`
	Results any              `json:"results"`
}

// NewPublisher connects to the broker described by cfg.
func NewPublisher(cfg Config) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt broker is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("mqtt topic is required")
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "defsched-" + uuid.NewString()[:8]
	}
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetConnectTimeout(cfg.timeout())
	if cfg.UseTLS {
		tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}
		if cfg.CABundle != "" {
			pem, err := os.ReadFile(cfg.CABundle)
			if err != nil {
				return nil, fmt.Errorf("read ca bundle: %w", err)
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(pem) {
				return nil, fmt.Errorf("no certificates in %s", cfg.CABundle)
			}
			tlsCfg.RootCAs = pool
		}
		opts.SetTLSConfig(tlsCfg)
	}

	log := logger.New("mqtt-publisher")
	cli := newMQTTClient(opts)
	token := cli.Connect()
	if !token.WaitTimeout(cfg.timeout()) {
		return nil, fmt.Errorf("mqtt connect timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	log.Infof("connected to %s as %s", cfg.Broker, clientID)
	return &Publisher{
		cli:     cli,
		topic:   cfg.Topic,
		qos:     cfg.QoS,
		retain:  cfg.Retain,
		timeout: cfg.timeout(),
		log:     log,
	}, nil
}

// PublishRun sends the compiled run as a JSON payload.
func (p *Publisher) PublishRun(c schedule.Compiled) error {
	payload, err := json.Marshal(runPayload{
		RunID:   c.Summary.RunID,
		Summary: c.Summary,
		Results: c.Results,
	})
	if err != nil {
		return fmt.Errorf("encode run: %w", err)
	}
	token := p.cli.Publish(p.topic, p.qos, p.retain, payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("publish timeout on %s", p.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	p.log.Infof("published run %s to %s", c.Summary.RunID, p.topic)
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
