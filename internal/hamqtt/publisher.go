// Package hamqtt publishes unit status to MQTT for Home Assistant discovery.
package hamqtt

import (
	"crypto/rand"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/jrshann/strhost/internal/config"
)

// Publisher maintains the broker connection and publishes status topics.
type Publisher struct {
	client mqtt.Client
	prefix string // discovery prefix
	base   string // base topic
	log    zerolog.Logger
}

func NewPublisher(cfg *config.MQTTConfig, log zerolog.Logger) (*Publisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("missing mqtt config")
	}

	password := ""
	if cfg.PasswordFile != "" {
		data, err := os.ReadFile(cfg.PasswordFile)
		if err != nil {
			return nil, fmt.Errorf("read mqtt password: %w", err)
		}
		password = strings.TrimSpace(string(data))
	}

	availability := cfg.BaseTopic + "/status"

	opts := mqtt.NewClientOptions()
	scheme := "tcp"
	if cfg.TLS {
		scheme = "ssl"
		opts.SetTLSConfig(&tls.Config{})
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker, cfg.Port))
	opts.SetUsername(cfg.Username)
	opts.SetPassword(password)
	opts.SetClientID(randomClientID())
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetWill(availability, "offline", 0, true)
	opts.OnConnect = func(c mqtt.Client) {
		c.Publish(availability, 0, true, "online")
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}

	return &Publisher{
		client: client,
		prefix: cfg.DiscoveryPrefix,
		base:   cfg.BaseTopic,
		log:    log,
	}, nil
}

// Close announces unavailability and disconnects.
func (p *Publisher) Close() {
	if p == nil || p.client == nil {
		return
	}
	_ = p.client.Publish(p.base+"/status", 0, true, "offline").Wait()
	p.client.Disconnect(250)
}

// PublishUnitDiscovery announces the binary sensors for one unit so Home
// Assistant picks them up without manual configuration.
func (p *Publisher) PublishUnitDiscovery(appID string, unit UnitInfo) error {
	for _, msg := range DiscoveryMessages(p.prefix, p.base, appID, unit) {
		payload, err := json.Marshal(msg.Payload)
		if err != nil {
			return fmt.Errorf("marshal discovery payload: %w", err)
		}
		if token := p.client.Publish(msg.Topic, 0, true, payload); token.Wait() && token.Error() != nil {
			return fmt.Errorf("publish discovery: %w", token.Error())
		}
	}
	return nil
}

// PublishUnitState publishes the retained state document for one unit.
func (p *Publisher) PublishUnitState(appID, code string, state UnitState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal unit state: %w", err)
	}
	topic := StateTopic(p.base, appID, code)
	if token := p.client.Publish(topic, 0, true, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("publish state: %w", token.Error())
	}
	p.log.Debug().Str("topic", topic).Msg("published unit state")
	return nil
}

func randomClientID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return "strhost-" + base64.RawURLEncoding.EncodeToString(buf)
}
