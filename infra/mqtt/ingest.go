package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/unirides/dispatch/core/model"
	"github.com/unirides/dispatch/infra/logger"
)

// Topics drivers publish telemetry on. The wildcard segment is the driver
// identifier. Drivers set an MQTT last-will on their own status topic with an
// offline payload, so a broker-side disconnect surfaces here as a normal
// status message.
const (
	locationTopic = "drivers/+/location"
	statusTopic   = "drivers/+/status"
)

// Config defines the connection parameters for the telemetry subscriber.
type Config struct {
	Broker     string          `json:"broker"`
	ClientID   string          `json:"client_id"`
	Username   string          `json:"username"`
	Password   string          `json:"password"`
	UseTLS     bool            `json:"use_tls"`
	ClientCert string          `json:"client_cert"`
	ClientKey  string          `json:"client_key"`
	CABundle   string          `json:"ca_bundle"`
	AuthMethod string          `json:"auth_method"`
	QoS        map[string]byte `json:"qos"`
	TLSConfig  *tls.Config     `json:"-"`
}

// DriverStore is the registry surface telemetry feeds into.
type DriverStore interface {
	Register(id string, initial *model.Location)
	SetAvailability(id string, av model.Availability) error
	UpdateLocation(id string, lat, lng float64) error
	SetRating(id string, rating float64) error
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Ingest subscribes to driver telemetry topics and feeds the registry.
type Ingest struct {
	cli    pahoClient
	store  DriverStore
	qos    map[string]byte
	logger logger.Logger
}

// NewIngest connects to the MQTT broker and subscribes to the telemetry
// topics. Subscriptions are re-established on every (re)connect.
func NewIngest(cfg Config, store DriverStore) (*Ingest, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_ingest")
	in := &Ingest{store: store, qos: cfg.QoS, logger: log}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		qos := byte(0)
		if q, ok := in.qos["telemetry"]; ok {
			qos = q
		}
		if token := c.Subscribe(locationTopic, qos, in.onLocation); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe %s: %v", locationTopic, token.Error())
		}
		if token := c.Subscribe(statusTopic, qos, in.onStatus); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe %s: %v", statusTopic, token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	in.cli = c
	return in, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	cfg := &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}
	return cfg, nil
}

// driverIDFromTopic extracts the wildcard segment from drivers/<id>/<leaf>.
func driverIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "drivers" || parts[1] == "" {
		return ""
	}
	return parts[1]
}

func (in *Ingest) onLocation(_ paho.Client, msg paho.Message) {
	id := driverIDFromTopic(msg.Topic())
	if id == "" {
		in.logger.Warnf("location on unexpected topic %s", msg.Topic())
		return
	}
	var m struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	}
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		in.logger.Errorf("failed to decode location from %s: %v", id, err)
		return
	}
	in.store.Register(id, nil)
	if err := in.store.UpdateLocation(id, m.Lat, m.Lng); err != nil {
		in.logger.Warnf("location update %s: %v", id, err)
	}
}

func (in *Ingest) onStatus(_ paho.Client, msg paho.Message) {
	id := driverIDFromTopic(msg.Topic())
	if id == "" {
		in.logger.Warnf("status on unexpected topic %s", msg.Topic())
		return
	}
	var m struct {
		Status string  `json:"status"`
		Rating float64 `json:"rating"`
	}
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		in.logger.Errorf("failed to decode status from %s: %v", id, err)
		return
	}
	in.store.Register(id, nil)
	av := model.AvailabilityOffline
	if m.Status == "online" {
		av = model.AvailabilityAvailable
	}
	if err := in.store.SetAvailability(id, av); err != nil {
		in.logger.Warnf("status update %s: %v", id, err)
	}
	if m.Rating > 0 {
		if err := in.store.SetRating(id, m.Rating); err != nil {
			in.logger.Warnf("rating update %s: %v", id, err)
		}
	}
}

// Disconnect gracefully closes the MQTT connection.
func (in *Ingest) Disconnect() {
	if in.cli != nil && in.cli.IsConnected() {
		in.cli.Disconnect(250)
	}
}
