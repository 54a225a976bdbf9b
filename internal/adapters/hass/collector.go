package hass

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Birgenshire/homink/internal/domain"
	"github.com/Birgenshire/homink/internal/ports"
)

// Config captures the MQTT session details for the Home Assistant statestream.
type Config struct {
	Broker         string        `yaml:"broker"`
	ClientID       string        `yaml:"client_id"`
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password"`
	TopicPrefix    string        `yaml:"topic_prefix"`
	PollTopic      string        `yaml:"poll_topic"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

func (c *Config) ApplyDefaults() {
	if c.ClientID == "" {
		c.ClientID = "homink"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "homeassistant/statestream"
	}
	if c.PollTopic == "" {
		c.PollTopic = "homink/poll"
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10 * time.Second
	}
}

func (c *Config) Validate() error {
	if c.Broker == "" {
		return errors.New("broker is required")
	}
	return nil
}

// Collector subscribes to the statestream and owns one Source handle per
// entity. State payloads of "unavailable" or "unknown" clear the handle's
// availability instead of being reported as values.
type Collector struct {
	cfg    Config
	client mqtt.Client

	mu      sync.Mutex
	handles map[string]*handle
	started bool
	stopCh  chan struct{}
	out     chan<- domain.Event
}

func NewCollector(cfg Config) (*Collector, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Collector{
		cfg:     cfg,
		handles: make(map[string]*handle),
	}, nil
}

func (c *Collector) Start(out chan<- domain.Event) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return fmt.Errorf("hass collector already started")
	}
	c.started = true
	c.stopCh = make(chan struct{})
	c.out = out
	c.mu.Unlock()

	opts := mqtt.NewClientOptions().
		AddBroker(c.cfg.Broker).
		SetClientID(c.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(c.cfg.ConnectTimeout)
	if c.cfg.Username != "" {
		opts.SetUsername(c.cfg.Username)
		opts.SetPassword(c.cfg.Password)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		c.reset()
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}

	topic := c.cfg.TopicPrefix + "/#"
	if token := client.Subscribe(topic, 0, c.onMessage); token.Wait() && token.Error() != nil {
		client.Disconnect(250)
		c.reset()
		return fmt.Errorf("mqtt subscribe %q: %w", topic, token.Error())
	}

	c.mu.Lock()
	c.client = client
	c.mu.Unlock()
	return nil
}

func (c *Collector) Stop() error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return nil
	}
	client := c.client
	stopCh := c.stopCh
	c.started = false
	c.client = nil
	c.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
	}
	if client != nil {
		client.Disconnect(250)
	}
	return nil
}

// Source returns the handle for a source ID, creating it on first request.
// Registry construction calls this once per configured sensor; incoming
// messages never create handles, they only update these. The handle reports
// HasValue false until a state arrives.
func (c *Collector) Source(id string) ports.Source {
	return c.handle(id)
}

// Poll publishes a comma-separated batch re-fetch request so the platform
// re-delivers current state for the listed entities.
func (c *Collector) Poll(ids []string) error {
	c.mu.Lock()
	client := c.client
	c.mu.Unlock()
	if client == nil {
		return errors.New("hass collector not started")
	}
	token := client.Publish(c.cfg.PollTopic, 0, false, strings.Join(ids, ","))
	token.Wait()
	return token.Error()
}

func (c *Collector) onMessage(_ mqtt.Client, msg mqtt.Message) {
	c.dispatch(msg.Topic(), string(msg.Payload()))
}

// dispatch routes one statestream message. The wildcard subscription covers
// every entity the platform publishes; only entities whose handle was created
// through Source are tracked, so the handle map stays bounded by the
// configured sensor table.
func (c *Collector) dispatch(topic, payload string) {
	id, ok := c.entityID(topic)
	if !ok {
		return
	}

	c.mu.Lock()
	h := c.handles[id]
	out := c.out
	stopCh := c.stopCh
	c.mu.Unlock()
	if h == nil {
		return
	}

	state, avail := h.set(strings.TrimSpace(payload))
	if out == nil {
		return
	}

	select {
	case out <- domain.Event{SourceID: id, State: state, Available: avail, At: time.Now()}:
	case <-stopCh:
	}
}

// entityID maps a statestream topic to a source identifier:
// prefix/sensor/birgenshire_temp/state -> sensor.birgenshire_temp. A host
// built-in published directly under the prefix keeps its bare, dot-free name.
func (c *Collector) entityID(topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, c.cfg.TopicPrefix+"/")
	if !ok {
		return "", false
	}
	rest, ok = strings.CutSuffix(rest, "/state")
	if !ok {
		return "", false
	}
	if rest == "" {
		return "", false
	}
	return strings.ReplaceAll(rest, "/", "."), true
}

func (c *Collector) handle(id string) *handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.handles[id]
	if !ok {
		h = &handle{}
		c.handles[id] = h
	}
	return h
}

// handle is the per-entity Source implementation. It crosses goroutines (the
// MQTT client writes, the engine reads) and carries its own lock.
type handle struct {
	mu    sync.Mutex
	state string
	avail bool
}

// set applies one delivered payload and reports the normalized state and
// availability. An unavailability marker keeps the last value so recovery can
// be compared against it.
func (h *handle) set(state string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch state {
	case "unavailable", "unknown", "":
		h.avail = false
		return "", false
	default:
		h.state = state
		h.avail = true
		return state, true
	}
}

func (h *handle) HasValue() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.avail
}

func (h *handle) State() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (c *Collector) reset() {
	c.mu.Lock()
	c.started = false
	c.out = nil
	if c.stopCh != nil {
		close(c.stopCh)
		c.stopCh = nil
	}
	c.mu.Unlock()
}

var (
	_ ports.Collector = (*Collector)(nil)
	_ ports.Source    = (*handle)(nil)
)
