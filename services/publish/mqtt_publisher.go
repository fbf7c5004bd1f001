package publish

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"mav-playback/models"
	"mav-playback/utils"
)

const (
	connectTimeout = 5 * time.Second
	publishTimeout = 2 * time.Second
	queueSize      = 256
)

// client is the part of mqtt.Client the publisher uses.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// PoseMQTTPublisher streams every frame report as JSON to an MQTT topic.
// Reports are queued and published from a background goroutine so the
// playback loop never waits on the broker; a full queue drops reports.
type PoseMQTTPublisher struct {
	cfg    utils.MQTTConfig
	client client

	queue chan models.FrameReport
	wg    sync.WaitGroup
	once  sync.Once

	published uint64
	dropped   uint64
	failed    uint64
}

// NewPoseMQTTPublisher connects to the configured broker.
func NewPoseMQTTPublisher(cfg utils.MQTTConfig) (*PoseMQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout)
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		utils.L().Warn("mqtt connection lost: %v", err)
	}

	c := mqtt.NewClient(opts)
	token := c.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt connect to %s: timeout", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", cfg.Broker, err)
	}
	utils.L().Info("mqtt publisher connected  broker=%s topic=%s qos=%d", cfg.Broker, cfg.Topic, cfg.QoS)
	return newPublisher(cfg, c), nil
}

func newPublisher(cfg utils.MQTTConfig, c client) *PoseMQTTPublisher {
	p := &PoseMQTTPublisher{
		cfg:    cfg,
		client: c,
		queue:  make(chan models.FrameReport, queueSize),
	}
	p.wg.Add(1)
	go p.run()
	return p
}

// OnFrame queues a report; it never blocks.
func (p *PoseMQTTPublisher) OnFrame(r models.FrameReport) {
	select {
	case p.queue <- r:
	default:
		if atomic.AddUint64(&p.dropped, 1) == 1 {
			utils.L().Warn("mqtt: publish queue full, dropping frame reports")
		}
	}
}

func (p *PoseMQTTPublisher) run() {
	defer p.wg.Done()
	for r := range p.queue {
		payload, err := json.Marshal(r)
		if err != nil {
			atomic.AddUint64(&p.failed, 1)
			utils.L().Error("mqtt: marshal frame report: %v", err)
			continue
		}
		token := p.client.Publish(p.cfg.Topic, p.cfg.QoS, p.cfg.Retained, payload)
		if !token.WaitTimeout(publishTimeout) {
			atomic.AddUint64(&p.failed, 1)
			utils.L().Warn("mqtt: publish timeout on %s", p.cfg.Topic)
			continue
		}
		if err := token.Error(); err != nil {
			atomic.AddUint64(&p.failed, 1)
			utils.L().Warn("mqtt: publish failed: %v", err)
			continue
		}
		atomic.AddUint64(&p.published, 1)
	}
}

// Close drains the queue and disconnects.
func (p *PoseMQTTPublisher) Close() error {
	p.once.Do(func() {
		close(p.queue)
		p.wg.Wait()
		p.client.Disconnect(250)
		utils.L().Info("mqtt publisher stopped  (published=%d, dropped=%d, failed=%d)",
			p.Published(), atomic.LoadUint64(&p.dropped), atomic.LoadUint64(&p.failed))
	})
	return nil
}

// Published returns the number of reports the broker acknowledged.
func (p *PoseMQTTPublisher) Published() uint64 { return atomic.LoadUint64(&p.published) }

// Dropped returns the number of reports lost to a full queue.
func (p *PoseMQTTPublisher) Dropped() uint64 { return atomic.LoadUint64(&p.dropped) }
