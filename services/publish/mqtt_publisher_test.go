package publish

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mav-playback/models"
	"mav-playback/utils"
)

type doneToken struct{ err error }

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t doneToken) Error() error { return t.err }

type message struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakeClient struct {
	mu           sync.Mutex
	messages     []message
	failEvery    int
	disconnected bool
	gate         chan struct{}
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	if c.gate != nil {
		<-c.gate
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, message{topic, qos, retained, payload.([]byte)})
	if c.failEvery > 0 && len(c.messages)%c.failEvery == 0 {
		return doneToken{err: errors.New("not authorised")}
	}
	return doneToken{}
}

func (c *fakeClient) Disconnect(uint) {
	c.mu.Lock()
	c.disconnected = true
	c.mu.Unlock()
}

func testConfig() utils.MQTTConfig {
	return utils.MQTTConfig{Enabled: true, Topic: "playback/frame", QoS: 1, Retained: true}
}

func TestPublisherSendsReportsInOrder(t *testing.T) {
	t.Parallel()

	c := &fakeClient{}
	p := newPublisher(testConfig(), c)
	for i := 0; i < 5; i++ {
		p.OnFrame(models.FrameReport{RunID: "r", FrameIndex: i, Pose: models.IdentityPose()})
	}
	require.NoError(t, p.Close())
	require.NoError(t, p.Close(), "close is idempotent")

	assert.True(t, c.disconnected)
	assert.Equal(t, uint64(5), p.Published())
	require.Len(t, c.messages, 5)
	for i, m := range c.messages {
		assert.Equal(t, "playback/frame", m.topic)
		assert.Equal(t, byte(1), m.qos)
		assert.True(t, m.retained)

		var r models.FrameReport
		require.NoError(t, json.Unmarshal(m.payload, &r))
		assert.Equal(t, i, r.FrameIndex)
		assert.Equal(t, 1.0, r.Pose.Rotation.W)
	}
}

func TestPublisherCountsFailures(t *testing.T) {
	t.Parallel()

	c := &fakeClient{failEvery: 2}
	p := newPublisher(testConfig(), c)
	for i := 0; i < 4; i++ {
		p.OnFrame(models.FrameReport{FrameIndex: i})
	}
	require.NoError(t, p.Close())
	assert.Equal(t, uint64(2), p.Published())
	assert.Len(t, c.messages, 4)
}

func TestPublisherDropsWhenQueueFull(t *testing.T) {
	t.Parallel()

	c := &fakeClient{gate: make(chan struct{})}
	p := newPublisher(testConfig(), c)

	// The worker blocks on the first publish; the queue then fills up.
	for i := 0; i < queueSize+10; i++ {
		p.OnFrame(models.FrameReport{FrameIndex: i})
	}
	assert.Positive(t, p.Dropped())

	close(c.gate)
	require.NoError(t, p.Close())
	assert.Equal(t, uint64(queueSize+10)-p.Dropped(), p.Published())
}
