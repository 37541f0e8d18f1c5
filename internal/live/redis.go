package live

import (
	"context"
	"sync/atomic"

	"github.com/banshee-data/rotation.report/internal/rotation"
	"github.com/go-redis/redis/v8"
)

// DefaultChannel is the redis channel frames are published on.
const DefaultChannel = "rotation:frames"

// Publisher is the subset of *redis.Client used for publishing.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher publishes every tracked frame as JSON. Frames are queued by
// ObserveFrame and sent by Run.
type RedisPublisher struct {
	pub     Publisher
	channel string
	runID   string
	queue   chan []byte

	published atomic.Int64
	dropped   atomic.Int64
	failed    atomic.Int64
}

// NewRedisClient connects to addr with the default options.
func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

// NewRedisPublisher returns a publisher for runID. An empty channel uses
// DefaultChannel.
func NewRedisPublisher(pub Publisher, channel, runID string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{
		pub:     pub,
		channel: channel,
		runID:   runID,
		queue:   make(chan []byte, 1024),
	}
}

// Channel returns the channel messages are published on.
func (p *RedisPublisher) Channel() string {
	return p.channel
}

// ObserveFrame enqueues res, dropping it if the queue is full.
func (p *RedisPublisher) ObserveFrame(res rotation.FrameResult) {
	msg, err := encode(p.runID, res)
	if err != nil {
		logf("encode frame %d: %v", res.FrameIndex, err)
		return
	}
	select {
	case p.queue <- msg:
	default:
		p.dropped.Add(1)
	}
}

// Run publishes queued messages until ctx is cancelled. Messages still
// queued at cancellation are flushed with a fresh context.
func (p *RedisPublisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.drain()
			return
		case msg := <-p.queue:
			p.publish(ctx, msg)
		}
	}
}

func (p *RedisPublisher) drain() {
	for {
		select {
		case msg := <-p.queue:
			p.publish(context.Background(), msg)
		default:
			return
		}
	}
}

func (p *RedisPublisher) publish(ctx context.Context, msg []byte) {
	if err := p.pub.Publish(ctx, p.channel, msg).Err(); err != nil {
		if p.failed.Add(1) == 1 {
			logf("redis publish to %s: %v", p.channel, err)
		}
		return
	}
	p.published.Add(1)
}

// Stats returns published, dropped and failed message counts.
func (p *RedisPublisher) Stats() (published, dropped, failed int64) {
	return p.published.Load(), p.dropped.Load(), p.failed.Load()
}
