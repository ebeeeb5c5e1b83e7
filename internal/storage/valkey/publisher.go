// Package valkey publishes session snapshots to a valkey pub/sub channel so
// other processes can follow OBS state without their own connection.
package valkey

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/valkey-io/valkey-go"

	"github.com/Vasu1712/scenyx-remote/internal/models"
)

// DefaultChannel is used when no channel is configured.
const DefaultChannel = "obs:state"

const queueSize = 16

type publishFunc func(ctx context.Context, channel, message string) error

// Publisher queues snapshots and PUBLISHes them from a single goroutine.
// Each snapshot is the full state, so when the queue is full the oldest
// pending one is dropped.
type Publisher struct {
	channel string
	publish publishFunc
	close   func()
	queue   chan []byte
}

// NewPublisher connects to the valkey server at address.
func NewPublisher(address, channel string) (*Publisher, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{address},
	})
	if err != nil {
		return nil, fmt.Errorf("connect valkey %s: %w", address, err)
	}

	p := newPublisher(channel, func(ctx context.Context, channel, message string) error {
		return client.Do(ctx, client.B().Publish().Channel(channel).Message(message).Build()).Error()
	})
	p.close = client.Close
	return p, nil
}

func newPublisher(channel string, publish publishFunc) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{
		channel: channel,
		publish: publish,
		queue:   make(chan []byte, queueSize),
	}
}

// Channel returns the pub/sub channel snapshots go to.
func (p *Publisher) Channel() string {
	return p.channel
}

// Enqueue encodes snap for publishing. It never blocks.
func (p *Publisher) Enqueue(snap models.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		log.Error().Err(err).Msg("encoding snapshot for valkey")
		return
	}
	for {
		select {
		case p.queue <- data:
			return
		default:
		}
		select {
		case <-p.queue:
		default:
		}
	}
}

// Run publishes queued snapshots until ctx ends, then closes the client.
func (p *Publisher) Run(ctx context.Context) {
	defer func() {
		if p.close != nil {
			p.close()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-p.queue:
			if err := p.publish(ctx, p.channel, string(data)); err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Warn().Err(err).Str("channel", p.channel).Msg("publishing snapshot failed")
			}
		}
	}
}
