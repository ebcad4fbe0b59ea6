// Package bus fans portfolio events out to in-process consumers such as the
// websocket hub and the redis publisher.
package bus

import (
	"context"
	"log/slog"
	"sync"

	"investor-edu/internal/model"
)

// FanOut broadcasts events from a single input channel to N output channels.
// If an output channel is full, the event is dropped for that consumer to
// prevent a slow consumer from blocking trade execution.
type FanOut struct {
	mu      sync.RWMutex
	outputs []chan model.PortfolioEvent
	bufSize int

	// OnDrop is called when an event is dropped for a subscriber.
	// subscriberIdx is the 0-based index of the slow consumer.
	OnDrop func(subscriberIdx int)
}

// New creates a FanOut with the given buffer size for output channels.
func New(outputBufferSize int) *FanOut {
	return &FanOut{
		bufSize: outputBufferSize,
	}
}

// Subscribe creates and returns a new output channel.
func (f *FanOut) Subscribe() <-chan model.PortfolioEvent {
	ch := make(chan model.PortfolioEvent, f.bufSize)
	f.mu.Lock()
	f.outputs = append(f.outputs, ch)
	f.mu.Unlock()
	return ch
}

// Run reads from the input channel and fans out to all subscribers.
// Blocks until ctx is cancelled or input is closed, then closes every
// subscriber channel.
func (f *FanOut) Run(ctx context.Context, input <-chan model.PortfolioEvent) {
	defer func() {
		f.mu.RLock()
		for _, ch := range f.outputs {
			close(ch)
		}
		f.mu.RUnlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-input:
			if !ok {
				return
			}
			f.mu.RLock()
			for i, ch := range f.outputs {
				select {
				case ch <- ev:
				default:
					if f.OnDrop != nil {
						f.OnDrop(i)
					} else {
						slog.Warn("subscriber channel full, dropping event",
							"component", "bus", "subscriber", i, "profile", ev.Profile, "kind", ev.Kind)
					}
				}
			}
			f.mu.RUnlock()
		}
	}
}

// ChannelStat reports the fill level of one subscriber channel.
type ChannelStat struct {
	Len int
	Cap int
}

// ChannelStats returns (length, capacity) for each subscriber channel.
func (f *FanOut) ChannelStats() []ChannelStat {
	f.mu.RLock()
	defer f.mu.RUnlock()
	stats := make([]ChannelStat, len(f.outputs))
	for i, ch := range f.outputs {
		stats[i] = ChannelStat{Len: len(ch), Cap: cap(ch)}
	}
	return stats
}

// ChanPublisher feeds a FanOut input channel. Publishing never blocks: when
// the input is full the event is dropped and counted.
type ChanPublisher struct {
	ch     chan<- model.PortfolioEvent
	OnDrop func()
}

// NewChanPublisher returns a publisher writing into ch.
func NewChanPublisher(ch chan<- model.PortfolioEvent) *ChanPublisher {
	return &ChanPublisher{ch: ch}
}

// PublishPortfolio implements model.EventPublisher.
func (p *ChanPublisher) PublishPortfolio(_ context.Context, ev model.PortfolioEvent) error {
	select {
	case p.ch <- ev:
	default:
		if p.OnDrop != nil {
			p.OnDrop()
		}
		slog.Warn("bus input full, dropping event", "component", "bus", "profile", ev.Profile)
	}
	return nil
}

// MultiPublisher publishes to every wrapped publisher and returns the first
// error after attempting all of them.
type MultiPublisher []model.EventPublisher

// PublishPortfolio implements model.EventPublisher.
func (m MultiPublisher) PublishPortfolio(ctx context.Context, ev model.PortfolioEvent) error {
	var first error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.PublishPortfolio(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
