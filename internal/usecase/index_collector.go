package usecase

import (
	"context"
	"sync"

	"VolPull/internal/domain/models"
	drepo "VolPull/internal/domain/repository"
)

// IndexCollector tracks live index levels from the exchange stream. The
// latest level per asset backs the live compute path between snapshot
// hours.
type IndexCollector struct {
	stream  drepo.IndexStream
	metrics drepo.Metrics

	mu   sync.RWMutex
	last map[string]*models.IndexTick
}

// NewIndexCollector creates a new IndexCollector instance.
func NewIndexCollector(stream drepo.IndexStream, metrics drepo.Metrics) *IndexCollector {
	return &IndexCollector{
		stream:  stream,
		metrics: metrics,
		last:    make(map[string]*models.IndexTick),
	}
}

// IsConnected returns true if the stream is connected.
func (c *IndexCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

// Start connects, subscribes and consumes in the background.
func (c *IndexCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	tickCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, tickCh, errCh)
	return nil
}

func (c *IndexCollector) consume(ctx context.Context, tickCh <-chan *models.IndexTick, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case t := <-tickCh:
			if t == nil {
				continue
			}
			c.mu.Lock()
			c.last[t.Asset] = t
			c.mu.Unlock()
		}
	}
}

// Last returns the most recent tick for an asset, if any arrived.
func (c *IndexCollector) Last(asset string) (*models.IndexTick, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.last[asset]
	return t, ok
}

// Stop closes the stream.
func (c *IndexCollector) Stop() error { return c.stream.Close() }
