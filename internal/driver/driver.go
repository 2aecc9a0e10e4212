package driver

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	DefaultTickLength = 100 * time.Millisecond
)

// Ticker is advanced once per frame.
type Ticker interface {
	Tick(context.Context) error
}

// TickerFunc adapts a function to the Ticker interface.
type TickerFunc func(context.Context) error

func (f TickerFunc) Tick(ctx context.Context) error {
	return f(ctx)
}

// FrameDriver calls every ticker in order on a fixed wall-clock interval.
type FrameDriver struct {
	tickLength time.Duration
	tickers    []Ticker
	frames     uint64
}

func NewFrameDriver(tickers []Ticker, opts ...FrameDriverOpt) *FrameDriver {
	d := &FrameDriver{
		tickLength: DefaultTickLength,
		tickers:    tickers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Start runs frames until ctx is canceled or a ticker fails.
func (d *FrameDriver) Start(ctx context.Context) error {
	slog.InfoContext(ctx, "starting frame driver", "tick_length", d.tickLength, "tickers", len(d.tickers))

	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "stopping frame driver", "frames", d.frames)
			return nil
		case <-ticker.C:
			err := d.Tick(ctx)
			if err != nil {
				return err
			}
		}
	}
}

// Tick runs a single frame.
func (d *FrameDriver) Tick(ctx context.Context) error {
	d.frames++
	for i, t := range d.tickers {
		if err := t.Tick(ctx); err != nil {
			return fmt.Errorf("frame %d, ticker %d: %w", d.frames, i, err)
		}
	}
	return nil
}

// Frames returns how many frames have run.
func (d *FrameDriver) Frames() uint64 {
	return d.frames
}
