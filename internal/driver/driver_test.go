package driver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

func TestFrameDriver_Tick(t *testing.T) {
	tests := map[string]struct {
		tickers  func(calls *[]int) []Ticker
		expCalls int
		expErr   string
	}{
		"runs every ticker in order": {
			tickers: func(calls *[]int) []Ticker {
				return []Ticker{
					TickerFunc(func(context.Context) error { *calls = append(*calls, 1); return nil }),
					TickerFunc(func(context.Context) error { *calls = append(*calls, 2); return nil }),
				}
			},
			expCalls: 2,
		},
		"stops at first failure": {
			tickers: func(calls *[]int) []Ticker {
				return []Ticker{
					TickerFunc(func(context.Context) error { return errors.New("boom") }),
					TickerFunc(func(context.Context) error { *calls = append(*calls, 2); return nil }),
				}
			},
			expCalls: 0,
			expErr:   "frame 1, ticker 0: boom",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var calls []int
			d := NewFrameDriver(tt.tickers(&calls))

			err := d.Tick(context.Background())

			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "calls", len(calls), tt.expCalls)
			if tt.expCalls == 2 {
				testutil.AssertEqual(t, "order", calls[0] < calls[1], true)
			}
			testutil.AssertEqual(t, "frames", d.Frames(), uint64(1))
		})
	}
}

func TestFrameDriver_StartStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ticks := 0
	d := NewFrameDriver([]Ticker{TickerFunc(func(context.Context) error {
		ticks++
		if ticks == 3 {
			cancel()
		}
		return nil
	})}, WithTickLength(time.Millisecond))

	err := d.Start(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "ticks", ticks >= 3, true)
}

func TestFrameDriver_StartReturnsTickerError(t *testing.T) {
	d := NewFrameDriver([]Ticker{TickerFunc(func(context.Context) error {
		return errors.New("broken")
	})}, WithTickLength(time.Millisecond))

	testutil.AssertErrorContains(t, d.Start(context.Background()), "broken")
}

func TestWithTickLength(t *testing.T) {
	d := NewFrameDriver(nil, WithTickLength(-time.Second))
	testutil.AssertEqual(t, "default kept", d.tickLength, DefaultTickLength)

	d = NewFrameDriver(nil, WithTickLength(time.Second))
	testutil.AssertEqual(t, "set", d.tickLength, time.Second)
}
