package calculator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/verte-zerg/pidigits/internal/chunkcache"
	"github.com/verte-zerg/pidigits/internal/digits"
	"github.com/verte-zerg/pidigits/internal/generator"
	"github.com/verte-zerg/pidigits/internal/model"
	"github.com/verte-zerg/pidigits/internal/window"
)

type stringReader string

func (s stringReader) ReadDigits(_ context.Context, offset, length int) (string, error) {
	if offset < 0 || offset >= len(s) || length <= 0 {
		return "", nil
	}
	return string(s[offset:min(offset+length, len(s))]), nil
}

func (s stringReader) TotalDigits() int { return len(s) }

func newWindowReader(t *testing.T, corpus string) *window.Reader {
	t.Helper()
	cache, err := chunkcache.New(chunkcache.PolicyFIFO, 4)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	r := window.New(digits.NewMemorySource(corpus), cache, window.WithChunkSize(16))
	if err := r.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestCalculateMachinStreamsEveryDigit(t *testing.T) {
	corpus := generator.PiDigits(200)
	c := New(newWindowReader(t, corpus), WithPaceScale(0))

	var snapshots []model.CalculationProgress
	res, err := c.Calculate(context.Background(), 50, model.AlgorithmMachin, func(p model.CalculationProgress) {
		snapshots = append(snapshots, p)
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if !res.Complete {
		t.Fatalf("expected complete result")
	}
	if len(res.Digits)-2 != 50 || res.Digits != "3."+corpus[:50] {
		t.Fatalf("unexpected result %q", res.Digits)
	}
	if len(snapshots) != 50 {
		t.Fatalf("expected 50 snapshots, got %d", len(snapshots))
	}
	for i, p := range snapshots {
		if p.CurrentDigits != i+1 {
			t.Fatalf("snapshot %d reports %d digits", i, p.CurrentDigits)
		}
		if p.TargetDigits != 50 {
			t.Fatalf("snapshot %d target %d", i, p.TargetDigits)
		}
		if len(p.CurrentResult) != p.CurrentDigits+2 {
			t.Fatalf("snapshot %d result %q", i, p.CurrentResult)
		}
	}
}

func TestCalculateCancelStopsProgress(t *testing.T) {
	c := New(stringReader(generator.PiDigits(100)), WithPaceScale(0))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var last int
	count := 0
	res, err := c.Calculate(ctx, 50, model.AlgorithmMachin, func(p model.CalculationProgress) {
		count++
		last = p.CurrentDigits
		if p.CurrentDigits == 10 {
			cancel()
		}
	})
	if err != nil {
		t.Fatalf("cancellation should not be an error: %v", err)
	}
	if res.Complete {
		t.Fatalf("cancelled calculation reported complete")
	}
	if count != 10 || last != 10 {
		t.Fatalf("expected progress to halt at 10, got %d snapshots ending at %d", count, last)
	}
	if len(res.Digits)-2 != 10 {
		t.Fatalf("expected partial result of 10 digits, got %q", res.Digits)
	}
}

func TestCalculateCancelDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	sleep := func(ctx context.Context, _ time.Duration) error {
		calls++
		if calls == 3 {
			cancel()
			return ctx.Err()
		}
		return nil
	}
	c := New(stringReader("1415926535"), WithSleep(sleep))
	count := 0
	res, err := c.Calculate(ctx, 10, model.AlgorithmSpigot, func(model.CalculationProgress) { count++ })
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if res.Complete || count != 2 || res.Digits != "3.14" {
		t.Fatalf("unexpected result %+v after %d snapshots", res, count)
	}
}

// cancellingReader cancels the calculation while serving the read at offset.
type cancellingReader struct {
	stringReader
	at     int
	cancel context.CancelFunc
}

func (r cancellingReader) ReadDigits(ctx context.Context, offset, length int) (string, error) {
	if offset == r.at {
		r.cancel()
	}
	return r.stringReader.ReadDigits(ctx, offset, length)
}

func TestCalculateCancelDuringRead(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reader := cancellingReader{stringReader: stringReader("1415926535"), at: 4, cancel: cancel}
	c := New(reader, WithPaceScale(0))
	count := 0
	res, err := c.Calculate(ctx, 10, model.AlgorithmMachin, func(model.CalculationProgress) { count++ })
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if res.Complete {
		t.Fatalf("cancelled calculation reported complete")
	}
	if count != 4 || res.Digits != "3.1415" {
		t.Fatalf("expected 4 snapshots and 3.1415, got %d and %q", count, res.Digits)
	}
}

func TestCalculateAGMBatches(t *testing.T) {
	corpus := generator.PiDigits(200)
	c := New(stringReader(corpus), WithPaceScale(0))
	var seen []int
	res, err := c.Calculate(context.Background(), 107, model.AlgorithmAGM, func(p model.CalculationProgress) {
		seen = append(seen, p.CurrentDigits)
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	// batch = 107/20 = 5, 21 batches, the last absorbing the remainder.
	if len(seen) != 21 {
		t.Fatalf("expected 21 snapshots, got %d: %v", len(seen), seen)
	}
	for i := 1; i < len(seen); i++ {
		if seen[i] <= seen[i-1] {
			t.Fatalf("progress not strictly increasing: %v", seen)
		}
	}
	if seen[len(seen)-1] != 107 || res.Digits != "3."+corpus[:107] {
		t.Fatalf("unexpected final state %v %q", seen, res.Digits)
	}
}

func TestCalculateTruncatesToAvailable(t *testing.T) {
	c := New(stringReader("14159"), WithPaceScale(0))
	var last model.CalculationProgress
	res, err := c.Calculate(context.Background(), 1000, model.AlgorithmSpigot, func(p model.CalculationProgress) { last = p })
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if res.Digits != "3.14159" || !res.Complete || last.TargetDigits != 5 {
		t.Fatalf("unexpected result %+v, last %+v", res, last)
	}
	if res.Precision != 1000 {
		t.Fatalf("expected requested precision to be kept, got %d", res.Precision)
	}
}

func TestCalculateEstimatedRemaining(t *testing.T) {
	c := New(stringReader("1415926535"), WithSleep(func(context.Context, time.Duration) error { return nil }))
	var etas []time.Duration
	if _, err := c.Calculate(context.Background(), 4, model.AlgorithmMachin, func(p model.CalculationProgress) {
		etas = append(etas, p.EstimatedRemain)
	}); err != nil {
		t.Fatalf("calculate: %v", err)
	}
	want := []time.Duration{150 * time.Millisecond, 100 * time.Millisecond, 50 * time.Millisecond, 0}
	for i := range want {
		if etas[i] != want[i] {
			t.Fatalf("eta %d = %v, want %v", i, etas[i], want[i])
		}
	}
}

func TestCalculateUnknownAlgorithm(t *testing.T) {
	c := New(stringReader("1"))
	if _, err := c.Calculate(context.Background(), 1, model.Algorithm("bbp"), nil); !errors.Is(err, ErrUnknownAlgorithm) {
		t.Fatalf("expected ErrUnknownAlgorithm, got %v", err)
	}
}

func TestCalculateZeroDigits(t *testing.T) {
	c := New(stringReader("14159"), WithPaceScale(0))
	res, err := c.Calculate(context.Background(), 0, model.AlgorithmAGM, func(model.CalculationProgress) {
		t.Fatalf("no snapshots expected")
	})
	if err != nil || res.Digits != "3." || !res.Complete {
		t.Fatalf("unexpected result %+v, %v", res, err)
	}
}
