// Package calculator reveals corpus digits as a paced, cancellable
// "calculation" stream for live display.
package calculator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/pidigits/internal/model"
)

// ErrUnknownAlgorithm is returned for an algorithm with no pacing profile.
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// DigitReader is the digit window the calculator reveals from.
type DigitReader interface {
	ReadDigits(ctx context.Context, offset, length int) (string, error)
	TotalDigits() int
}

// ProgressFunc receives each snapshot in order.
type ProgressFunc func(model.CalculationProgress)

// pacing describes how an algorithm reveals digits.
type pacing struct {
	delay   time.Duration
	batches func(target int) int
}

func perDigit(delay time.Duration) pacing {
	return pacing{delay: delay, batches: func(int) int { return 1 }}
}

var pacings = map[model.Algorithm]pacing{
	model.AlgorithmMachin: perDigit(50 * time.Millisecond),
	model.AlgorithmAGM: {
		delay:   100 * time.Millisecond,
		batches: func(target int) int { return max(1, target/20) },
	},
	model.AlgorithmSpigot: perDigit(25 * time.Millisecond),
}

// Calculator streams digits from a DigitReader.
type Calculator struct {
	reader    DigitReader
	paceScale float64
	sleep     func(ctx context.Context, d time.Duration) error
	now       func() time.Time
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithPaceScale multiplies every reveal delay. Zero disables delays.
func WithPaceScale(scale float64) Option {
	return func(c *Calculator) {
		if scale >= 0 {
			c.paceScale = scale
		}
	}
}

// WithSleep replaces the delay function.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Calculator) {
		c.sleep = fn
	}
}

// WithClock replaces the time source used for elapsed time.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) {
		c.now = now
	}
}

// New returns a Calculator over reader.
func New(reader DigitReader, opts ...Option) *Calculator {
	c := &Calculator{
		reader:    reader,
		paceScale: 1,
		sleep:     sleepContext,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Calculate reveals min(digits, available) digits after "3." using the
// algorithm's pacing. Snapshots are strictly increasing in CurrentDigits.
// When ctx is cancelled the stream stops without further snapshots and the
// partial result is returned with Complete set to false and a nil error.
func (c *Calculator) Calculate(ctx context.Context, digits int, algorithm model.Algorithm, onProgress ProgressFunc) (model.CalculationResult, error) {
	p, ok := pacings[algorithm]
	if !ok {
		return model.CalculationResult{}, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}
	started := c.now()
	target := max(min(digits, c.reader.TotalDigits()), 0)
	delay := time.Duration(float64(p.delay) * c.paceScale)

	var b strings.Builder
	b.Grow(target + 2)
	b.WriteString("3.")

	result := model.CalculationResult{
		Precision: digits,
		Algorithm: algorithm,
	}

	batch := p.batches(target)
	steps := target / batch
	complete := true
	for step := 0; step < steps; step++ {
		if ctx.Err() != nil {
			complete = false
			break
		}
		if delay > 0 {
			if err := c.sleep(ctx, delay); err != nil {
				complete = false
				break
			}
		}
		if ctx.Err() != nil {
			complete = false
			break
		}

		from := step * batch
		to := from + batch
		if step == steps-1 {
			to = target
		}
		chunk, err := c.reader.ReadDigits(ctx, from, to-from)
		if err != nil {
			if ctx.Err() != nil {
				complete = false
				break
			}
			return model.CalculationResult{}, fmt.Errorf("failed to read digits %d-%d: %w", from, to, err)
		}
		if ctx.Err() != nil {
			complete = false
			break
		}
		b.WriteString(chunk)

		if onProgress != nil {
			onProgress(model.CalculationProgress{
				CurrentDigits:   to,
				TargetDigits:    target,
				EstimatedRemain: time.Duration(steps-step-1) * delay,
				CurrentResult:   b.String(),
			})
		}
	}

	result.Digits = b.String()
	result.Elapsed = c.now().Sub(started)
	result.Complete = complete
	return result, nil
}

// Available reports how many digits a calculation can reveal.
func (c *Calculator) Available() int {
	return c.reader.TotalDigits()
}
