package animfsm

import (
	"context"
	"sync"

	"go.uber.org/atomic"
)

// PlayFunc runs one iteration of an animation and returns when it completes.
// speed is the effective speed (animation speed times the controller multiplier).
type PlayFunc func(ctx context.Context, speed float64) error

// StopFunc halts whatever the play routine is rendering
type StopFunc func()

// Animation is an opaque playable unit with lifecycle hooks
type Animation struct {
	name            string
	play            PlayFunc
	stop            StopFunc
	loop            bool
	speed           *atomic.Float64
	speedMultiplier *atomic.Float64

	mu      sync.Mutex
	onStart func()
	onEnd   func()
}

// AnimationOption configures an Animation
type AnimationOption func(*Animation)

// WithStop sets the routine invoked by Stop
func WithStop(stop StopFunc) AnimationOption {
	return func(a *Animation) {
		a.stop = stop
	}
}

// WithSpeed sets the initial animation speed
func WithSpeed(speed float64) AnimationOption {
	return func(a *Animation) {
		a.speed.Store(speed)
	}
}

// WithLoop makes Play restart the routine after every iteration
func WithLoop(loop bool) AnimationOption {
	return func(a *Animation) {
		a.loop = loop
	}
}

// NewAnimation creates an animation around a play routine
func NewAnimation(name string, play PlayFunc, opts ...AnimationOption) *Animation {
	if play == nil {
		play = func(context.Context, float64) error { return nil }
	}
	a := &Animation{
		name:            name,
		play:            play,
		stop:            func() {},
		speed:           atomic.NewFloat64(1),
		speedMultiplier: atomic.NewFloat64(1),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.stop == nil {
		a.stop = func() {}
	}
	return a
}

// Name returns the animation name
func (a *Animation) Name() string {
	return a.name
}

// Loop reports whether Play repeats the routine
func (a *Animation) Loop() bool {
	return a.loop
}

// Speed returns the animation speed
func (a *Animation) Speed() float64 {
	return a.speed.Load()
}

// SetSpeed updates the speed read by the next iteration
func (a *Animation) SetSpeed(speed float64) {
	a.speed.Store(speed)
}

// SpeedMultiplier returns the multiplier applied on top of Speed
func (a *Animation) SpeedMultiplier() float64 {
	return a.speedMultiplier.Load()
}

// SetSpeedMultiplier updates the multiplier applied on top of Speed
func (a *Animation) SetSpeedMultiplier(multiplier float64) {
	a.speedMultiplier.Store(multiplier)
}

// EffectiveSpeed is the speed handed to the play routine
func (a *Animation) EffectiveSpeed() float64 {
	return a.speed.Load() * a.speedMultiplier.Load()
}

// SetOnStart replaces the start callback
func (a *Animation) SetOnStart(cb func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onStart = cb
}

// SetOnEnd replaces the end callback
func (a *Animation) SetOnEnd(cb func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onEnd = cb
}

func (a *Animation) callbacks() (func(), func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.onStart, a.onEnd
}

// Play runs the animation. A looping animation repeats until ctx is done or an
// iteration fails; cancellation ends the loop without an error.
func (a *Animation) Play(ctx context.Context) error {
	for {
		if err := a.PlayOnce(ctx); err != nil {
			return err
		}
		if !a.loop || ctx.Err() != nil {
			return nil
		}
	}
}

// PlayOnce runs a single iteration regardless of the loop setting
func (a *Animation) PlayOnce(ctx context.Context) error {
	onStart, _ := a.callbacks()
	if onStart != nil {
		onStart()
	}
	if err := a.play(ctx, a.EffectiveSpeed()); err != nil {
		return err
	}
	// read again: the end slot may have been replaced while playing
	_, onEnd := a.callbacks()
	if onEnd != nil {
		onEnd()
	}
	return nil
}

// Stop invokes the stop routine. It does not interrupt a running Play.
func (a *Animation) Stop() {
	a.stop()
}

// Clone returns an independent copy with empty callback slots
func (a *Animation) Clone() *Animation {
	return &Animation{
		name:            a.name,
		play:            a.play,
		stop:            a.stop,
		loop:            a.loop,
		speed:           atomic.NewFloat64(a.speed.Load()),
		speedMultiplier: atomic.NewFloat64(a.speedMultiplier.Load()),
	}
}
