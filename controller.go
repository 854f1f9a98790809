package animfsm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
)

type playbackKind int

const (
	// steady playbacks belong to the active state and may loop
	playbackSteady playbackKind = iota
	// transition playbacks run exactly one iteration
	playbackTransition
)

func (k playbackKind) String() string {
	if k == playbackTransition {
		return "transition"
	}
	return "state"
}

// playback is the single in-flight animation instance
type playback struct {
	id        string
	kind      playbackKind
	animation *Animation
	owner     string
	cancel    context.CancelFunc
	started   time.Time
	// stopped is set when Stop silences an in-flight transition. The
	// transition still commits once its play routine returns.
	stopped bool
}

// Controller tracks the current state, flag and trigger values, and drives
// animation playback across state changes. Build one with Builder.
type Controller struct {
	id          string
	states      []*State
	stateIndex  map[string]*State
	transitions []*Transition
	flags       *registry
	triggers    *registry

	mu       sync.Mutex
	current  string
	speed    float64
	active   *playback
	pending  bool
	settled  chan struct{}
	isClosed bool

	ctx       context.Context
	logger    *slog.Logger
	observers *ObserverManager

	playbacks   *atomic.Int64
	evaluations *atomic.Int64
}

func newController(states []*State, transitions []*Transition, flagNames, triggerNames []string, speed float64, cfg controllerConfig) *Controller {
	if cfg.id == "" {
		cfg.id = uuid.New().String()
	}

	c := &Controller{
		id:          cfg.id,
		states:      states,
		stateIndex:  make(map[string]*State, len(states)),
		transitions: transitions,
		flags:       newRegistry("flag", flagNames),
		triggers:    newRegistry("trigger", triggerNames),
		speed:       speed,
		settled:     make(chan struct{}),
		ctx:         cfg.ctx,
		logger:      cfg.logger.With("controller_id", cfg.id),
		observers:   NewObserverManager(),
		playbacks:   atomic.NewInt64(0),
		evaluations: atomic.NewInt64(0),
	}
	close(c.settled)
	c.isClosed = true

	for _, s := range states {
		c.stateIndex[s.Name] = s
	}
	c.current = states[0].Name
	for _, s := range states {
		if s.Starting {
			c.current = s.Name
			break
		}
	}
	for _, o := range cfg.observers {
		c.observers.AddObserver(o)
	}
	return c
}

// ID returns the controller instance ID
func (c *Controller) ID() string {
	return c.id
}

// States returns the declared states in declaration order
func (c *Controller) States() []*State {
	out := make([]*State, len(c.states))
	copy(out, c.states)
	return out
}

// Transitions returns copies of the declared transitions in declaration order
func (c *Controller) Transitions() []*Transition {
	out := make([]*Transition, len(c.transitions))
	for i, t := range c.transitions {
		out[i] = t.clone()
	}
	return out
}

// Definition returns the declarative form of the controller
func (c *Controller) Definition() Definition {
	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshotDefinition(c.states, c.transitions, c.flags.names(), c.triggers.names(), c.speed)
}

// Flags returns a snapshot of the flag values
func (c *Controller) Flags() map[string]bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flags.snapshot()
}

// Triggers returns a snapshot of the trigger values
func (c *Controller) Triggers() map[string]bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.triggers.snapshot()
}

// FlagNames returns the declared flags in declaration order
func (c *Controller) FlagNames() []string {
	return c.flags.names()
}

// TriggerNames returns the declared triggers in declaration order
func (c *Controller) TriggerNames() []string {
	return c.triggers.names()
}

// Flag returns the value of a declared flag
func (c *Controller) Flag(name string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flags.get(name)
}

// Trigger returns the pulse value of a declared trigger
func (c *Controller) Trigger(name string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.triggers.get(name)
}

// CurrentStateName returns the name of the active state
func (c *Controller) CurrentStateName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// CurrentState returns the active state record
func (c *Controller) CurrentState() (*State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentStateLocked()
}

func (c *Controller) currentStateLocked() (*State, error) {
	s, ok := c.stateIndex[c.current]
	if !ok {
		return nil, &InvariantError{Message: fmt.Sprintf("state '%s' not found", c.current)}
	}
	return s, nil
}

// Speed returns the global speed multiplier
func (c *Controller) Speed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// IsPlaying reports whether an animation is in flight
func (c *Controller) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil
}

// PlayingAnimation returns the name of the in-flight animation, if any
func (c *Controller) PlayingAnimation() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return "", false
	}
	return c.active.animation.Name(), true
}

// PlaybackCount returns how many playbacks the controller has started
func (c *Controller) PlaybackCount() int64 {
	return c.playbacks.Load()
}

// EvaluationCount returns how many evaluation passes have run
func (c *Controller) EvaluationCount() int64 {
	return c.evaluations.Load()
}

// AddObserver registers an observer
func (c *Controller) AddObserver(observer Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers.AddObserver(observer)
}

// RemoveObserver unregisters an observer
func (c *Controller) RemoveObserver(observer Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers.RemoveObserver(observer)
}

// Start plays the current state's animation, if any. It does not evaluate
// transitions.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.unlockAndSettle()

	state, err := c.currentStateLocked()
	if err != nil {
		return err
	}
	c.logger.Debug("controller started", "state", state.Name)
	c.observers.NotifyControllerStarted(state.Name)
	c.observers.NotifyStateEnter(state.Name)
	c.playStateAnimationLocked()
	return nil
}

// Stop stops the in-flight animation and drops any pending evaluation. A
// state animation is abandoned and the current state is unchanged. A
// transition animation is asked to stop, but the transition still commits
// when its play routine returns; the target state's animation is then not
// started.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.unlockAndSettle()

	c.pending = false
	switch {
	case c.active != nil && c.active.kind == playbackTransition:
		c.silenceTransitionLocked()
	case !c.stopActiveLocked():
		c.logger.Warn("no animation is currently playing", "state", c.current)
	}
	c.observers.NotifyControllerStopped(c.current)
}

// silenceTransitionLocked stops the in-flight transition animation without
// releasing the playback slot
func (c *Controller) silenceTransitionLocked() {
	pb := c.active
	if pb.stopped {
		c.logger.Debug("transition already stopped", "animation", pb.animation.Name(), "playback_id", pb.id)
		return
	}
	pb.stopped = true
	pb.cancel()
	pb.animation.Stop()
	c.logger.Debug("transition animation stopped", "animation", pb.animation.Name(), "playback_id", pb.id)
}

// SetSpeed updates the global speed multiplier and the in-flight animation
func (c *Controller) SetSpeed(speed float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.speed = speed
	if c.active != nil {
		c.active.animation.SetSpeedMultiplier(speed)
	}
}

// SetFlag sets a declared flag and re-evaluates transitions
func (c *Controller) SetFlag(name string, value bool) error {
	c.mu.Lock()
	defer c.unlockAndSettle()

	if err := c.flags.set(name, value); err != nil {
		return err
	}
	c.logger.Debug("flag set", "flag", name, "value", value)
	c.requestEvaluationLocked()
	return nil
}

// SetTrigger pulses a declared trigger and re-evaluates transitions
func (c *Controller) SetTrigger(name string) error {
	c.mu.Lock()
	defer c.unlockAndSettle()

	if err := c.triggers.set(name, true); err != nil {
		return err
	}
	c.logger.Debug("trigger set", "trigger", name)
	c.requestEvaluationLocked()
	return nil
}

// FireTrigger is an alias of SetTrigger
func (c *Controller) FireTrigger(name string) error {
	return c.SetTrigger(name)
}

// Wait blocks until no animation is in flight and no evaluation is pending.
// A looping state animation never settles.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	settled := c.settled
	c.mu.Unlock()

	select {
	case <-settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// unlockAndSettle publishes the idle/busy status and releases the lock
func (c *Controller) unlockAndSettle() {
	idle := c.active == nil && !c.pending
	switch {
	case idle && !c.isClosed:
		close(c.settled)
		c.isClosed = true
	case !idle && c.isClosed:
		c.settled = make(chan struct{})
		c.isClosed = false
	}
	c.mu.Unlock()
}

// requestEvaluationLocked evaluates now, or defers to the end of the
// in-flight animation. Requests made while busy coalesce into one.
func (c *Controller) requestEvaluationLocked() {
	if c.active != nil {
		c.pending = true
		c.logger.Debug("evaluation deferred", "playing", c.active.animation.Name())
		return
	}
	c.evaluateLocked()
}

// selectTransitionLocked returns the first eligible transition from the
// current state. Trigger matches take priority over flag matches; ties go to
// declaration order.
func (c *Controller) selectTransitionLocked() *Transition {
	flags := c.flags.values
	triggers := c.triggers.values

	var byFlag, byTrigger *Transition
	for _, t := range c.transitions {
		if t.From != c.current || !t.guardPasses() {
			continue
		}
		if byTrigger == nil && t.triggered(triggers) {
			byTrigger = t
		}
		if byFlag == nil && t.flagsSatisfied(flags) {
			byFlag = t
		}
	}
	if byTrigger != nil {
		return byTrigger
	}
	return byFlag
}

// evaluateLocked runs one evaluation pass and reports whether a transition fired
func (c *Controller) evaluateLocked() bool {
	c.evaluations.Inc()

	t := c.selectTransitionLocked()
	if t == nil {
		c.logger.Debug("no matching transition", "state", c.current)
		c.observers.NotifyNoTransition(c.current)
		return false
	}

	for name := range t.Triggers {
		if c.triggers.values[name] {
			c.triggers.values[name] = false
		}
	}

	from := c.current
	c.stopActiveLocked()
	c.logger.Debug("transition fired", "from", from, "to", t.To)
	c.observers.NotifyTransition(from, t.To, t)

	if t.Animation != nil {
		c.startPlaybackLocked(t.Animation, playbackTransition, t.Key(), t.Speed, func(stopped bool) {
			c.enterStateLocked(from, t.To, !stopped)
		})
		return true
	}
	c.enterStateLocked(from, t.To, true)
	return true
}

// enterStateLocked switches the current state, runs a pending evaluation if
// one was requested meanwhile, and otherwise plays the state's animation when
// play is set
func (c *Controller) enterStateLocked(from, to string, play bool) {
	c.observers.NotifyStateExit(from)
	c.current = to
	c.observers.NotifyStateEnter(to)

	if c.pending {
		c.pending = false
		if c.evaluateLocked() {
			return
		}
	}
	if play {
		c.playStateAnimationLocked()
	}
}

func (c *Controller) playStateAnimationLocked() {
	state, err := c.currentStateLocked()
	if err != nil {
		c.logger.Error("cannot play state animation", "error", err)
		c.observers.NotifyError(err)
		return
	}
	if !state.HasAnimation() {
		return
	}
	c.startPlaybackLocked(state.Animation, playbackSteady, state.Name, nil, nil)
}

// startPlaybackLocked plays a clone of animation on its own goroutine.
// onComplete runs under the lock after a successful completion and reports
// whether Stop was called meanwhile.
func (c *Controller) startPlaybackLocked(animation *Animation, kind playbackKind, owner string, speed *float64, onComplete func(stopped bool)) bool {
	if c.active != nil {
		c.logger.Warn("animation is already playing",
			"requested", animation.Name(),
			"playing", c.active.animation.Name(),
		)
		c.observers.NotifyRedundantPlayback(animation.Name(), c.active.animation.Name())
		return false
	}

	clone := animation.Clone()
	if speed != nil {
		clone.SetSpeed(*speed)
	}
	clone.SetSpeedMultiplier(c.speed)

	ctx, cancel := context.WithCancel(c.ctx)
	pb := &playback{
		id:        uuid.New().String(),
		kind:      kind,
		animation: clone,
		owner:     owner,
		cancel:    cancel,
		started:   time.Now(),
	}
	if kind == playbackSteady && clone.Loop() {
		clone.SetOnEnd(func() { c.onIterationEnd(pb) })
	}
	c.active = pb
	c.playbacks.Inc()

	c.logger.Debug("playing animation",
		"animation", clone.Name(),
		"kind", kind.String(),
		"owner", owner,
		"playback_id", pb.id,
	)
	c.observers.NotifyPlaybackStarted(clone.Name(), owner)

	go c.runPlayback(ctx, pb, onComplete)
	return true
}

func (c *Controller) runPlayback(ctx context.Context, pb *playback, onComplete func(stopped bool)) {
	var err error
	if pb.kind == playbackTransition {
		err = pb.animation.PlayOnce(ctx)
	} else {
		err = pb.animation.Play(ctx)
	}

	c.mu.Lock()
	defer c.unlockAndSettle()

	if c.active != pb {
		// stopped or superseded; the stopper already reported it
		return
	}
	c.active = nil
	pb.cancel()

	if pb.stopped && errors.Is(err, context.Canceled) {
		err = nil
	}
	if err != nil {
		perr := &PlaybackError{Animation: pb.animation.Name(), State: c.current, OriginalErr: err}
		c.logger.Error("animation failed", "animation", pb.animation.Name(), "playback_id", pb.id, "error", err)
		c.observers.NotifyPlaybackFinished(pb.animation.Name(), pb.owner, time.Since(pb.started), perr)
		c.observers.NotifyError(perr)
	} else {
		c.observers.NotifyPlaybackFinished(pb.animation.Name(), pb.owner, time.Since(pb.started), nil)
	}

	if err == nil && onComplete != nil {
		onComplete(pb.stopped)
		return
	}
	if c.pending {
		c.pending = false
		c.evaluateLocked()
	}
}

// onIterationEnd runs a pending evaluation at the end of each loop iteration
// of a steady-state animation
func (c *Controller) onIterationEnd(pb *playback) {
	c.mu.Lock()
	defer c.unlockAndSettle()

	if c.active != pb || !c.pending {
		return
	}
	c.pending = false
	c.evaluateLocked()
}

// stopActiveLocked stops the in-flight playback and reports whether there was one
func (c *Controller) stopActiveLocked() bool {
	pb := c.active
	if pb == nil {
		return false
	}
	c.active = nil
	pb.cancel()
	pb.animation.Stop()

	c.logger.Debug("animation stopped", "animation", pb.animation.Name(), "playback_id", pb.id)
	c.observers.NotifyPlaybackFinished(pb.animation.Name(), pb.owner, time.Since(pb.started), nil)
	return true
}
