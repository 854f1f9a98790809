package animfsm

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/atomic"
)

// RecordingObserver is an observer for testing that captures all observer events
type RecordingObserver struct {
	mutex       sync.RWMutex
	Transitions []TransitionRecord
	StateEnters []string
	StateExits  []string
	NoMatches   []string
	Started     []string
	Finished    []PlaybackRecord
	Redundant   []string
	Errors      []error
	Starts      int
	Stops       int
}

var _ ExtendedObserver = (*RecordingObserver)(nil)

// TransitionRecord is one captured OnTransition call
type TransitionRecord struct {
	From string
	To   string
}

// PlaybackRecord is one captured OnPlaybackFinished call
type PlaybackRecord struct {
	Animation string
	Owner     string
	Err       error
}

// NewRecordingObserver creates a new recording observer
func NewRecordingObserver() *RecordingObserver {
	return &RecordingObserver{}
}

// OnTransition records the from and to states
func (o *RecordingObserver) OnTransition(from string, to string, _ *Transition) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Transitions = append(o.Transitions, TransitionRecord{From: from, To: to})
}

// OnStateEnter records the entered state
func (o *RecordingObserver) OnStateEnter(state string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.StateEnters = append(o.StateEnters, state)
}

// OnStateExit records the exited state
func (o *RecordingObserver) OnStateExit(state string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.StateExits = append(o.StateExits, state)
}

// OnNoTransition records the state in which no transition matched
func (o *RecordingObserver) OnNoTransition(state string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.NoMatches = append(o.NoMatches, state)
}

// OnPlaybackStarted records the started animation name
func (o *RecordingObserver) OnPlaybackStarted(animation string, _ string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Started = append(o.Started, animation)
}

// OnPlaybackFinished records the finished playback and its error
func (o *RecordingObserver) OnPlaybackFinished(animation string, owner string, _ time.Duration, err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Finished = append(o.Finished, PlaybackRecord{Animation: animation, Owner: owner, Err: err})
}

// OnRedundantPlayback records the animation whose replay was skipped
func (o *RecordingObserver) OnRedundantPlayback(requested string, _ string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Redundant = append(o.Redundant, requested)
}

// OnError records the error
func (o *RecordingObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Errors = append(o.Errors, err)
}

// OnControllerStarted counts Start calls
func (o *RecordingObserver) OnControllerStarted(string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Starts++
}

// OnControllerStopped counts Stop calls
func (o *RecordingObserver) OnControllerStopped(string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Stops++
}

// TransitionCount returns the number of captured transitions
func (o *RecordingObserver) TransitionCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.Transitions)
}

// StartedAnimations returns the names of started playbacks in order
func (o *RecordingObserver) StartedAnimations() []string {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	out := make([]string, len(o.Started))
	copy(out, o.Started)
	return out
}

// ErrorCount returns the number of captured errors
func (o *RecordingObserver) ErrorCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.Errors)
}

// CountingAnimation builds an animation whose play routine counts its
// iterations and takes d to complete
func CountingAnimation(name string, d time.Duration, opts ...AnimationOption) (*Animation, *atomic.Int64) {
	count := atomic.NewInt64(0)
	play := func(ctx context.Context, _ float64) error {
		count.Inc()
		if d <= 0 {
			return nil
		}
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
		}
		return nil
	}
	return NewAnimation(name, play, opts...), count
}

// Settle waits for the controller to finish all playbacks and pending
// evaluations, failing the test after a second
func Settle(t testing.TB, c *Controller) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Wait(ctx); err != nil {
		t.Fatalf("controller did not settle: %v", err)
	}
}

// AssertState checks the current state name
func AssertState(t testing.TB, c *Controller, expectedState string) {
	t.Helper()
	if got := c.CurrentStateName(); got != expectedState {
		t.Errorf("Expected state '%s', got '%s'", expectedState, got)
	}
}

// WaitForState polls until the controller reaches expectedState or a second elapses
func WaitForState(t testing.TB, c *Controller, expectedState string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if c.CurrentStateName() == expectedState {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("Expected state '%s', still in '%s'", expectedState, c.CurrentStateName())
}

// AssertTrigger checks a trigger pulse value
func AssertTrigger(t testing.TB, c *Controller, name string, expected bool) {
	t.Helper()
	got, err := c.Trigger(name)
	if err != nil {
		t.Fatalf("Trigger(%q): %v", name, err)
	}
	if got != expected {
		t.Errorf("Expected trigger '%s' to be %v, got %v", name, expected, got)
	}
}
