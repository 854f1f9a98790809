package animfsm

import (
	"fmt"
	"time"
)

// Observer represents an entity that observes controller lifecycle.
// Observers are called with the controller lock held and must not call back
// into the controller.
type Observer interface {
	// Required methods

	// OnTransition is called when a transition fires, before its animation plays
	OnTransition(from string, to string, transition *Transition)

	// OnStateEnter is called when the current state changes
	OnStateEnter(state string)
}

// ExtendedObserver provides additional optional observation methods
type ExtendedObserver interface {
	Observer

	// OnStateExit is called when leaving a state
	OnStateExit(state string)

	// OnNoTransition is called when an evaluation pass finds nothing eligible
	OnNoTransition(state string)

	// OnPlaybackStarted is called when an animation starts playing
	OnPlaybackStarted(animation string, state string)

	// OnPlaybackFinished is called when a playback ends, was stopped or failed
	OnPlaybackFinished(animation string, state string, elapsed time.Duration, err error)

	// OnRedundantPlayback is called when a play request is dropped because
	// another animation is in flight
	OnRedundantPlayback(requested string, playing string)

	// OnError is called when an error occurs during processing
	OnError(err error)

	// OnControllerStarted is called by Start
	OnControllerStarted(state string)

	// OnControllerStopped is called by Stop
	OnControllerStopped(state string)
}

// BaseObserver provides a default implementation with no-op methods
type BaseObserver struct{}

// OnTransition implements the required Observer method
func (o *BaseObserver) OnTransition(from string, to string, transition *Transition) {}

// OnStateEnter implements the required Observer method
func (o *BaseObserver) OnStateEnter(state string) {}

// OnStateExit implements the optional ExtendedObserver method
func (o *BaseObserver) OnStateExit(state string) {}

// OnNoTransition implements the optional ExtendedObserver method
func (o *BaseObserver) OnNoTransition(state string) {}

// OnPlaybackStarted implements the optional ExtendedObserver method
func (o *BaseObserver) OnPlaybackStarted(animation string, state string) {}

// OnPlaybackFinished implements the optional ExtendedObserver method
func (o *BaseObserver) OnPlaybackFinished(animation string, state string, elapsed time.Duration, err error) {
}

// OnRedundantPlayback implements the optional ExtendedObserver method
func (o *BaseObserver) OnRedundantPlayback(requested string, playing string) {}

// OnError implements the optional ExtendedObserver method
func (o *BaseObserver) OnError(err error) {}

// OnControllerStarted implements the optional ExtendedObserver method
func (o *BaseObserver) OnControllerStarted(state string) {}

// OnControllerStopped implements the optional ExtendedObserver method
func (o *BaseObserver) OnControllerStopped(state string) {}

// ObserverManager manages a collection of observers
type ObserverManager struct {
	observers []Observer
}

// NewObserverManager creates a new observer manager
func NewObserverManager() *ObserverManager {
	return &ObserverManager{
		observers: make([]Observer, 0),
	}
}

// AddObserver adds an observer to the manager
func (om *ObserverManager) AddObserver(observer Observer) {
	if observer == nil {
		return
	}
	om.observers = append(om.observers, observer)
}

// RemoveObserver removes an observer from the manager
func (om *ObserverManager) RemoveObserver(observer Observer) {
	for i, obs := range om.observers {
		if obs == observer {
			om.observers = append(om.observers[:i], om.observers[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered observers
func (om *ObserverManager) Len() int {
	return len(om.observers)
}

// each calls fn for every observer, recovering panics and reporting them
// through OnError when the observer supports it
func (om *ObserverManager) each(method string, fn func(Observer)) {
	observers := make([]Observer, len(om.observers))
	copy(observers, om.observers)

	for _, observer := range observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					if extObs, ok := observer.(ExtendedObserver); ok {
						func() {
							defer func() { _ = recover() }()
							extObs.OnError(fmt.Errorf("observer panic in %s: %v", method, r))
						}()
					}
				}
			}()
			fn(observer)
		}()
	}
}

func (om *ObserverManager) eachExtended(method string, fn func(ExtendedObserver)) {
	om.each(method, func(observer Observer) {
		if extObs, ok := observer.(ExtendedObserver); ok {
			fn(extObs)
		}
	})
}

// NotifyTransition notifies all observers of a fired transition
func (om *ObserverManager) NotifyTransition(from string, to string, transition *Transition) {
	om.each("OnTransition", func(o Observer) { o.OnTransition(from, to, transition) })
}

// NotifyStateEnter notifies all observers of state entry
func (om *ObserverManager) NotifyStateEnter(state string) {
	om.each("OnStateEnter", func(o Observer) { o.OnStateEnter(state) })
}

// NotifyStateExit notifies all observers of state exit
func (om *ObserverManager) NotifyStateExit(state string) {
	om.eachExtended("OnStateExit", func(o ExtendedObserver) { o.OnStateExit(state) })
}

// NotifyNoTransition notifies all observers that an evaluation was a no-op
func (om *ObserverManager) NotifyNoTransition(state string) {
	om.eachExtended("OnNoTransition", func(o ExtendedObserver) { o.OnNoTransition(state) })
}

// NotifyPlaybackStarted notifies all observers that an animation started
func (om *ObserverManager) NotifyPlaybackStarted(animation string, state string) {
	om.eachExtended("OnPlaybackStarted", func(o ExtendedObserver) { o.OnPlaybackStarted(animation, state) })
}

// NotifyPlaybackFinished notifies all observers that an animation ended
func (om *ObserverManager) NotifyPlaybackFinished(animation string, state string, elapsed time.Duration, err error) {
	om.eachExtended("OnPlaybackFinished", func(o ExtendedObserver) {
		o.OnPlaybackFinished(animation, state, elapsed, err)
	})
}

// NotifyRedundantPlayback notifies all observers of a dropped play request
func (om *ObserverManager) NotifyRedundantPlayback(requested string, playing string) {
	om.eachExtended("OnRedundantPlayback", func(o ExtendedObserver) { o.OnRedundantPlayback(requested, playing) })
}

// NotifyError notifies all observers of errors
func (om *ObserverManager) NotifyError(err error) {
	observers := make([]Observer, len(om.observers))
	copy(observers, om.observers)

	for _, observer := range observers {
		if extObs, ok := observer.(ExtendedObserver); ok {
			func() {
				defer func() { _ = recover() }()
				extObs.OnError(err)
			}()
		}
	}
}

// NotifyControllerStarted notifies all observers that the controller started
func (om *ObserverManager) NotifyControllerStarted(state string) {
	om.eachExtended("OnControllerStarted", func(o ExtendedObserver) { o.OnControllerStarted(state) })
}

// NotifyControllerStopped notifies all observers that the controller stopped
func (om *ObserverManager) NotifyControllerStopped(state string) {
	om.eachExtended("OnControllerStopped", func(o ExtendedObserver) { o.OnControllerStopped(state) })
}
