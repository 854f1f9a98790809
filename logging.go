package animfsm

import (
	"context"
	"log/slog"
	"time"
)

// LoggingObserver logs controller lifecycle events through slog
type LoggingObserver struct {
	logger *slog.Logger
	level  slog.Level
}

var _ ExtendedObserver = (*LoggingObserver)(nil)

// NewLoggingObserver creates a logging observer that writes lifecycle events
// at level. Errors are always logged at slog.LevelError.
func NewLoggingObserver(logger *slog.Logger, level slog.Level) *LoggingObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{
		logger: logger,
		level:  level,
	}
}

// NewDefaultLoggingObserver logs lifecycle events at info level on slog.Default()
func NewDefaultLoggingObserver() *LoggingObserver {
	return NewLoggingObserver(slog.Default(), slog.LevelInfo)
}

func (o *LoggingObserver) log(msg string, args ...any) {
	o.logger.Log(context.Background(), o.level, msg, args...)
}

// OnTransition logs a fired transition
func (o *LoggingObserver) OnTransition(from string, to string, transition *Transition) {
	args := []any{"from", from, "to", to}
	if transition != nil {
		if transition.Animation != nil {
			args = append(args, "animation", transition.Animation.Name())
		}
		if transition.HasTriggers() {
			args = append(args, "triggers", transition.Triggers.Names())
		}
	}
	o.log("transition", args...)
}

// OnStateEnter logs state entry
func (o *LoggingObserver) OnStateEnter(state string) {
	o.log("state entered", "state", state)
}

// OnStateExit logs state exit
func (o *LoggingObserver) OnStateExit(state string) {
	o.log("state exited", "state", state)
}

// OnNoTransition logs an evaluation pass that found nothing eligible
func (o *LoggingObserver) OnNoTransition(state string) {
	o.logger.Debug("no matching transition", "state", state)
}

// OnPlaybackStarted logs the start of a playback
func (o *LoggingObserver) OnPlaybackStarted(animation string, state string) {
	o.log("playback started", "animation", animation, "owner", state)
}

// OnPlaybackFinished logs the end of a playback
func (o *LoggingObserver) OnPlaybackFinished(animation string, state string, elapsed time.Duration, err error) {
	if err != nil {
		o.logger.Error("playback failed", "animation", animation, "owner", state, "elapsed", elapsed, "error", err)
		return
	}
	o.log("playback finished", "animation", animation, "owner", state, "elapsed", elapsed)
}

// OnRedundantPlayback logs a dropped play request
func (o *LoggingObserver) OnRedundantPlayback(requested string, playing string) {
	o.logger.Warn("redundant playback ignored", "requested", requested, "playing", playing)
}

// OnError logs an error
func (o *LoggingObserver) OnError(err error) {
	o.logger.Error("controller error", "error", err)
}

// OnControllerStarted logs Start
func (o *LoggingObserver) OnControllerStarted(state string) {
	o.log("controller started", "state", state)
}

// OnControllerStopped logs Stop
func (o *LoggingObserver) OnControllerStopped(state string) {
	o.log("controller stopped", "state", state)
}
