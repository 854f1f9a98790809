package animfsm

import (
	"context"
	"log/slog"
)

// Option configures a Controller at Build time
type Option func(*controllerConfig)

type controllerConfig struct {
	id        string
	logger    *slog.Logger
	observers []Observer
	ctx       context.Context
}

func defaultControllerConfig() controllerConfig {
	return controllerConfig{
		logger: slog.Default(),
		ctx:    context.Background(),
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *controllerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver registers an observer before the controller is returned
func WithObserver(observer Observer) Option {
	return func(c *controllerConfig) {
		if observer != nil {
			c.observers = append(c.observers, observer)
		}
	}
}

// WithID overrides the generated controller ID
func WithID(id string) Option {
	return func(c *controllerConfig) {
		c.id = id
	}
}

// WithContext sets the parent context of every playback. Cancelling it ends
// all playbacks the controller starts.
func WithContext(ctx context.Context) Option {
	return func(c *controllerConfig) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}
