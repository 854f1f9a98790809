package animfsm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsObserver_Register(t *testing.T) {
	reg := prometheus.NewRegistry()

	_, err := NewMetricsObserver(reg, "game")
	require.NoError(t, err)

	_, err = NewMetricsObserver(reg, "game")
	assert.Error(t, err, "registering the same collectors twice must fail")

	_, err = NewMetricsObserver(reg, "hud")
	assert.NoError(t, err)
}

func TestMetricsObserver_CountsControllerActivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetricsObserver(reg, "")
	require.NoError(t, err)

	walk, _ := CountingAnimation("walk", time.Millisecond)
	broken := NewAnimation("broken", func(context.Context, float64) error { return errors.New("boom") })

	controller, err := NewBuilder().
		AddState("idle").
		AddState("walk", WithAnimation(walk)).
		AddState("fall", WithAnimation(broken)).
		AddFlag("isMoving").
		AddFlag("isHovered").
		AddTransition("idle->walk", WithFlagCondition("isMoving", true)).
		AddTransition("walk->fall", WithTrigger("trip")).
		Build(WithObserver(metrics))
	require.NoError(t, err)

	require.NoError(t, controller.SetFlag("isHovered", true))
	require.NoError(t, controller.SetFlag("isMoving", true))
	Settle(t, controller)
	require.NoError(t, controller.SetTrigger("trip"))
	Settle(t, controller)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.transitions.WithLabelValues("idle", "walk")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.transitions.WithLabelValues("walk", "fall")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.stateEntries.WithLabelValues("walk")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.noTransition.WithLabelValues("idle")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.playbacks.WithLabelValues("walk", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.playbacks.WithLabelValues("broken", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.errors))
	assert.Equal(t, 2, testutil.CollectAndCount(metrics.playbackDuration))
}

func TestMetricsObserver_Redundant(t *testing.T) {
	metrics, err := NewMetricsObserver(prometheus.NewRegistry(), "")
	require.NoError(t, err)

	metrics.OnRedundantPlayback("walk", "idle")
	metrics.OnRedundantPlayback("walk", "idle")
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.redundant))
}
