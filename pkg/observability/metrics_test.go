package observability_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/nest/pkg/fsm"
	"github.com/aretw0/nest/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Instrument(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	p := fsm.New(formConfig())
	m.Instrument(p)
	p.OnStateCreate(func(s *fsm.State) {
		if s.Key() == "CHECK" {
			s.OnEnter(func(ctx context.Context, s *fsm.State) error {
				return errors.New("invalid input")
			})
		}
	})

	ctx := context.Background()
	for _, ev := range []string{"", "submit", "ok"} {
		p.Dispatch(ctx, ev)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Entered("ROOT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Entered("SHOW")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Exited("SHOW")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Exited("FORM")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Exited("ROOT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures("CHECK")))

	m.ObserveDispatch("ok", 10*time.Millisecond)
	count, err := testutil.GatherAndCount(reg, "nest_dispatch_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)
}
