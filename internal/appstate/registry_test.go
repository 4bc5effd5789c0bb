package appstate_test

import (
	"testing"
	"time"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/appstate"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newIdleStore(owner string, lastSeen time.Time) *appstate.Store {
	return appstate.New(owner, appstate.Deps{}, appstate.Options{
		Now: func() time.Time { return lastSeen },
	}, zap.NewNop())
}

func TestRegistry(t *testing.T) {
	reg := appstate.NewRegistry(metrics.New(prometheus.NewRegistry()))
	store := newIdleStore("owner-a", time.Now())
	id := reg.Add(store)

	got, err := reg.Get("owner-a", id)
	require.NoError(t, err)
	assert.Same(t, store, got)

	_, err = reg.Get("owner-b", id)
	assert.ErrorIs(t, err, appstate.ErrSessionNotFound)
	assert.ErrorIs(t, reg.Remove("owner-b", id), appstate.ErrSessionNotFound)

	require.NoError(t, reg.Remove("owner-a", id))
	_, err = reg.Get("owner-a", id)
	assert.ErrorIs(t, err, appstate.ErrSessionNotFound)
	assert.Zero(t, reg.Len())
}

func TestRegistry_Sweep(t *testing.T) {
	reg := appstate.NewRegistry(nil)
	idle := reg.Add(newIdleStore("owner-a", time.Now().Add(-3*time.Hour)))
	active := reg.Add(newIdleStore("owner-a", time.Now()))

	removed := reg.Sweep(time.Hour)

	assert.Equal(t, 1, removed)
	_, err := reg.Get("owner-a", idle)
	assert.ErrorIs(t, err, appstate.ErrSessionNotFound)
	_, err = reg.Get("owner-a", active)
	assert.NoError(t, err)
}

func TestRegistry_CountsTransitions(t *testing.T) {
	promReg := prometheus.NewRegistry()
	reg := appstate.NewRegistry(metrics.New(promReg))
	store := newIdleStore("owner-a", time.Now())
	reg.Add(store)

	store.GoHome()
	store.ClearCurrentGate()

	mfs, err := promReg.Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range mfs {
		if mf.GetName() != "wizard_transitions_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
			for _, l := range m.GetLabel() {
				switch l.GetName() {
				case "view":
					assert.Equal(t, string(appstate.ViewCustomerSelect), l.GetValue())
				case "gate_status":
					assert.Equal(t, "none", l.GetValue())
				}
			}
		}
	}
	assert.Equal(t, 2.0, total)
}
