package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestScheduler_AddRemove(t *testing.T) {
	s := NewScheduler(zap.NewNop(), nil)
	noop := func() error { return nil }

	require.NoError(t, s.AddJob("b", "0 30 2 * * *", noop))
	require.NoError(t, s.AddJob("a", "@every 5m", noop))
	assert.Equal(t, []string{"a", "b"}, s.JobNames())

	assert.Error(t, s.AddJob("a", "@every 1m", noop), "duplicate name")
	assert.Error(t, s.AddJob("c", "not a cron", noop))

	require.NoError(t, s.RemoveJob("a"))
	assert.Error(t, s.RemoveJob("a"))
	assert.Equal(t, []string{"b"}, s.JobNames())
}

func TestScheduler_RunsJobs(t *testing.T) {
	s := NewScheduler(zap.NewNop(), nil)
	var runs atomic.Int32
	require.NoError(t, s.AddJob("tick", "* * * * * *", func() error {
		runs.Add(1)
		return nil
	}))

	s.Start()
	defer func() { <-s.Stop().Done() }()

	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}

func TestScheduler_RecordsOutcome(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	reg := prometheus.NewRegistry()
	s := NewScheduler(zap.New(core), metrics.New(reg))

	s.run("backup_export", func() error { return nil })
	s.run("backup_export", func() error { return errors.New("disk full") })

	failures := logs.FilterMessage("scheduled job failed").All()
	require.Len(t, failures, 1)
	assert.Equal(t, "backup_export", failures[0].ContextMap()["job_name"])

	mfs, err := reg.Gather()
	require.NoError(t, err)
	outcomes := map[string]float64{}
	for _, mf := range mfs {
		if mf.GetName() != "job_runs_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "outcome" {
					outcomes[l.GetValue()] = m.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, map[string]float64{"success": 1, "failure": 1}, outcomes)
}

type fakeExporter struct {
	exported int
	err      error
	deadline bool
}

func (f *fakeExporter) ExportAll(ctx context.Context) (int, error) {
	_, f.deadline = ctx.Deadline()
	return f.exported, f.err
}

func TestBackupJob_Run(t *testing.T) {
	ok := &fakeExporter{exported: 3}
	require.NoError(t, NewBackupJob(ok, zap.NewNop(), time.Minute).Run())
	assert.True(t, ok.deadline)

	failing := &fakeExporter{exported: 1, err: errors.New("owner x: boom")}
	err := NewBackupJob(failing, zap.NewNop(), time.Minute).Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

type fakeSweeper struct {
	maxIdle time.Duration
	removed int
}

func (f *fakeSweeper) Sweep(maxIdle time.Duration) int {
	f.maxIdle = maxIdle
	return f.removed
}

func TestRegisterJobs(t *testing.T) {
	s := NewScheduler(zap.NewNop(), nil)
	require.NoError(t, RegisterBackupJob(s, &fakeExporter{}, zap.NewNop(), "0 0 2 * * *", time.Minute))

	sweeper := &fakeSweeper{removed: 2}
	require.NoError(t, RegisterSessionSweepJob(s, sweeper, zap.NewNop(), "0 */5 * * * *", 30*time.Minute))
	assert.Equal(t, []string{BackupJobName, SessionSweepJobName}, s.JobNames())

	assert.Error(t, RegisterBackupJob(s, &fakeExporter{}, zap.NewNop(), "0 0 3 * * *", time.Minute))
}
