package scheduler

import (
	"testing"
	"time"

	"ReuniaSync/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterIsIdempotent(t *testing.T) {
	w := NewWorker(newFakeRunner(0), 4, 3, time.Millisecond, quietLogger())
	w.RegisterSource(model.SourceFBI)
	s := NewScheduler(w, quietLogger())

	require.NoError(t, s.Register(model.SourceFBI, time.Hour))
	require.NoError(t, s.Register(model.SourceFBI, 30*time.Minute))
	require.NoError(t, s.Register(model.SourceFBI, time.Hour))

	// 重复注册只替换，不累积日程
	assert.Equal(t, 1, s.EntryCount())

	require.NoError(t, s.Register(model.SourceNamUs, time.Hour))
	assert.Equal(t, 2, s.EntryCount())
}

func TestRegisterRejectsBadInterval(t *testing.T) {
	s := NewScheduler(NewWorker(newFakeRunner(0), 4, 3, time.Millisecond, quietLogger()), quietLogger())
	assert.Error(t, s.Register(model.SourceFBI, 0))
	assert.Error(t, s.Register(model.SourceFBI, -time.Minute))
	assert.Equal(t, 0, s.EntryCount())
}

func TestScheduledTickEnqueuesJob(t *testing.T) {
	runner := newFakeRunner(0)
	w := NewWorker(runner, 4, 3, time.Millisecond, quietLogger())
	w.RegisterSource(model.SourceFBI)
	w.Start()
	defer func() { _ = w.Stop(time.Second) }()

	s := NewScheduler(w, quietLogger())
	require.NoError(t, s.Register(model.SourceFBI, 50*time.Millisecond))
	s.Start()
	defer s.Stop()

	// 至少触发两轮定时摄取
	waitForRuns(t, runner, 2, 5*time.Second)
	assert.GreaterOrEqual(t, runner.callCount(), 2)
}
