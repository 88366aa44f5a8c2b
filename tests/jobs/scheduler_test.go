package jobs_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tilemart/quotation-api/internal/jobs"
	"go.uber.org/zap"
)

func TestScheduler_AddJob(t *testing.T) {
	s := jobs.NewScheduler(zap.NewNop())

	err := s.AddJob("sweep", "0 0 2 * * *", func() {})
	require.NoError(t, err)
	assert.Equal(t, []jobs.JobName{"sweep"}, s.JobNames())

	// Same name twice is rejected.
	err = s.AddJob("sweep", "0 0 3 * * *", func() {})
	assert.Error(t, err)

	// Five-field expressions are invalid, the seconds field is required.
	err = s.AddJob("other", "0 2 * * *", func() {})
	assert.Error(t, err)
}

func TestScheduler_RemoveJob(t *testing.T) {
	s := jobs.NewScheduler(zap.NewNop())

	require.NoError(t, s.AddJob("sweep", "0 0 2 * * *", func() {}))
	require.NoError(t, s.RemoveJob("sweep"))
	assert.Empty(t, s.JobNames())

	assert.Error(t, s.RemoveJob("sweep"))
}

func TestScheduler_RunsJob(t *testing.T) {
	s := jobs.NewScheduler(zap.NewNop())

	var mu sync.Mutex
	ran := false
	done := make(chan struct{})
	require.NoError(t, s.AddJob("tick", "* * * * * *", func() {
		mu.Lock()
		defer mu.Unlock()
		if !ran {
			ran = true
			close(done)
		}
	}))

	s.Start()
	defer func() { <-s.Stop().Done() }()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run within its schedule")
	}
}
