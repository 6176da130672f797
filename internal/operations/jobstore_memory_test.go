package operations

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryJobStore(t *testing.T) {
	store := NewMemoryJobStore(0)
	base := time.Now()

	jobs := []*Job{
		{ID: "a", Status: JobStatusCompleted, CreatedAt: base.Add(-3 * time.Hour)},
		{ID: "b", Status: JobStatusPending, CreatedAt: base.Add(-2 * time.Hour)},
		{ID: "c", Status: JobStatusFailed, CreatedAt: base.Add(-time.Hour)},
	}
	for _, job := range jobs {
		require.NoError(t, store.CreateJob(job))
	}
	assert.Error(t, store.CreateJob(&Job{ID: "a"}), "duplicate IDs are rejected")

	t.Run("returns copies", func(t *testing.T) {
		got, err := store.GetJob("b")
		require.NoError(t, err)
		got.Status = JobStatusRunning

		again, err := store.GetJob("b")
		require.NoError(t, err)
		assert.Equal(t, JobStatusPending, again.Status)
	})

	t.Run("lists newest first with filters", func(t *testing.T) {
		all, err := store.ListJobs(JobFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{"c", "b", "a"}, []string{all[0].ID, all[1].ID, all[2].ID})

		limited, err := store.ListJobs(JobFilter{Limit: 1})
		require.NoError(t, err)
		require.Len(t, limited, 1)
		assert.Equal(t, "c", limited[0].ID)

		pending, err := store.ListJobs(JobFilter{Status: JobStatusPending})
		require.NoError(t, err)
		require.Len(t, pending, 1)

		recent, err := store.ListJobs(JobFilter{Since: base.Add(-90 * time.Minute)})
		require.NoError(t, err)
		assert.Len(t, recent, 1)
	})

	t.Run("stats", func(t *testing.T) {
		stats := store.GetStats()
		assert.Equal(t, 3, stats["total_jobs"])
		assert.Equal(t, 1, stats["pending"])
		assert.Equal(t, 1, stats["completed"])
		assert.Equal(t, 1, stats["failed"])
	})

	t.Run("cleanup removes only old finished jobs", func(t *testing.T) {
		deleted, err := store.CleanupOldJobs(90 * time.Minute)
		require.NoError(t, err)
		assert.Equal(t, 1, deleted)

		_, err = store.GetJob("a")
		assert.True(t, errors.Is(err, ErrJobNotFound))
		_, err = store.GetJob("b")
		assert.NoError(t, err)
	})

	t.Run("update and delete unknown jobs", func(t *testing.T) {
		assert.True(t, errors.Is(store.UpdateJob(&Job{ID: "zz"}), ErrJobNotFound))
		assert.True(t, errors.Is(store.DeleteJob("zz"), ErrJobNotFound))
		assert.NoError(t, store.DeleteJob("c"))
	})
}

func TestMemoryJobStoreEvictsOldestFinished(t *testing.T) {
	store := NewMemoryJobStore(2)
	base := time.Now()

	require.NoError(t, store.CreateJob(&Job{ID: "running", Status: JobStatusRunning, CreatedAt: base.Add(-time.Hour)}))
	require.NoError(t, store.CreateJob(&Job{ID: "done", Status: JobStatusCompleted, CreatedAt: base}))
	require.NoError(t, store.CreateJob(&Job{ID: "new", Status: JobStatusPending, CreatedAt: base.Add(time.Minute)}))

	_, err := store.GetJob("done")
	assert.True(t, errors.Is(err, ErrJobNotFound))
	_, err = store.GetJob("running")
	assert.NoError(t, err, "unfinished jobs are never evicted")
}
