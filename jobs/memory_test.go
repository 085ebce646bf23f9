package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"student-grade-api/models"
)

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	job := &models.RetrainJob{ID: "a", State: models.JobPending, CreatedAt: created}
	require.NoError(t, store.Create(ctx, job))
	assert.Error(t, store.Create(ctx, job), "duplicate id")

	job.State = models.JobRunning
	require.NoError(t, store.Update(ctx, job))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	if diff := cmp.Diff(job, got); diff != "" {
		t.Errorf("Get mismatch (-want +got):\n%s", diff)
	}

	// returned records are copies
	got.State = models.JobFailed
	again, _ := store.Get(ctx, "a")
	assert.Equal(t, models.JobRunning, again.State)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Update(ctx, &models.RetrainJob{ID: "missing"}), ErrNotFound)
}

func TestMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, store.Create(ctx, &models.RetrainJob{ID: id, CreatedAt: base.Add(time.Duration(i) * time.Minute)}))
	}

	ids := func(jobs []models.RetrainJob) []string {
		var out []string
		for _, j := range jobs {
			out = append(out, j.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		limit  int
		before *time.Time
		want   []string
	}{
		{"all newest first", 0, nil, []string{"d", "c", "b", "a"}},
		{"limit", 2, nil, []string{"d", "c"}},
		{"cursor", 10, ptr(base.Add(2 * time.Minute)), []string{"b", "a"}},
		{"cursor and limit", 1, ptr(base.Add(2 * time.Minute)), []string{"b"}},
		{"cursor before everything", 10, ptr(base), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.List(ctx, tt.limit, tt.before)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func ptr[T any](v T) *T { return &v }
