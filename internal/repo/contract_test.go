package repo

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func sampleTask(title string) model.Task {
	return model.Task{
		Title:      title,
		StartDate:  date(2024, 1, 1),
		AssignedTo: "alice",
		Status:     "open",
	}
}

// testRepository runs the same behaviour checks against any TaskRepository.
// newRepo must return an empty store with the schema in place.
func testRepository(t *testing.T, newRepo func(t *testing.T) TaskRepository) {
	ctx := context.Background()

	t.Run("create assigns id and keeps optional dates nil", func(t *testing.T) {
		r := newRepo(t)

		created, err := r.Create(ctx, sampleTask("Write spec"))
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, "Write spec", created.Title)
		assert.Equal(t, "", created.Description)
		assert.True(t, date(2024, 1, 1).Equal(created.StartDate))
		assert.Nil(t, created.EndDate)
		assert.Nil(t, created.CompletionDate)

		tasks, err := r.List(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, created.ID, tasks[0].ID)
		assert.Nil(t, tasks[0].EndDate)
		assert.Nil(t, tasks[0].CompletionDate)
	})

	t.Run("ids are unique", func(t *testing.T) {
		r := newRepo(t)

		seen := map[int64]bool{}
		for i := 0; i < 5; i++ {
			created, err := r.Create(ctx, sampleTask(fmt.Sprintf("Task %d", i)))
			require.NoError(t, err)
			assert.False(t, seen[created.ID], "duplicate id %d", created.ID)
			seen[created.ID] = true
		}
	})

	t.Run("get missing returns not found", func(t *testing.T) {
		r := newRepo(t)

		_, err := r.Get(ctx, 9999)
		assert.ErrorIs(t, err, ErrorNotFound)
	})

	t.Run("update overwrites every mutable field", func(t *testing.T) {
		r := newRepo(t)

		created, err := r.Create(ctx, sampleTask("Original"))
		require.NoError(t, err)

		created.Title = "Updated"
		created.Description = "more detail"
		created.StartDate = date(2024, 2, 1)
		created.EndDate = datePtr(2024, 2, 10)
		created.AssignedTo = "bob"
		created.Status = "done"
		created.CompletionDate = datePtr(2024, 2, 5)

		updated, err := r.Update(ctx, created)
		require.NoError(t, err)

		got, err := r.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, updated.ID, got.ID)
		assert.Equal(t, "Updated", got.Title)
		assert.Equal(t, "more detail", got.Description)
		assert.True(t, date(2024, 2, 1).Equal(got.StartDate))
		require.NotNil(t, got.EndDate)
		assert.True(t, date(2024, 2, 10).Equal(*got.EndDate))
		assert.Equal(t, "bob", got.AssignedTo)
		assert.Equal(t, "done", got.Status)
		require.NotNil(t, got.CompletionDate)
		assert.True(t, date(2024, 2, 5).Equal(*got.CompletionDate))
	})

	t.Run("update clears optional dates", func(t *testing.T) {
		r := newRepo(t)

		task := sampleTask("Dated")
		task.EndDate = datePtr(2024, 1, 5)
		task.CompletionDate = datePtr(2024, 1, 4)
		created, err := r.Create(ctx, task)
		require.NoError(t, err)
		require.NotNil(t, created.CompletionDate)

		created.EndDate = nil
		created.CompletionDate = nil
		_, err = r.Update(ctx, created)
		require.NoError(t, err)

		got, err := r.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, got.EndDate)
		assert.Nil(t, got.CompletionDate)
	})

	t.Run("update missing returns not found and writes nothing", func(t *testing.T) {
		r := newRepo(t)

		_, err := r.Create(ctx, sampleTask("Keep me"))
		require.NoError(t, err)

		missing := sampleTask("Ghost")
		missing.ID = 9999
		_, err = r.Update(ctx, missing)
		assert.ErrorIs(t, err, ErrorNotFound)

		tasks, err := r.List(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "Keep me", tasks[0].Title)
	})

	t.Run("delete then get returns not found", func(t *testing.T) {
		r := newRepo(t)

		created, err := r.Create(ctx, sampleTask("To delete"))
		require.NoError(t, err)

		require.NoError(t, r.Delete(ctx, created.ID))

		_, err = r.Get(ctx, created.ID)
		assert.ErrorIs(t, err, ErrorNotFound)
		assert.ErrorIs(t, r.Delete(ctx, created.ID), ErrorNotFound)
	})

	t.Run("empty title violates constraint", func(t *testing.T) {
		r := newRepo(t)

		_, err := r.Create(ctx, sampleTask(""))
		assert.ErrorIs(t, err, ErrorConstraint)
	})

	t.Run("long text fields are stored unchanged", func(t *testing.T) {
		r := newRepo(t)

		task := sampleTask(strings.Repeat("t", 500))
		task.AssignedTo = strings.Repeat("a", 200)
		task.Status = strings.Repeat("s", 200)
		created, err := r.Create(ctx, task)
		require.NoError(t, err)

		got, err := r.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, task.Title, got.Title)
		assert.Equal(t, task.AssignedTo, got.AssignedTo)
		assert.Equal(t, task.Status, got.Status)

		got.Title = strings.Repeat("u", 1000)
		_, err = r.Update(ctx, got)
		require.NoError(t, err)
	})

	t.Run("ensure schema is idempotent", func(t *testing.T) {
		r := newRepo(t)

		created, err := r.Create(ctx, sampleTask("Survives"))
		require.NoError(t, err)

		require.NoError(t, r.EnsureSchema(ctx))

		got, err := r.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Survives", got.Title)
	})

	t.Run("concurrent creates", func(t *testing.T) {
		r := newRepo(t)

		const goroutines = 10
		var wg sync.WaitGroup
		ids := make([]int64, goroutines)
		errs := make([]error, goroutines)

		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				created, err := r.Create(ctx, sampleTask(fmt.Sprintf("Concurrent %d", idx)))
				ids[idx], errs[idx] = created.ID, err
			}(i)
		}
		wg.Wait()

		seen := map[int64]bool{}
		for i, err := range errs {
			require.NoError(t, err, "request %d should not error", i)
			assert.False(t, seen[ids[i]], "duplicate id %d", ids[i])
			seen[ids[i]] = true
		}

		tasks, err := r.List(ctx)
		require.NoError(t, err)
		assert.Len(t, tasks, goroutines)
	})
}
