package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyguard/internal/models"
)

func TestGetOrCreateStatusDefaults(t *testing.T) {
	env := newTestEnv(t)
	family, _ := env.family(t, "parent@example.com")

	status, err := env.barrier.GetOrCreateStatus(context.Background(), family.ID)
	require.NoError(t, err)
	assert.Equal(t, family.ID, status.FamilyID)
	assert.False(t, status.IsActive)
	assert.Equal(t, models.DefaultCheckIntervalSeconds, status.CheckIntervalSeconds)
	assert.Nil(t, status.ActivatedAt)
	assert.Nil(t, status.ActivatedBy)
}

func TestGetOrCreateStatusConcurrentCallersShareOneRow(t *testing.T) {
	env := newTestEnv(t)
	family, _ := env.family(t, "parent@example.com")

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = env.barrier.GetOrCreateStatus(context.Background(), family.ID)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, env.count(t, "barrier_status"))
}

func TestGetOrCreateStatusDoesNotResetActiveBarrier(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	family, parent := env.family(t, "parent@example.com")

	_, err := env.barrier.Toggle(ctx, family.ID, true, &parent.ID)
	require.NoError(t, err)

	status, err := env.barrier.GetOrCreateStatus(ctx, family.ID)
	require.NoError(t, err)
	assert.True(t, status.IsActive)
}

func TestToggleOffPreservesActivation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	family, parent := env.family(t, "parent@example.com")

	on := time.Date(2026, 5, 4, 18, 0, 0, 0, time.UTC)
	env.barrier.now = fixedClock(on)
	active, err := env.barrier.Toggle(ctx, family.ID, true, &parent.ID)
	require.NoError(t, err)
	assert.True(t, active.IsActive)
	require.NotNil(t, active.ActivatedAt)
	assert.True(t, on.Equal(*active.ActivatedAt))
	require.NotNil(t, active.ActivatedBy)
	assert.Equal(t, parent.ID, *active.ActivatedBy)

	off := on.Add(2 * time.Hour)
	env.barrier.now = fixedClock(off)
	inactive, err := env.barrier.Toggle(ctx, family.ID, false, nil)
	require.NoError(t, err)
	assert.False(t, inactive.IsActive)
	assert.True(t, off.Equal(inactive.UpdatedAt))
	require.NotNil(t, inactive.ActivatedAt)
	assert.True(t, on.Equal(*inactive.ActivatedAt))
	require.NotNil(t, inactive.ActivatedBy)
	assert.Equal(t, parent.ID, *inactive.ActivatedBy)

	assert.Equal(t, 1, env.count(t, "barrier_status"))
}

func TestToggleActiveAgainRefreshesActivation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	family, parent := env.family(t, "parent@example.com")
	second := env.child(t, family, "kid@example.com", "Kid")

	first := time.Date(2026, 5, 4, 18, 0, 0, 0, time.UTC)
	env.barrier.now = fixedClock(first)
	_, err := env.barrier.Toggle(ctx, family.ID, true, &parent.ID)
	require.NoError(t, err)

	later := first.Add(time.Minute)
	env.barrier.now = fixedClock(later)
	status, err := env.barrier.Toggle(ctx, family.ID, true, &second.ID)
	require.NoError(t, err)
	assert.True(t, later.Equal(*status.ActivatedAt))
	assert.Equal(t, second.ID, *status.ActivatedBy)

	// without an acting user the previous activator is kept
	status, err = env.barrier.Toggle(ctx, family.ID, true, nil)
	require.NoError(t, err)
	assert.Equal(t, second.ID, *status.ActivatedBy)
}

func TestToggleFirstWriteCreatesRow(t *testing.T) {
	env := newTestEnv(t)
	family, _ := env.family(t, "parent@example.com")

	status, err := env.barrier.Toggle(context.Background(), family.ID, false, nil)
	require.NoError(t, err)
	assert.False(t, status.IsActive)
	assert.Nil(t, status.ActivatedAt)
	assert.Equal(t, models.DefaultCheckIntervalSeconds, status.CheckIntervalSeconds)
}
