package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyguard/internal/apperr"
	"studyguard/internal/database"
	"studyguard/internal/models"
)

func setupRepos(t *testing.T) (*database.DB, *Repositories) {
	t.Helper()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "repo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.RunMigrations(context.Background())
	require.NoError(t, err)
	return db, New(db)
}

func createFamily(t *testing.T, repos *Repositories, name, code string) *models.Family {
	t.Helper()
	now := time.Now().UTC()
	f := &models.Family{Name: name, Code: code, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repos.Families.Insert(context.Background(), f))
	return f
}

func TestInsertAssignsKeyAndSelectOne(t *testing.T) {
	_, repos := setupRepos(t)
	ctx := context.Background()

	f := createFamily(t, repos, "Smiths", "AB23")
	assert.NotZero(t, f.ID)

	got, err := repos.Families.SelectOne(ctx, Eq("code", "AB23"))
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.ID)
	assert.Equal(t, "Smiths", got.Name)
	assert.WithinDuration(t, f.CreatedAt, got.CreatedAt, time.Millisecond)
}

func TestInsertDuplicateIsConflict(t *testing.T) {
	_, repos := setupRepos(t)
	createFamily(t, repos, "Smiths", "AB23")

	now := time.Now().UTC()
	err := repos.Families.Insert(context.Background(), &models.Family{Name: "Jones", Code: "AB23", CreatedAt: now, UpdatedAt: now})
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
}

func TestSelectOneMissingIsNotFound(t *testing.T) {
	_, repos := setupRepos(t)

	_, err := repos.Families.SelectOne(context.Background(), Eq("code", "ZZZZ"))
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestSelectManyOrderAndLimit(t *testing.T) {
	_, repos := setupRepos(t)
	ctx := context.Background()
	f := createFamily(t, repos, "Smiths", "AB23")

	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repos.Subjects.Insert(ctx, &models.Subject{FamilyID: f.ID, Name: string(rune('A' + i)), CreatedAt: at}))
	}

	got, err := repos.Subjects.SelectMany(ctx, Query{
		Where:   []Cond{Eq("family_id", f.ID)},
		OrderBy: []Order{{Column: "created_at", Desc: true}},
		Limit:   3,
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"E", "D", "C"}, []string{got[0].Name, got[1].Name, got[2].Name})

	none, err := repos.Subjects.SelectMany(ctx, Query{Where: []Cond{In("id", []int64{})}})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpsertOverwritesOnlyNamedColumns(t *testing.T) {
	_, repos := setupRepos(t)
	ctx := context.Background()
	f := createFamily(t, repos, "Smiths", "AB23")

	activatedAt := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	first := &models.BarrierStatus{FamilyID: f.ID, IsActive: true, CheckIntervalSeconds: 30, ActivatedAt: &activatedAt, UpdatedAt: activatedAt}
	require.NoError(t, repos.BarrierStatus.Upsert(ctx, first, "family_id", "is_active", "activated_at", "updated_at"))

	later := activatedAt.Add(time.Hour)
	second := &models.BarrierStatus{FamilyID: f.ID, IsActive: false, CheckIntervalSeconds: 30, UpdatedAt: later}
	require.NoError(t, repos.BarrierStatus.Upsert(ctx, second, "family_id", "is_active", "updated_at"))

	assert.False(t, second.IsActive)
	require.NotNil(t, second.ActivatedAt)
	assert.True(t, activatedAt.Equal(*second.ActivatedAt))

	n, err := repos.BarrierStatus.Count(ctx, Eq("family_id", f.ID))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestInsertIfAbsentNeverOverwrites(t *testing.T) {
	_, repos := setupRepos(t)
	ctx := context.Background()
	f := createFamily(t, repos, "Smiths", "AB23")
	now := time.Now().UTC()

	first := &models.BarrierStatus{FamilyID: f.ID, IsActive: true, CheckIntervalSeconds: 30, UpdatedAt: now}
	require.NoError(t, repos.BarrierStatus.InsertIfAbsent(ctx, first, "family_id"))

	second := &models.BarrierStatus{FamilyID: f.ID, IsActive: false, CheckIntervalSeconds: 30, UpdatedAt: now}
	require.NoError(t, repos.BarrierStatus.InsertIfAbsent(ctx, second, "family_id"))
	assert.True(t, second.IsActive, "existing row must be returned untouched")
}

func TestUpdateAndDelete(t *testing.T) {
	_, repos := setupRepos(t)
	ctx := context.Background()
	f := createFamily(t, repos, "Smiths", "AB23")

	n, err := repos.Families.Update(ctx, []Cond{Eq("name", "Smith-Jones")}, Eq("id", f.ID))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repos.Families.Update(ctx, []Cond{Eq("name", "Nobody")}, Eq("id", f.ID+100))
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	n, err = repos.Families.Delete(ctx, Eq("id", f.ID))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = repos.Families.Delete(ctx)
	assert.Error(t, err, "unfiltered delete must be refused")
}

func TestWithTxRollbackDiscardsWrites(t *testing.T) {
	db, repos := setupRepos(t)
	ctx := context.Background()

	err := db.WithTx(ctx, func(tx *database.Tx) error {
		now := time.Now().UTC()
		if err := repos.WithTx(tx).Families.Insert(ctx, &models.Family{Name: "Temp", Code: "TMP2", CreatedAt: now, UpdatedAt: now}); err != nil {
			return err
		}
		return apperr.Validation("abort")
	})
	require.Error(t, err)

	n, err := repos.Families.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNullableColumnsRoundTrip(t *testing.T) {
	_, repos := setupRepos(t)
	ctx := context.Background()
	f := createFamily(t, repos, "Smiths", "AB23")
	now := time.Now().UTC()

	orphan := &models.User{Email: "p@example.com", Name: "P", Role: models.RoleParent, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repos.Users.Insert(ctx, orphan))
	member := &models.User{Email: "c@example.com", Name: "C", Role: models.RoleChild, FamilyID: &f.ID, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repos.Users.Insert(ctx, member))

	got, err := repos.Users.SelectOne(ctx, Eq("id", orphan.ID))
	require.NoError(t, err)
	assert.Nil(t, got.FamilyID)

	got, err = repos.Users.SelectOne(ctx, Eq("id", member.ID))
	require.NoError(t, err)
	require.NotNil(t, got.FamilyID)
	assert.Equal(t, f.ID, *got.FamilyID)
	assert.Equal(t, models.RoleChild, got.Role)
}
