package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyguard/internal/apperr"
	"studyguard/internal/models"
	"studyguard/internal/repository"
)

func TestRegisterParentCreatesHousehold(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.accounts.Register(ctx, RegisterInput{
		Email:      " Sam@Example.com ",
		Name:       "Sam",
		Role:       "parent",
		Action:     ActionCreate,
		FamilyName: "Smiths",
	})
	require.NoError(t, err)

	assert.Equal(t, "sam@example.com", res.User.Email)
	assert.Equal(t, models.RoleParent, res.User.Role)
	assert.Equal(t, "Smiths", res.Family.Name)
	require.NotNil(t, res.User.FamilyID)
	assert.Equal(t, res.Family.ID, *res.User.FamilyID)
	assert.Equal(t, 0, env.count(t, "child_settings"))
}

func TestRegisterParentDefaultFamilyName(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.accounts.Register(context.Background(), RegisterInput{
		Email: "sam@example.com", Name: "Sam", Role: "parent", Action: ActionCreate,
	})
	require.NoError(t, err)
	assert.Equal(t, "Sam's Household", res.Family.Name)
}

func TestRegisterParentRetriesTakenCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.household.CreateFamily(ctx, "Smiths", "AB23")
	require.NoError(t, err)

	env.household.newCode = codeSequence("AB23", "XY45")
	res, err := env.accounts.Register(ctx, RegisterInput{
		Email: "jo@example.com", Name: "Jo", Role: "parent", Action: ActionCreate,
	})
	require.NoError(t, err)
	assert.Equal(t, "XY45", res.Family.Code)
	assert.Equal(t, 2, env.count(t, "families"))
	assert.Equal(t, 1, env.count(t, "users"))
}

func TestRegisterParentJoin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	family, _ := env.family(t, "first@example.com")

	res, err := env.accounts.Register(ctx, RegisterInput{
		Email: "second@example.com", Name: "Second", Role: "parent", Action: ActionJoin, Code: family.Code,
	})
	require.NoError(t, err)
	assert.Equal(t, family.ID, res.Family.ID)

	_, err = env.accounts.Register(ctx, RegisterInput{
		Email: "third@example.com", Name: "Third", Role: "parent", Action: ActionJoin, Code: "ZZZZ",
	})
	assert.True(t, apperr.IsNotFound(err))
}

func TestRegisterChildJoinsWithLockedSettings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	family, _ := env.family(t, "parent@example.com")

	res, err := env.accounts.Register(ctx, RegisterInput{
		Email: "kid@example.com", Name: "Kid", Role: "child", Code: family.Code,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleChild, res.User.Role)
	assert.True(t, res.User.BelongsTo(family.ID))

	stored, err := env.repos.ChildSettings.SelectOne(ctx, repository.Eq("child_id", res.User.ID))
	require.NoError(t, err)
	assert.True(t, stored.IsLocked)
	assert.False(t, stored.TimerRunning)
	assert.Zero(t, stored.TimeEarned)
	assert.Zero(t, stored.TimeUsed)
}

func TestRegisterChildUnknownCodeWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.accounts.Register(ctx, RegisterInput{
		Email: "kid@example.com", Name: "Kid", Role: "child", Code: "ZZZZ",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
	assert.Equal(t, 0, env.count(t, "users"))
	assert.Equal(t, 0, env.count(t, "child_settings"))
}

func TestRegisterChildRules(t *testing.T) {
	env := newTestEnv(t)
	family, _ := env.family(t, "parent@example.com")

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"missing code", RegisterInput{Email: "kid@example.com", Name: "Kid", Role: "child"}},
		{"child cannot create", RegisterInput{Email: "kid@example.com", Name: "Kid", Role: "child", Action: ActionCreate, Code: family.Code}},
		{"parent without action", RegisterInput{Email: "p2@example.com", Name: "P", Role: "parent"}},
		{"parent join without code", RegisterInput{Email: "p2@example.com", Name: "P", Role: "parent", Action: ActionJoin}},
		{"bad role", RegisterInput{Email: "x@example.com", Name: "X", Role: "admin", Action: ActionCreate}},
		{"bad email", RegisterInput{Email: "nope", Name: "X", Role: "parent", Action: ActionCreate}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.accounts.Register(context.Background(), tt.input)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
	assert.Equal(t, 1, env.count(t, "users"))
}

func TestRegisterDuplicateEmailRollsBackHousehold(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.family(t, "sam@example.com")

	_, err := env.accounts.Register(ctx, RegisterInput{
		Email: "sam@example.com", Name: "Sam again", Role: "parent", Action: ActionCreate,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
	assert.NotErrorIs(t, err, ErrFamilyCodeTaken)
	assert.Equal(t, 1, env.count(t, "families"), "failed registration must not leave a family behind")
}
