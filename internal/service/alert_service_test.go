package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyguard/internal/apperr"
	"studyguard/internal/models"
)

func TestRaiseDefaultsAndNotifiesParents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	family, parent := env.family(t, "parent@example.com")
	kid := env.child(t, family, "kid@example.com", "Kid")

	alert, err := env.alerts.Raise(ctx, RaiseAlertInput{ChildID: kid.ID, FamilyID: family.ID})
	require.NoError(t, err)
	assert.NotZero(t, alert.ID)
	assert.Equal(t, models.AlertTypeAppClosed, alert.AlertType)
	assert.Equal(t, "", alert.AlertMessage)
	assert.False(t, alert.Acknowledged)
	assert.Nil(t, alert.AcknowledgedAt)

	require.Len(t, env.notifier.sent, 1)
	sent := env.notifier.sent[0]
	require.Len(t, sent.parents, 1)
	assert.Equal(t, parent.Email, sent.parents[0].Email)
	assert.Equal(t, kid.ID, sent.child.ID)
	assert.Equal(t, alert.ID, sent.alert.ID)
}

func TestRaiseSurvivesNotifierFailure(t *testing.T) {
	env := newTestEnv(t)
	family, _ := env.family(t, "parent@example.com")
	kid := env.child(t, family, "kid@example.com", "Kid")
	env.notifier.err = errors.New("ses throttled")

	alert, err := env.alerts.Raise(context.Background(), RaiseAlertInput{
		ChildID: kid.ID, FamilyID: family.ID, Type: "heartbeat_lost", Message: "no ping for 2m",
	})
	require.NoError(t, err)
	assert.Equal(t, "heartbeat_lost", alert.AlertType)
	assert.Equal(t, 1, env.count(t, "barrier_alerts"))
}

func TestRaiseDoesNotDeduplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	family, _ := env.family(t, "parent@example.com")
	kid := env.child(t, family, "kid@example.com", "Kid")

	for i := 0; i < 3; i++ {
		_, err := env.alerts.Raise(ctx, RaiseAlertInput{ChildID: kid.ID, FamilyID: family.ID})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, env.count(t, "barrier_alerts"))
}

func TestListNewestFirstAndFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	family, _ := env.family(t, "parent@example.com")
	other, _ := env.family(t, "other@example.com")
	kid := env.child(t, family, "kid@example.com", "Kid")
	stranger := env.child(t, other, "stranger@example.com", "Stranger")

	base := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	var ids []int64
	for i := 0; i < 3; i++ {
		env.alerts.now = fixedClock(base.Add(time.Duration(i) * time.Minute))
		alert, err := env.alerts.Raise(ctx, RaiseAlertInput{ChildID: kid.ID, FamilyID: family.ID})
		require.NoError(t, err)
		ids = append(ids, alert.ID)
	}
	_, err := env.alerts.Raise(ctx, RaiseAlertInput{ChildID: stranger.ID, FamilyID: other.ID})
	require.NoError(t, err)

	_, err = env.alerts.Acknowledge(ctx, family.ID, ids[1])
	require.NoError(t, err)

	all, err := env.alerts.List(ctx, family.ID, false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{ids[2], ids[1], ids[0]}, []int64{all[0].ID, all[1].ID, all[2].ID})

	open, err := env.alerts.List(ctx, family.ID, true)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, ids[2], open[0].ID)
	assert.Equal(t, ids[0], open[1].ID)
}

func TestAcknowledge(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	family, _ := env.family(t, "parent@example.com")
	other, _ := env.family(t, "other@example.com")
	kid := env.child(t, family, "kid@example.com", "Kid")

	alert, err := env.alerts.Raise(ctx, RaiseAlertInput{ChildID: kid.ID, FamilyID: family.ID})
	require.NoError(t, err)

	ackAt := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	env.alerts.now = fixedClock(ackAt)
	acked, err := env.alerts.Acknowledge(ctx, family.ID, alert.ID)
	require.NoError(t, err)
	assert.True(t, acked.Acknowledged)
	require.NotNil(t, acked.AcknowledgedAt)
	assert.True(t, ackAt.Equal(*acked.AcknowledgedAt))

	env.alerts.now = fixedClock(ackAt.Add(time.Hour))
	again, err := env.alerts.Acknowledge(ctx, family.ID, alert.ID)
	require.NoError(t, err)
	assert.True(t, ackAt.Equal(*again.AcknowledgedAt), "second acknowledgement keeps the first time")

	_, err = env.alerts.Acknowledge(ctx, other.ID, alert.ID)
	assert.True(t, apperr.IsNotFound(err), "alerts of another family are invisible")

	_, err = env.alerts.Acknowledge(ctx, family.ID, alert.ID+100)
	assert.True(t, apperr.IsNotFound(err))
}
