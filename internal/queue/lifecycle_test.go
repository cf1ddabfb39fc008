package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/barbershop-queue/internal/model"
)

func waitingEntry() model.QueueEntry {
	return model.QueueEntry{
		ID:            1,
		LocationID:    1,
		ClientID:      7,
		ServiceTypeID: 3,
		Status:        model.StatusWaiting,
		Tier:          model.TierNormal,
		ArrivedAt:     time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}
}

func TestStartService(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 15, 0, 0, time.UTC)

	e := waitingEntry()
	require.NoError(t, StartService(&e, 42, now))
	assert.Equal(t, model.StatusInService, e.Status)
	require.NotNil(t, e.AgentID)
	assert.Equal(t, uint64(42), *e.AgentID)
	require.NotNil(t, e.StartedAt)
	assert.True(t, e.StartedAt.Equal(now))

	// not idempotent: starting again must fail, not silently succeed
	err := StartService(&e, 42, now)
	var ite *InvalidTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, ActionStart, ite.Action)
	assert.Equal(t, model.StatusInService, ite.From)
}

func TestStartServiceFailureLeavesEntryUntouched(t *testing.T) {
	e := waitingEntry()
	e.Status = model.StatusCancelled
	snapshot := e

	err := StartService(&e, 42, time.Now())
	require.Error(t, err)
	assert.Equal(t, snapshot, e, "failed transition must not mutate the entry")
}

func TestFinishServiceSideEffects(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 45, 0, 0, time.UTC)
	e := waitingEntry()
	require.NoError(t, StartService(&e, 42, now.Add(-30*time.Minute)))

	client := model.Client{ID: 7, VisitCount: 9}
	svc := model.ServiceType{ID: 3, DurationMin: 30, Popularity: 100}

	require.NoError(t, FinishService(&e, &client, &svc, now))
	assert.Equal(t, model.StatusCompleted, e.Status)
	require.NotNil(t, e.FinishedAt)
	assert.True(t, e.FinishedAt.Equal(now))
	assert.Equal(t, 10, client.VisitCount)
	require.NotNil(t, client.LastVisitAt)
	assert.True(t, client.LastVisitAt.Equal(now))
	assert.Equal(t, 101, svc.Popularity)

	// finishing again fails and applies no further side effects
	err := FinishService(&e, &client, &svc, now)
	var ite *InvalidTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, 10, client.VisitCount)
	assert.Equal(t, 101, svc.Popularity)
}

func TestFinishServiceRequiresInService(t *testing.T) {
	e := waitingEntry()
	client := model.Client{VisitCount: 1}
	svc := model.ServiceType{Popularity: 1}
	snapshot := e

	err := FinishService(&e, &client, &svc, time.Now())
	require.Error(t, err)
	assert.Equal(t, snapshot, e)
	assert.Equal(t, 1, client.VisitCount, "no side effects on failure")
	assert.Equal(t, 1, svc.Popularity)
}

func TestCancelExactlyOnce(t *testing.T) {
	now := time.Now().UTC()
	e := waitingEntry()

	require.NoError(t, Cancel(&e, now))
	assert.Equal(t, model.StatusCancelled, e.Status)

	err := Cancel(&e, now)
	var ite *InvalidTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, ActionCancel, ite.Action)
	assert.Equal(t, model.StatusCancelled, ite.From)
}

func TestCancelNotAllowedInService(t *testing.T) {
	e := waitingEntry()
	require.NoError(t, StartService(&e, 1, time.Now()))
	assert.Error(t, Cancel(&e, time.Now()))
}

func TestNoShowFromBothActiveStates(t *testing.T) {
	now := time.Now().UTC()

	fromWaiting := waitingEntry()
	require.NoError(t, MarkNoShow(&fromWaiting, now))
	assert.Equal(t, model.StatusNoShow, fromWaiting.Status)

	fromService := waitingEntry()
	require.NoError(t, StartService(&fromService, 1, now))
	require.NoError(t, MarkNoShow(&fromService, now))
	assert.Equal(t, model.StatusNoShow, fromService.Status)

	// terminal states stay terminal
	assert.Error(t, MarkNoShow(&fromWaiting, now))
}

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		action Action
		from   model.EntryStatus
		ok     bool
	}{
		{ActionStart, model.StatusWaiting, true},
		{ActionStart, model.StatusInService, false},
		{ActionStart, model.StatusCompleted, false},
		{ActionFinish, model.StatusInService, true},
		{ActionFinish, model.StatusWaiting, false},
		{ActionCancel, model.StatusWaiting, true},
		{ActionCancel, model.StatusInService, false},
		{ActionCancel, model.StatusNoShow, false},
		{ActionNoShow, model.StatusWaiting, true},
		{ActionNoShow, model.StatusInService, true},
		{ActionNoShow, model.StatusCancelled, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanTransition(tc.action, tc.from),
			"%s from %s", tc.action, tc.from)
	}
}
