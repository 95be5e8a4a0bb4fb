package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"parkhere/internal/domain/locations"
)

func TestSlotMutationsKeepCountersConsistent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := NewSlotService(env.store, zap.NewNop().Sugar())

	loc := &locations.Location{Name: "Riverside Lot", Address: "4 Canal St", City: "Pune"}
	require.NoError(t, env.locs.CreateLocation(ctx, loc))

	a1, err := svc.AddSlot(ctx, AddSlotInput{
		LocationID:   loc.ID,
		SlotNumber:   "A1",
		Type:         locations.TypeCar,
		PricePerHour: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, locations.StatusAvailable, a1.Status)
	requireCounters(t, env, loc.ID, 1, 1)

	a2, err := svc.AddSlot(ctx, AddSlotInput{
		LocationID:   loc.ID,
		SlotNumber:   "A2",
		Type:         locations.TypeBike,
		Status:       locations.StatusMaintenance,
		PricePerHour: 20,
	})
	require.NoError(t, err)
	requireCounters(t, env, loc.ID, 2, 1)

	_, err = svc.AddSlot(ctx, AddSlotInput{
		LocationID:   loc.ID,
		SlotNumber:   "A1",
		Type:         locations.TypeCar,
		PricePerHour: 50,
	})
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, CodeDuplicate, serr.Code)
	requireCounters(t, env, loc.ID, 2, 1)

	status := locations.StatusAvailable
	_, err = svc.UpdateSlot(ctx, UpdateSlotInput{SlotID: a2.ID, Status: &status})
	require.NoError(t, err)
	requireCounters(t, env, loc.ID, 2, 2)

	status = locations.StatusMaintenance
	_, err = svc.UpdateSlot(ctx, UpdateSlotInput{SlotID: a2.ID, Status: &status})
	require.NoError(t, err)
	requireCounters(t, env, loc.ID, 2, 1)

	require.NoError(t, svc.DeleteSlot(ctx, a2.ID))
	requireCounters(t, env, loc.ID, 1, 1)

	require.NoError(t, svc.DeleteSlot(ctx, a1.ID))
	requireCounters(t, env, loc.ID, 0, 0)
}

func TestDeleteSlotBlockedByLiveBooking(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := NewSlotService(env.store, zap.NewNop().Sugar())
	b := seedUpcomingBooking(t, env)

	err := svc.DeleteSlot(ctx, b.SlotID)
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, CodePreconditionFailed, serr.Code)

	_, err = env.locs.GetSlot(ctx, b.SlotID)
	require.NoError(t, err)
}
