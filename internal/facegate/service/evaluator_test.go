package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mereles/facegate/internal/facegate/service"
	"github.com/mereles/facegate/internal/facegate/store"
	"github.com/mereles/facegate/internal/facegate/store/memory"
	"github.com/mereles/facegate/internal/facegate/types"
)

// Fixed clocks. 2026-08-24 is a Monday, 2026-08-29 a Saturday.
var (
	mondayMorning   = time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	mondayEvening   = time.Date(2026, 8, 24, 20, 0, 0, 0, time.UTC)
	saturdayMorning = time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestStores(t *testing.T) (*memory.IdentityStore, *memory.PermissionStore, int64) {
	t.Helper()

	ids := memory.NewIdentityStore()
	perms := memory.NewPermissionStore()

	id, err := ids.Create(context.Background(), store.NewIdentity{
		Name:                 "Ana Souza",
		IdentificationNumber: "12345",
		Category:             types.CategoryStudent,
	})
	require.NoError(t, err)
	return ids, perms, id
}

func businessHoursRule(t *testing.T, perms *memory.PermissionStore, identityID int64) {
	t.Helper()
	start, end := "08:00", "18:00"
	_, err := perms.CreateRule(context.Background(), store.NewRule{
		IdentityID: identityID,
		TimeStart:  &start,
		TimeEnd:    &end,
		Weekdays:   []int{0, 1, 2, 3, 4}, // Monday through Friday
	})
	require.NoError(t, err)
}

func TestEvaluate_UnknownIdentityDenied(t *testing.T) {
	ids, perms, _ := newTestStores(t)
	ev := service.NewEvaluator(ids, perms, fixedClock(mondayMorning))

	admitted, reason, err := ev.Evaluate(context.Background(), 999, "")
	require.NoError(t, err)
	assert.False(t, admitted)
	assert.Equal(t, service.ReasonIdentityNotFound, reason)
}

func TestEvaluate_InactiveIdentityDenied(t *testing.T) {
	ids, perms, id := newTestStores(t)

	// Inactive overrides everything, even a wide-open rule set.
	inactive := false
	_, err := ids.Update(context.Background(), id, store.IdentityUpdate{Active: &inactive})
	require.NoError(t, err)

	ev := service.NewEvaluator(ids, perms, fixedClock(mondayMorning))
	admitted, reason, err := ev.Evaluate(context.Background(), id, "")
	require.NoError(t, err)
	assert.False(t, admitted)
	assert.Equal(t, service.ReasonIdentityInactive, reason)
}

func TestEvaluate_NoRulesMeansUnrestricted(t *testing.T) {
	ids, perms, id := newTestStores(t)
	ev := service.NewEvaluator(ids, perms, fixedClock(saturdayMorning))

	admitted, reason, err := ev.Evaluate(context.Background(), id, "anywhere")
	require.NoError(t, err)
	assert.True(t, admitted)
	assert.Equal(t, service.ReasonNoRestrictions, reason)
}

func TestEvaluate_ScheduleWindow(t *testing.T) {
	ids, perms, id := newTestStores(t)
	businessHoursRule(t, perms, id)

	// Monday 10:00 — inside the window.
	ev := service.NewEvaluator(ids, perms, fixedClock(mondayMorning))
	admitted, reason, err := ev.Evaluate(context.Background(), id, "")
	require.NoError(t, err)
	assert.True(t, admitted)
	assert.Equal(t, service.ReasonAccessPermitted, reason)

	// Monday 20:00 — right weekday, outside the hours.
	ev = service.NewEvaluator(ids, perms, fixedClock(mondayEvening))
	admitted, reason, err = ev.Evaluate(context.Background(), id, "")
	require.NoError(t, err)
	assert.False(t, admitted)
	assert.Equal(t, service.ReasonOutsideSchedule, reason)

	// Saturday 10:00 — right hours, wrong weekday.
	ev = service.NewEvaluator(ids, perms, fixedClock(saturdayMorning))
	admitted, reason, err = ev.Evaluate(context.Background(), id, "")
	require.NoError(t, err)
	assert.False(t, admitted)
	assert.Equal(t, service.ReasonOutsideSchedule, reason)
}

func TestEvaluate_WindowBoundariesInclusive(t *testing.T) {
	ids, perms, id := newTestStores(t)
	businessHoursRule(t, perms, id)
	ctx := context.Background()

	for _, tc := range []struct {
		at       time.Time
		admitted bool
	}{
		{time.Date(2026, 8, 24, 8, 0, 0, 0, time.UTC), true},   // exact start
		{time.Date(2026, 8, 24, 18, 0, 0, 0, time.UTC), true},  // exact end
		{time.Date(2026, 8, 24, 7, 59, 0, 0, time.UTC), false}, // minute before
		{time.Date(2026, 8, 24, 18, 1, 0, 0, time.UTC), false}, // minute after
	} {
		ev := service.NewEvaluator(ids, perms, fixedClock(tc.at))
		admitted, _, err := ev.Evaluate(ctx, id, "")
		require.NoError(t, err)
		assert.Equal(t, tc.admitted, admitted, "at %v", tc.at)
	}
}

func TestEvaluate_SectorScoping(t *testing.T) {
	ids, perms, id := newTestStores(t)
	ctx := context.Background()

	lab := "lab"
	_, err := perms.CreateRule(ctx, store.NewRule{IdentityID: id, Sector: &lab})
	require.NoError(t, err)

	ev := service.NewEvaluator(ids, perms, fixedClock(mondayMorning))

	admitted, _, err := ev.Evaluate(ctx, id, "lab")
	require.NoError(t, err)
	assert.True(t, admitted)

	admitted, reason, err := ev.Evaluate(ctx, id, "office")
	require.NoError(t, err)
	assert.False(t, admitted)
	assert.Equal(t, service.ReasonOutsideSchedule, reason)

	// An unscoped request matches a sector-bound rule.
	admitted, _, err = ev.Evaluate(ctx, id, "")
	require.NoError(t, err)
	assert.True(t, admitted)
}

func TestEvaluate_FirstMatchWins(t *testing.T) {
	ids, perms, id := newTestStores(t)
	ctx := context.Background()

	// Rule 1: office only. Rule 2: lab only. A lab request must fall through
	// rule 1 and match rule 2.
	office, lab := "office", "lab"
	_, err := perms.CreateRule(ctx, store.NewRule{IdentityID: id, Sector: &office})
	require.NoError(t, err)
	_, err = perms.CreateRule(ctx, store.NewRule{IdentityID: id, Sector: &lab})
	require.NoError(t, err)

	ev := service.NewEvaluator(ids, perms, fixedClock(mondayMorning))
	admitted, reason, err := ev.Evaluate(ctx, id, "lab")
	require.NoError(t, err)
	assert.True(t, admitted)
	assert.Equal(t, service.ReasonAccessPermitted, reason)
}

func TestEvaluate_MalformedTimeSkipsTimeCheck(t *testing.T) {
	ids, perms, id := newTestStores(t)
	ctx := context.Background()

	// A garbage window must never lock anyone out: the rule degrades to
	// weekday-only.
	bad1, bad2 := "25:99", "nonsense"
	_, err := perms.CreateRule(ctx, store.NewRule{
		IdentityID: id,
		TimeStart:  &bad1,
		TimeEnd:    &bad2,
		Weekdays:   []int{0},
	})
	require.NoError(t, err)

	ev := service.NewEvaluator(ids, perms, fixedClock(mondayEvening))
	admitted, _, err := ev.Evaluate(ctx, id, "")
	require.NoError(t, err)
	assert.True(t, admitted, "malformed time window must not deny")
}

func TestEvaluate_WeekdayConventionMondayZero(t *testing.T) {
	ids, perms, id := newTestStores(t)
	ctx := context.Background()

	// Weekday 5 is Saturday in the Monday-zero convention.
	_, err := perms.CreateRule(ctx, store.NewRule{IdentityID: id, Weekdays: []int{5}})
	require.NoError(t, err)

	ev := service.NewEvaluator(ids, perms, fixedClock(saturdayMorning))
	admitted, _, err := ev.Evaluate(ctx, id, "")
	require.NoError(t, err)
	assert.True(t, admitted)

	ev = service.NewEvaluator(ids, perms, fixedClock(mondayMorning))
	admitted, _, err = ev.Evaluate(ctx, id, "")
	require.NoError(t, err)
	assert.False(t, admitted)
}
