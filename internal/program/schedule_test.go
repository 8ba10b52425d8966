package program_test

import (
	"testing"
	"time"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/program"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := program.ParseDay(s)
	require.NoError(t, err)
	return d
}

func TestFlattenDays_PhaseMajorOrder(t *testing.T) {
	state := mustNewState(t, 3, 2) // phase 0: 2 weeks, phase 1: 1 week

	flat := program.FlattenDays(state)
	require.Len(t, flat, 21)

	assert.Equal(t, 0, flat[0].PhaseIndex)
	assert.Equal(t, 0, flat[0].WeekIndex)
	assert.Equal(t, state.Phases[0].Weeks[0].Days[0].ID, flat[0].Day.ID)

	// Entry 7 starts week 2 of phase 0; entry 14 starts phase 1.
	assert.Equal(t, 1, flat[7].WeekIndex)
	assert.Equal(t, 1, flat[14].PhaseIndex)
	assert.Equal(t, 0, flat[14].WeekIndex)
}

func TestResolveToday_BeforeStart(t *testing.T) {
	state := mustNewState(t, 2, 2)

	got := program.ResolveToday(state, "2024-01-10", day(t, "2024-01-05"))
	assert.Nil(t, got)
}

func TestResolveToday_ExactOffset(t *testing.T) {
	// 2 phases of 1 week each: 14 flattened days starting 2024-01-01.
	state := mustNewState(t, 2, 2)
	var err error
	state, err = program.AddTableWorkout(state, 1, 0, 0, "w-phase2-mon")
	require.NoError(t, err)

	// Offset 7 lands on phase 2, week 1, Monday.
	got := program.ResolveToday(state, "2024-01-01", day(t, "2024-01-08"))
	require.NotNil(t, got)
	assert.Equal(t, "w-phase2-mon", got.WorkoutTemplateID)
	assert.Equal(t, state.Phases[1].Weeks[0].Days[0].ID, got.ProgramDayKey)
}

func TestResolveToday_StartDay(t *testing.T) {
	state := mustNewState(t, 1, 1)
	var err error
	state, err = program.AddTableWorkout(state, 0, 0, 0, "first")
	require.NoError(t, err)

	got := program.ResolveToday(state, "2024-01-01", day(t, "2024-01-01"))
	require.NotNil(t, got)
	assert.Equal(t, "first", got.WorkoutTemplateID)
}

func TestResolveToday_PastEnd(t *testing.T) {
	state := mustNewState(t, 1, 1) // 7 flattened days

	got := program.ResolveToday(state, "2024-01-01", day(t, "2024-01-08"))
	assert.Nil(t, got)
}

func TestResolveToday_RestDay(t *testing.T) {
	state := mustNewState(t, 1, 1)

	got := program.ResolveToday(state, "2024-01-01", day(t, "2024-01-03"))
	assert.Nil(t, got)
}

func TestResolveToday_InlineOnlyDayYieldsNone(t *testing.T) {
	state := mustNewState(t, 1, 1)
	var err error
	state, err = program.AddInlineWorkout(state, 0, 0, 0, "Inline only", nil)
	require.NoError(t, err)

	// An inline workout has no externally assignable id, so the lookup
	// yields nothing for that day.
	got := program.ResolveToday(state, "2024-01-01", day(t, "2024-01-01"))
	assert.Nil(t, got)
}

func TestResolveToday_SkipsPlaceholdersAndInline(t *testing.T) {
	state := mustNewState(t, 1, 1)
	var err error
	state, err = program.AddInlineWorkout(state, 0, 0, 2, "Warmup", nil)
	require.NoError(t, err)
	state, err = program.AddTableWorkout(state, 0, 0, 2, "main-workout")
	require.NoError(t, err)
	// Explicit "no workout" placeholder ahead of both refs.
	state.Phases[0].Weeks[0].Days[2].Workouts = append(
		[]*domain.WorkoutRef{nil},
		state.Phases[0].Weeks[0].Days[2].Workouts...,
	)

	got := program.ResolveToday(state, "2024-01-01", day(t, "2024-01-03"))
	require.NotNil(t, got)
	assert.Equal(t, "main-workout", got.WorkoutTemplateID)
}

func TestResolveToday_BadStartDate(t *testing.T) {
	state := mustNewState(t, 1, 1)

	got := program.ResolveToday(state, "01/01/2024", day(t, "2024-01-01"))
	assert.Nil(t, got)
	got = program.ResolveToday(state, "", day(t, "2024-01-01"))
	assert.Nil(t, got)
}
