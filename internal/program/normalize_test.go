package program_test

import (
	"testing"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/program"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_LegacySingularRef(t *testing.T) {
	state := mustNewState(t, 1, 1)
	state.Phases[0].Weeks[0].Days[0].Workouts = nil
	state.Phases[0].Weeks[0].Days[0].LegacyWorkoutRef = &domain.WorkoutRef{
		Source:    domain.SourceWorkoutsTable,
		WorkoutID: "legacy-w",
	}

	got := program.Normalize(state)

	day := got.Phases[0].Weeks[0].Days[0]
	require.Len(t, day.Workouts, 1)
	assert.Equal(t, "legacy-w", day.Workouts[0].WorkoutID)
	assert.Nil(t, day.LegacyWorkoutRef, "legacy field must be dropped after migration")
	assert.Contains(t, got.Library.LinkedWorkoutIDs, "legacy-w")
}

func TestNormalize_ListWinsOverLegacyRef(t *testing.T) {
	state := mustNewState(t, 1, 1)
	state.Phases[0].Weeks[0].Days[0].Workouts = []*domain.WorkoutRef{
		{Source: domain.SourceWorkoutsTable, WorkoutID: "from-list"},
	}
	state.Phases[0].Weeks[0].Days[0].LegacyWorkoutRef = &domain.WorkoutRef{
		Source:    domain.SourceWorkoutsTable,
		WorkoutID: "from-legacy",
	}

	got := program.Normalize(state)

	day := got.Phases[0].Weeks[0].Days[0]
	require.Len(t, day.Workouts, 1)
	assert.Equal(t, "from-list", day.Workouts[0].WorkoutID)
}

func TestNormalize_DropsMalformedRefs(t *testing.T) {
	state := mustNewState(t, 1, 1)
	state.Phases[0].Weeks[0].Days[0].Workouts = []*domain.WorkoutRef{
		{Source: domain.SourceWorkoutsTable, WorkoutID: ""},       // missing id
		{Source: domain.SourceInline, InlineWorkoutID: ""},        // missing id
		{Source: "mystery", WorkoutID: "x"},                       // unknown source
		nil,                                                       // placeholder, kept
		{Source: domain.SourceWorkoutsTable, WorkoutID: "good-w"}, // kept
	}

	got := program.Normalize(state)

	day := got.Phases[0].Weeks[0].Days[0]
	require.Len(t, day.Workouts, 2)
	assert.Nil(t, day.Workouts[0])
	assert.Equal(t, "good-w", day.Workouts[1].WorkoutID)
	assert.Equal(t, []string{"good-w"}, got.Library.LinkedWorkoutIDs)
}

func TestNormalize_RepairsWeekShape(t *testing.T) {
	state := mustNewState(t, 1, 1)
	// Simulate a corrupt document: only three days, one with a bad order,
	// one missing id and label.
	state.Phases[0].Weeks[0].Days = []domain.Day{
		{ID: "a", Order: 2, Label: "Wed"},
		{ID: "", Order: -4, Label: ""},
		{ID: "c", Order: 6, Label: "Sun"},
	}

	got := program.Normalize(state)

	week := got.Phases[0].Weeks[0]
	require.Len(t, week.Days, 7)
	for d, dd := range week.Days {
		assert.Equal(t, d, dd.Order)
		assert.NotEmpty(t, dd.ID)
		assert.NotEmpty(t, dd.Label)
	}
	// Valid slots keep their content; the stray day took the first free one.
	assert.Equal(t, "a", week.Days[2].ID)
	assert.Equal(t, "c", week.Days[6].ID)
}

func TestNormalize_RenumbersAndRecomputesDurations(t *testing.T) {
	state := mustNewState(t, 4, 2)
	state.Phases[0].Order = 9
	state.Phases[1].Order = 9
	state.Phases[0].Weeks[1].Index = 5
	state.Phases[0].DurationWeeks = 99
	state.DurationWeeks = 42

	got := program.Normalize(state)

	assert.Equal(t, 0, got.Phases[0].Order)
	assert.Equal(t, 1, got.Phases[1].Order)
	assert.Equal(t, 1, got.Phases[0].Weeks[1].Index)
	assert.Equal(t, 2, got.Phases[0].DurationWeeks)
	assert.Equal(t, 4, got.DurationWeeks)
	requireValidState(t, got)
}

func TestNormalize_RebuildsLinkedIDs(t *testing.T) {
	state := mustNewState(t, 1, 1)
	var err error
	state, err = program.AddTableWorkout(state, 0, 0, 0, "still-used")
	require.NoError(t, err)
	// A stale entry for a workout no longer referenced anywhere.
	state.Library.LinkedWorkoutIDs = append(state.Library.LinkedWorkoutIDs, "stale")

	got := program.Normalize(state)
	assert.Equal(t, []string{"still-used"}, got.Library.LinkedWorkoutIDs)
}

func TestNormalize_DropsInlineWorkoutsWithoutID(t *testing.T) {
	state := mustNewState(t, 1, 1)
	state.Library.InlineWorkouts = []domain.InlineWorkout{
		{ID: "", Title: "broken"},
		{ID: "iw-1", Title: "draft"},
	}

	got := program.Normalize(state)
	require.Len(t, got.Library.InlineWorkouts, 1)
	assert.Equal(t, "iw-1", got.Library.InlineWorkouts[0].ID)
}

func TestNormalize_BumpsSchemaVersion(t *testing.T) {
	state := mustNewState(t, 1, 1)
	state.SchemaVersion = 1

	got := program.Normalize(state)
	assert.Equal(t, program.SchemaVersion, got.SchemaVersion)
}

func TestNormalize_EmptyDocument(t *testing.T) {
	got := program.Normalize(domain.ProgramTemplateState{})

	assert.Equal(t, program.SchemaVersion, got.SchemaVersion)
	assert.NotNil(t, got.Phases)
	assert.Empty(t, got.Phases)
	assert.Equal(t, 0, got.DurationWeeks)
	assert.NotNil(t, got.Library.LinkedWorkoutIDs)
	assert.NotNil(t, got.Library.InlineWorkouts)
}
