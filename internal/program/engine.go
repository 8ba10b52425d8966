// Package program implements the program-template state engine: the pure
// transformation operations over the phases/weeks/days document, the
// defensive normalization applied on load, and the derivation that projects a
// calendar date onto "today's workout". All operations take the current state
// by value and return a new state; the input is never mutated, and persisting
// the result is the caller's concern.
package program

import (
	"errors"
	"fmt"

	"fitcoach/coaching-app/internal/domain"

	"github.com/google/uuid"
)

// DaysPerWeek is the fixed week shape: one slot per weekday, Mon..Sun.
const DaysPerWeek = 7

var weekdayLabels = [DaysPerWeek]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// --- Validation errors ---
var (
	ErrInvalidDuration      = errors.New("program duration must be at least one week")
	ErrInvalidPhaseCount    = errors.New("phase count must be at least one")
	ErrDurationTooShort     = errors.New("program duration must cover at least one week per phase")
	ErrPhaseIndexOutOfRange = errors.New("phase index out of range")
	ErrWeekIndexOutOfRange  = errors.New("week index out of range")
	ErrDayOutOfRange        = errors.New("day slot out of range")
	ErrWorkoutIDRequired    = errors.New("workout id is required")
	ErrInlineTitleRequired  = errors.New("inline workout title is required")

	// Removing the last phase or week is rejected by the engine rather than
	// left to the caller, so a program can never end up empty.
	ErrLastPhase = errors.New("a program must keep at least one phase")
	ErrLastWeek  = errors.New("a phase must keep at least one week")
)

// NewState builds the initial document for a program of durationWeeks weeks
// split across phaseCount phases. The split is as even as possible: every
// phase gets floor(durationWeeks/phaseCount) weeks and the remainder is
// handed out one extra week to each of the first phases, so no two phases
// differ by more than one week. Every week starts as 7 rest days.
func NewState(durationWeeks, phaseCount int, difficulty domain.Difficulty) (domain.ProgramTemplateState, error) {
	if durationWeeks < 1 {
		return domain.ProgramTemplateState{}, ErrInvalidDuration
	}
	if phaseCount < 1 {
		return domain.ProgramTemplateState{}, ErrInvalidPhaseCount
	}
	if durationWeeks < phaseCount {
		return domain.ProgramTemplateState{}, ErrDurationTooShort
	}

	base := durationWeeks / phaseCount
	remainder := durationWeeks % phaseCount

	phases := make([]domain.Phase, 0, phaseCount)
	for i := 0; i < phaseCount; i++ {
		weeks := base
		if i < remainder {
			weeks++
		}
		phases = append(phases, newPhase(i, weeks))
	}

	return domain.ProgramTemplateState{
		SchemaVersion: SchemaVersion,
		Difficulty:    difficulty,
		DurationWeeks: durationWeeks,
		Phases:        phases,
		Library: domain.WorkoutLibrary{
			LinkedWorkoutIDs: []string{},
			InlineWorkouts:   []domain.InlineWorkout{},
		},
	}, nil
}

// AddPhase appends a new one-week phase and extends the program duration.
func AddPhase(state domain.ProgramTemplateState) domain.ProgramTemplateState {
	next := cloneState(state)
	next.Phases = append(next.Phases, newPhase(len(next.Phases), 1))
	recomputeDurations(&next)
	return next
}

// RemovePhase removes the phase at phaseIndex and renumbers the rest. The
// last remaining phase cannot be removed.
func RemovePhase(state domain.ProgramTemplateState, phaseIndex int) (domain.ProgramTemplateState, error) {
	if phaseIndex < 0 || phaseIndex >= len(state.Phases) {
		return state, ErrPhaseIndexOutOfRange
	}
	if len(state.Phases) == 1 {
		return state, ErrLastPhase
	}
	next := cloneState(state)
	next.Phases = append(next.Phases[:phaseIndex], next.Phases[phaseIndex+1:]...)
	renumberPhases(next.Phases)
	recomputeDurations(&next)
	return next, nil
}

// AddWeek appends an empty week (7 rest days) to the phase at phaseIndex.
func AddWeek(state domain.ProgramTemplateState, phaseIndex int) (domain.ProgramTemplateState, error) {
	if phaseIndex < 0 || phaseIndex >= len(state.Phases) {
		return state, ErrPhaseIndexOutOfRange
	}
	next := cloneState(state)
	phase := &next.Phases[phaseIndex]
	phase.Weeks = append(phase.Weeks, newWeek(len(phase.Weeks)))
	recomputeDurations(&next)
	return next, nil
}

// RemoveWeek removes the week at weekIndex from the phase at phaseIndex and
// renumbers the remaining weeks. The phase's last week cannot be removed.
func RemoveWeek(state domain.ProgramTemplateState, phaseIndex, weekIndex int) (domain.ProgramTemplateState, error) {
	if phaseIndex < 0 || phaseIndex >= len(state.Phases) {
		return state, ErrPhaseIndexOutOfRange
	}
	if weekIndex < 0 || weekIndex >= len(state.Phases[phaseIndex].Weeks) {
		return state, ErrWeekIndexOutOfRange
	}
	if len(state.Phases[phaseIndex].Weeks) == 1 {
		return state, ErrLastWeek
	}
	next := cloneState(state)
	phase := &next.Phases[phaseIndex]
	phase.Weeks = append(phase.Weeks[:weekIndex], phase.Weeks[weekIndex+1:]...)
	renumberWeeks(phase.Weeks)
	recomputeDurations(&next)
	return next, nil
}

// DuplicateWeek deep-clones the week at weekIndex and inserts the clone
// immediately after it. Cloned days get fresh ids; workout references are
// copied by value.
func DuplicateWeek(state domain.ProgramTemplateState, phaseIndex, weekIndex int) (domain.ProgramTemplateState, error) {
	if phaseIndex < 0 || phaseIndex >= len(state.Phases) {
		return state, ErrPhaseIndexOutOfRange
	}
	if weekIndex < 0 || weekIndex >= len(state.Phases[phaseIndex].Weeks) {
		return state, ErrWeekIndexOutOfRange
	}
	next := cloneState(state)
	phase := &next.Phases[phaseIndex]

	clone := cloneWeek(phase.Weeks[weekIndex])
	for d := range clone.Days {
		clone.Days[d].ID = uuid.NewString()
	}

	weeks := make([]domain.Week, 0, len(phase.Weeks)+1)
	weeks = append(weeks, phase.Weeks[:weekIndex+1]...)
	weeks = append(weeks, clone)
	weeks = append(weeks, phase.Weeks[weekIndex+1:]...)
	phase.Weeks = weeks
	renumberWeeks(phase.Weeks)
	recomputeDurations(&next)
	return next, nil
}

// ReorderPhases moves the phase at fromIndex to toIndex (splice semantics:
// remove, then insert). toIndex is clamped to the valid range; a no-op when
// the clamped destination equals the source.
func ReorderPhases(state domain.ProgramTemplateState, fromIndex, toIndex int) (domain.ProgramTemplateState, error) {
	if fromIndex < 0 || fromIndex >= len(state.Phases) {
		return state, ErrPhaseIndexOutOfRange
	}
	toIndex = clamp(toIndex, 0, len(state.Phases)-1)
	if fromIndex == toIndex {
		return state, nil
	}
	next := cloneState(state)
	next.Phases = splice(next.Phases, fromIndex, toIndex)
	renumberPhases(next.Phases)
	return next, nil
}

// ReorderWeeks moves a week within the phase at phaseIndex, with the same
// splice-and-clamp semantics as ReorderPhases.
func ReorderWeeks(state domain.ProgramTemplateState, phaseIndex, fromIndex, toIndex int) (domain.ProgramTemplateState, error) {
	if phaseIndex < 0 || phaseIndex >= len(state.Phases) {
		return state, ErrPhaseIndexOutOfRange
	}
	weeks := state.Phases[phaseIndex].Weeks
	if fromIndex < 0 || fromIndex >= len(weeks) {
		return state, ErrWeekIndexOutOfRange
	}
	toIndex = clamp(toIndex, 0, len(weeks)-1)
	if fromIndex == toIndex {
		return state, nil
	}
	next := cloneState(state)
	phase := &next.Phases[phaseIndex]
	phase.Weeks = splice(phase.Weeks, fromIndex, toIndex)
	renumberWeeks(phase.Weeks)
	return next, nil
}

// AddTableWorkout appends a table-backed workout reference to the target day
// and records the workout id in the library's linked set. Existing entries on
// the day are kept; a day can hold several workouts.
func AddTableWorkout(state domain.ProgramTemplateState, phaseIndex, weekIndex, dayOrder int, workoutID string) (domain.ProgramTemplateState, error) {
	if workoutID == "" {
		return state, ErrWorkoutIDRequired
	}
	next, day, err := cloneToDay(state, phaseIndex, weekIndex, dayOrder)
	if err != nil {
		return state, err
	}
	day.Workouts = append(day.Workouts, &domain.WorkoutRef{
		Source:    domain.SourceWorkoutsTable,
		WorkoutID: workoutID,
	})
	next.Library.LinkedWorkoutIDs = appendUnique(next.Library.LinkedWorkoutIDs, workoutID)
	return next, nil
}

// AddInlineWorkout mints a new inline workout snapshot in the library and
// references it from the target day.
func AddInlineWorkout(state domain.ProgramTemplateState, phaseIndex, weekIndex, dayOrder int, title string, workoutState map[string]any) (domain.ProgramTemplateState, error) {
	if title == "" {
		return state, ErrInlineTitleRequired
	}
	next, day, err := cloneToDay(state, phaseIndex, weekIndex, dayOrder)
	if err != nil {
		return state, err
	}
	inline := domain.InlineWorkout{
		ID:    uuid.NewString(),
		Title: title,
		State: workoutState,
	}
	next.Library.InlineWorkouts = append(next.Library.InlineWorkouts, inline)
	day.Workouts = append(day.Workouts, &domain.WorkoutRef{
		Source:          domain.SourceInline,
		InlineWorkoutID: inline.ID,
	})
	return next, nil
}

// RemoveWorkoutAt removes the workout reference at workoutIndex from the
// target day. An out-of-range workoutIndex leaves the state unchanged.
func RemoveWorkoutAt(state domain.ProgramTemplateState, phaseIndex, weekIndex, dayOrder, workoutIndex int) (domain.ProgramTemplateState, error) {
	if err := checkDay(state, phaseIndex, weekIndex, dayOrder); err != nil {
		return state, err
	}
	src := state.Phases[phaseIndex].Weeks[weekIndex].Days[dayOrder]
	if workoutIndex < 0 || workoutIndex >= len(src.Workouts) {
		return state, nil
	}
	next, day, _ := cloneToDay(state, phaseIndex, weekIndex, dayOrder)
	day.Workouts = append(day.Workouts[:workoutIndex], day.Workouts[workoutIndex+1:]...)
	return next, nil
}

// MoveWorkout moves the reference at workoutIndex from one day to the end of
// another day within the same week. A no-op when source and destination are
// the same day or workoutIndex is out of range.
func MoveWorkout(state domain.ProgramTemplateState, phaseIndex, weekIndex, fromDayOrder, workoutIndex, toDayOrder int) (domain.ProgramTemplateState, error) {
	if err := checkDay(state, phaseIndex, weekIndex, fromDayOrder); err != nil {
		return state, err
	}
	if toDayOrder < 0 || toDayOrder >= DaysPerWeek {
		return state, ErrDayOutOfRange
	}
	if fromDayOrder == toDayOrder {
		return state, nil
	}
	src := state.Phases[phaseIndex].Weeks[weekIndex].Days[fromDayOrder]
	if workoutIndex < 0 || workoutIndex >= len(src.Workouts) {
		return state, nil
	}

	next := cloneState(state)
	week := &next.Phases[phaseIndex].Weeks[weekIndex]
	from := &week.Days[fromDayOrder]
	to := &week.Days[toDayOrder]

	ref := from.Workouts[workoutIndex]
	from.Workouts = append(from.Workouts[:workoutIndex], from.Workouts[workoutIndex+1:]...)
	to.Workouts = append(to.Workouts, ref)
	return next, nil
}

// --- Construction helpers ---

func newPhase(order, weekCount int) domain.Phase {
	weeks := make([]domain.Week, 0, weekCount)
	for i := 0; i < weekCount; i++ {
		weeks = append(weeks, newWeek(i))
	}
	return domain.Phase{
		ID:            uuid.NewString(),
		Title:         fmt.Sprintf("Phase %d", order+1),
		Order:         order,
		DurationWeeks: weekCount,
		Weeks:         weeks,
	}
}

func newWeek(index int) domain.Week {
	days := make([]domain.Day, 0, DaysPerWeek)
	for i := 0; i < DaysPerWeek; i++ {
		days = append(days, newRestDay(i))
	}
	return domain.Week{
		Index: index,
		Label: fmt.Sprintf("Week %d", index+1),
		Days:  days,
	}
}

func newRestDay(order int) domain.Day {
	return domain.Day{
		ID:       uuid.NewString(),
		Order:    order,
		Label:    weekdayLabels[order],
		Workouts: []*domain.WorkoutRef{},
	}
}

// --- Index bookkeeping ---

func renumberPhases(phases []domain.Phase) {
	for i := range phases {
		phases[i].Order = i
	}
}

func renumberWeeks(weeks []domain.Week) {
	for i := range weeks {
		weeks[i].Index = i
	}
}

// recomputeDurations keeps each phase's declared duration equal to its week
// count and the program total equal to the sum over phases.
func recomputeDurations(state *domain.ProgramTemplateState) {
	total := 0
	for i := range state.Phases {
		state.Phases[i].DurationWeeks = len(state.Phases[i].Weeks)
		total += len(state.Phases[i].Weeks)
	}
	state.DurationWeeks = total
}

func checkDay(state domain.ProgramTemplateState, phaseIndex, weekIndex, dayOrder int) error {
	if phaseIndex < 0 || phaseIndex >= len(state.Phases) {
		return ErrPhaseIndexOutOfRange
	}
	if weekIndex < 0 || weekIndex >= len(state.Phases[phaseIndex].Weeks) {
		return ErrWeekIndexOutOfRange
	}
	if dayOrder < 0 || dayOrder >= len(state.Phases[phaseIndex].Weeks[weekIndex].Days) {
		return ErrDayOutOfRange
	}
	return nil
}

// cloneToDay clones the state and returns a pointer into the clone at the
// requested day, after validating the indexes against the original.
func cloneToDay(state domain.ProgramTemplateState, phaseIndex, weekIndex, dayOrder int) (domain.ProgramTemplateState, *domain.Day, error) {
	if err := checkDay(state, phaseIndex, weekIndex, dayOrder); err != nil {
		return state, nil, err
	}
	next := cloneState(state)
	return next, &next.Phases[phaseIndex].Weeks[weekIndex].Days[dayOrder], nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// splice removes the element at from and re-inserts it at to.
func splice[T any](list []T, from, to int) []T {
	out := make([]T, 0, len(list))
	out = append(out, list[:from]...)
	out = append(out, list[from+1:]...)
	moved := list[from]
	out = append(out[:to], append([]T{moved}, out[to:]...)...)
	return out
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// --- Deep copies ---

func cloneState(state domain.ProgramTemplateState) domain.ProgramTemplateState {
	next := state
	next.Phases = make([]domain.Phase, len(state.Phases))
	for i, p := range state.Phases {
		next.Phases[i] = clonePhase(p)
	}
	next.Library = cloneLibrary(state.Library)
	return next
}

func clonePhase(phase domain.Phase) domain.Phase {
	next := phase
	next.Weeks = make([]domain.Week, len(phase.Weeks))
	for i, w := range phase.Weeks {
		next.Weeks[i] = cloneWeek(w)
	}
	return next
}

func cloneWeek(week domain.Week) domain.Week {
	next := week
	next.Days = make([]domain.Day, len(week.Days))
	for i, d := range week.Days {
		next.Days[i] = cloneDay(d)
	}
	return next
}

func cloneDay(day domain.Day) domain.Day {
	next := day
	next.Workouts = make([]*domain.WorkoutRef, len(day.Workouts))
	for i, ref := range day.Workouts {
		next.Workouts[i] = cloneRef(ref)
	}
	if day.LegacyWorkoutRef != nil {
		next.LegacyWorkoutRef = cloneRef(day.LegacyWorkoutRef)
	}
	return next
}

// cloneRef preserves nil: a nil entry is the explicit "no workout"
// placeholder and stays nil in the copy.
func cloneRef(ref *domain.WorkoutRef) *domain.WorkoutRef {
	if ref == nil {
		return nil
	}
	copied := *ref
	return &copied
}

func cloneLibrary(lib domain.WorkoutLibrary) domain.WorkoutLibrary {
	next := domain.WorkoutLibrary{
		LinkedWorkoutIDs: make([]string, len(lib.LinkedWorkoutIDs)),
		InlineWorkouts:   make([]domain.InlineWorkout, len(lib.InlineWorkouts)),
	}
	copy(next.LinkedWorkoutIDs, lib.LinkedWorkoutIDs)
	for i, iw := range lib.InlineWorkouts {
		next.InlineWorkouts[i] = iw
		if iw.State != nil {
			stateCopy := make(map[string]any, len(iw.State))
			for k, v := range iw.State {
				stateCopy[k] = v
			}
			next.InlineWorkouts[i].State = stateCopy
		}
	}
	return next
}
