package program

import (
	"fmt"

	"fitcoach/coaching-app/internal/domain"

	"github.com/google/uuid"
)

// SchemaVersion is the current shape of the persisted state document.
// Version 1 carried a singular workoutRef per day; version 2 holds the
// workouts list and the embedded library.
const SchemaVersion = 2

// Normalize repairs a loaded state document into the current canonical shape.
// It never fails: malformed entries are dropped and missing fields coerced to
// safe defaults, so a partially corrupt legacy document still loads in a
// usable, if reduced, form. The result satisfies every engine invariant
// (dense ordering, 7-day weeks, duration consistency, rebuilt linked-id set).
func Normalize(state domain.ProgramTemplateState) domain.ProgramTemplateState {
	next := cloneState(state)
	next.SchemaVersion = SchemaVersion

	if next.Phases == nil {
		next.Phases = []domain.Phase{}
	}
	for p := range next.Phases {
		phase := &next.Phases[p]
		if phase.ID == "" {
			phase.ID = uuid.NewString()
		}
		if phase.Title == "" {
			phase.Title = fmt.Sprintf("Phase %d", p+1)
		}
		if phase.Weeks == nil {
			phase.Weeks = []domain.Week{}
		}
		for w := range phase.Weeks {
			normalizeWeek(&phase.Weeks[w], w)
		}
		renumberWeeks(phase.Weeks)
	}
	renumberPhases(next.Phases)
	recomputeDurations(&next)

	next.Library = rebuildLibrary(next)
	return next
}

// normalizeWeek forces the fixed 7-day shape: days sorted into their weekday
// slots, missing slots filled with rest days, surplus entries dropped, and
// every day's workout list migrated to the canonical form.
func normalizeWeek(week *domain.Week, index int) {
	week.Index = index
	if week.Label == "" {
		week.Label = fmt.Sprintf("Week %d", index+1)
	}

	slots := make([]*domain.Day, DaysPerWeek)
	unplaced := make([]domain.Day, 0)
	for i := range week.Days {
		day := week.Days[i]
		if day.Order >= 0 && day.Order < DaysPerWeek && slots[day.Order] == nil {
			d := day
			slots[day.Order] = &d
			continue
		}
		unplaced = append(unplaced, day)
	}
	// Days with a bad or duplicate order keep their content but take the
	// first free slot.
	for _, day := range unplaced {
		for slot := 0; slot < DaysPerWeek; slot++ {
			if slots[slot] == nil {
				d := day
				slots[slot] = &d
				break
			}
		}
	}

	days := make([]domain.Day, DaysPerWeek)
	for slot := 0; slot < DaysPerWeek; slot++ {
		if slots[slot] == nil {
			days[slot] = newRestDay(slot)
			continue
		}
		day := *slots[slot]
		day.Order = slot
		if day.ID == "" {
			day.ID = uuid.NewString()
		}
		if day.Label == "" {
			day.Label = weekdayLabels[slot]
		}
		day.Workouts = normalizeRefs(day)
		day.LegacyWorkoutRef = nil
		days[slot] = day
	}
	week.Days = days
}

// normalizeRefs produces the canonical workouts list for a day. The legacy
// singular workoutRef counts as a one-element list when the list itself is
// absent; when both are present the list wins. References lacking the id
// their source requires are dropped; nil placeholders are kept.
func normalizeRefs(day domain.Day) []*domain.WorkoutRef {
	refs := day.Workouts
	if refs == nil && day.LegacyWorkoutRef != nil {
		refs = []*domain.WorkoutRef{day.LegacyWorkoutRef}
	}

	out := make([]*domain.WorkoutRef, 0, len(refs))
	for _, ref := range refs {
		if ref == nil {
			out = append(out, nil)
			continue
		}
		switch ref.Source {
		case domain.SourceWorkoutsTable:
			if ref.WorkoutID == "" {
				continue
			}
		case domain.SourceInline:
			if ref.InlineWorkoutID == "" {
				continue
			}
		default:
			continue
		}
		out = append(out, ref)
	}
	return out
}

// rebuildLibrary recomputes LinkedWorkoutIDs from the references actually
// present in the phases and drops inline snapshots without an id. Inline
// snapshots that nothing references are kept: they are the trainer's drafts,
// not garbage.
func rebuildLibrary(state domain.ProgramTemplateState) domain.WorkoutLibrary {
	linked := []string{}
	for _, phase := range state.Phases {
		for _, week := range phase.Weeks {
			for _, day := range week.Days {
				for _, ref := range day.Workouts {
					if ref != nil && ref.Source == domain.SourceWorkoutsTable {
						linked = appendUnique(linked, ref.WorkoutID)
					}
				}
			}
		}
	}

	inline := make([]domain.InlineWorkout, 0, len(state.Library.InlineWorkouts))
	for _, iw := range state.Library.InlineWorkouts {
		if iw.ID == "" {
			continue
		}
		inline = append(inline, iw)
	}

	return domain.WorkoutLibrary{
		LinkedWorkoutIDs: linked,
		InlineWorkouts:   inline,
	}
}
