package program

import (
	"time"

	"fitcoach/coaching-app/internal/domain"
)

// FlatDay is one entry of the flattened day sequence: the day itself plus
// where it sits in the document.
type FlatDay struct {
	PhaseIndex int
	WeekIndex  int
	Day        domain.Day
}

// TodayWorkout is the result of resolving a calendar date against a program:
// the table-backed workout scheduled for that day and the id of the program
// day it came from.
type TodayWorkout struct {
	WorkoutTemplateID string
	ProgramDayKey     string
}

// FlattenDays lays the program's days out as one linear sequence, phase-major
// then week then day, so a calendar offset can be projected onto a specific
// day. The sequence has sum(len(phase.Weeks)) * 7 entries.
func FlattenDays(state domain.ProgramTemplateState) []FlatDay {
	out := make([]FlatDay, 0)
	for p, phase := range state.Phases {
		for w, week := range phase.Weeks {
			for _, day := range week.Days {
				out = append(out, FlatDay{PhaseIndex: p, WeekIndex: w, Day: day})
			}
		}
	}
	return out
}

// ResolveToday determines which workout, if any, the program schedules for
// 'today' given its assignment start date (YYYY-MM-DD). Nil means no workout:
// the program has not started, has already ended, the start date is
// unparsable, or the matched day holds no table-backed reference. Inline-only
// days resolve to nil as well, since an inline workout has no externally
// assignable id. Pure read, no side effects.
func ResolveToday(state domain.ProgramTemplateState, startDate string, today time.Time) *TodayWorkout {
	start, err := ParseDay(startDate)
	if err != nil {
		return nil
	}
	offset := DaysBetween(start, AnchorDay(today))
	if offset < 0 {
		return nil
	}

	days := FlattenDays(state)
	if offset >= len(days) {
		return nil
	}

	day := days[offset].Day
	for _, ref := range day.Workouts {
		if ref != nil && ref.Source == domain.SourceWorkoutsTable {
			return &TodayWorkout{
				WorkoutTemplateID: ref.WorkoutID,
				ProgramDayKey:     day.ID,
			}
		}
	}
	return nil
}
