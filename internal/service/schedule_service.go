package service

import (
	"context"
	"errors"
	"time"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/program"
	"fitcoach/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FallbackWorkoutTitle is used when a title lookup fails or the workout row
// has gone missing; the schedule itself must not fail over a missing title.
const FallbackWorkoutTitle = "Workout"

// TodayItem is one client's resolved workout for today.
type TodayItem struct {
	ClientID          string `json:"clientId"`
	WorkoutTemplateID string `json:"workoutTemplateId"`
	// ProgramDayKey is the id of the program day the workout came from;
	// empty when the workout comes from an explicit assignment row.
	ProgramDayKey string `json:"programDayKey,omitempty"`
	Title         string `json:"title"`
	// FromAssignment is true when an explicit per-day row produced the item
	// instead of the program-derived schedule.
	FromAssignment bool `json:"fromAssignment"`
}

// ScheduleService resolves "today's workout" for many clients at once.
type ScheduleService interface {
	// TodayForClients returns a map of client id (hex) to today's workout.
	// Clients with nothing scheduled are absent from the map. Explicit
	// per-day assignment rows win over the program-derived schedule.
	TodayForClients(ctx context.Context, trainerID primitive.ObjectID, clientIDs []primitive.ObjectID, now time.Time) (map[string]TodayItem, error)
}

// scheduleService implements the ScheduleService interface.
type scheduleService struct {
	programAssignmentRepo repository.ProgramAssignmentRepository
	workoutAssignmentRepo repository.WorkoutAssignmentRepository
	templateRepo          repository.ProgramTemplateRepository
	workoutRepo           repository.WorkoutRepository
}

// NewScheduleService creates a new instance of scheduleService.
func NewScheduleService(
	programAssignmentRepo repository.ProgramAssignmentRepository,
	workoutAssignmentRepo repository.WorkoutAssignmentRepository,
	templateRepo repository.ProgramTemplateRepository,
	workoutRepo repository.WorkoutRepository,
) ScheduleService {
	return &scheduleService{
		programAssignmentRepo: programAssignmentRepo,
		workoutAssignmentRepo: workoutAssignmentRepo,
		templateRepo:          templateRepo,
		workoutRepo:           workoutRepo,
	}
}

// TodayForClients resolves today's workout for a set of clients with a fixed
// number of queries regardless of fan-out: one for explicit assignment rows,
// one for active program assignments, one batched template fetch covering the
// distinct program ids, and one batched title lookup.
func (s *scheduleService) TodayForClients(ctx context.Context, trainerID primitive.ObjectID, clientIDs []primitive.ObjectID, now time.Time) (map[string]TodayItem, error) {
	if trainerID == primitive.NilObjectID {
		return nil, errors.New("trainer ID is required")
	}
	result := make(map[string]TodayItem)
	if len(clientIDs) == 0 {
		return result, nil
	}
	today := program.FormatDay(now)

	// 1. Explicit per-day rows override everything.
	explicit, err := s.workoutAssignmentRepo.GetByClientIDsAndDate(ctx, trainerID, clientIDs, today)
	if err != nil {
		return nil, err
	}
	for _, a := range explicit {
		result[a.ClientID.Hex()] = TodayItem{
			ClientID:          a.ClientID.Hex(),
			WorkoutTemplateID: a.WorkoutID.Hex(),
			FromAssignment:    true,
		}
	}

	// 2. Remaining clients fall back to their active program.
	remaining := make([]primitive.ObjectID, 0, len(clientIDs))
	for _, id := range clientIDs {
		if _, ok := result[id.Hex()]; !ok {
			remaining = append(remaining, id)
		}
	}

	if len(remaining) > 0 {
		assignments, err := s.programAssignmentRepo.GetActiveByClientIDs(ctx, trainerID, remaining)
		if err != nil {
			return nil, err
		}

		// Fetch each distinct program once, however many clients run it.
		distinct := make([]primitive.ObjectID, 0, len(assignments))
		seen := make(map[primitive.ObjectID]bool)
		for _, a := range assignments {
			if !seen[a.ProgramTemplateID] {
				seen[a.ProgramTemplateID] = true
				distinct = append(distinct, a.ProgramTemplateID)
			}
		}
		templates, err := s.templateRepo.GetByIDs(ctx, distinct)
		if err != nil {
			return nil, err
		}
		normalized := make(map[primitive.ObjectID]domain.ProgramTemplateState, len(templates))
		for _, tpl := range templates {
			normalized[tpl.ID] = program.Normalize(tpl.State)
		}

		for _, a := range assignments {
			state, ok := normalized[a.ProgramTemplateID]
			if !ok {
				continue // assignment points at a deleted program
			}
			resolved := program.ResolveToday(state, a.StartDate, now)
			if resolved == nil {
				continue
			}
			result[a.ClientID.Hex()] = TodayItem{
				ClientID:          a.ClientID.Hex(),
				WorkoutTemplateID: resolved.WorkoutTemplateID,
				ProgramDayKey:     resolved.ProgramDayKey,
			}
		}
	}

	s.enrichTitles(ctx, result)
	return result, nil
}

// enrichTitles fills in workout titles with a single batched lookup. Strictly
// best-effort: a lookup failure degrades every title to the fallback rather
// than failing the schedule.
func (s *scheduleService) enrichTitles(ctx context.Context, items map[string]TodayItem) {
	ids := make([]primitive.ObjectID, 0, len(items))
	seen := make(map[primitive.ObjectID]bool)
	for _, item := range items {
		id, err := primitive.ObjectIDFromHex(item.WorkoutTemplateID)
		if err != nil {
			continue
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	titles := make(map[string]string)
	if workouts, err := s.workoutRepo.GetByIDs(ctx, ids); err == nil {
		for _, w := range workouts {
			titles[w.ID.Hex()] = w.Title
		}
	}

	for key, item := range items {
		item.Title = titles[item.WorkoutTemplateID]
		if item.Title == "" {
			item.Title = FallbackWorkoutTitle
		}
		items[key] = item
	}
}
