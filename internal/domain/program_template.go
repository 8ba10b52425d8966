package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Difficulty level of a program or workout.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// WorkoutSource discriminates the two kinds of workout references a day can
// hold: a row in the workouts collection, or a snapshot embedded in the
// program document itself.
type WorkoutSource string

const (
	SourceWorkoutsTable WorkoutSource = "workoutsTable"
	SourceInline        WorkoutSource = "inline"
)

// ProgramTemplate is a trainer-owned, reusable training program. The editable
// phases/weeks/days document lives in State; the surrounding fields are row
// metadata.
type ProgramTemplate struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	TrainerID     primitive.ObjectID   `bson:"trainerId" json:"trainerId"`
	Title         string               `bson:"title" json:"title"`
	Description   string               `bson:"description,omitempty" json:"description,omitempty"`
	DurationWeeks int                  `bson:"durationWeeks" json:"durationWeeks"`
	Difficulty    Difficulty           `bson:"difficulty" json:"difficulty"`
	Archived      bool                 `bson:"archived" json:"archived"`
	State         ProgramTemplateState `bson:"state" json:"state"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
	LastEditedAt  time.Time            `bson:"lastEditedAt" json:"lastEditedAt"`
}

// ProgramTemplateState is the versioned phases/weeks/days document. It is
// edited as a whole on the client and persisted through debounced partial
// updates; SchemaVersion tags the document shape for forward migration.
type ProgramTemplateState struct {
	SchemaVersion int            `bson:"schemaVersion" json:"schemaVersion"`
	Difficulty    Difficulty     `bson:"difficulty" json:"difficulty"`
	DurationWeeks int            `bson:"durationWeeks" json:"durationWeeks"`
	Phases        []Phase        `bson:"phases" json:"phases"`
	Library       WorkoutLibrary `bson:"library" json:"library"`

	// UI selection hints. Carried through saves untouched, never relied on.
	SelectedPhase int `bson:"selectedPhase,omitempty" json:"selectedPhase,omitempty"`
	SelectedWeek  int `bson:"selectedWeek,omitempty" json:"selectedWeek,omitempty"`
}

// Phase is a named, ordered grouping of weeks. Order is a dense 0-based index
// matching the phase's position in ProgramTemplateState.Phases.
type Phase struct {
	ID            string `bson:"id" json:"id"`
	Title         string `bson:"title" json:"title"`
	Description   string `bson:"description,omitempty" json:"description,omitempty"`
	Order         int    `bson:"order" json:"order"`
	DurationWeeks int    `bson:"durationWeeks" json:"durationWeeks"`
	Weeks         []Week `bson:"weeks" json:"weeks"`
}

// Week holds exactly 7 days, one per weekday slot 0..6 (Mon..Sun). Index is
// dense within the parent phase.
type Week struct {
	Index int    `bson:"index" json:"index"`
	Label string `bson:"label" json:"label"`
	Days  []Day  `bson:"days" json:"days"`
}

// Day is a single weekday slot. An empty Workouts list means a rest day; a
// nil element in Workouts is an explicit "no workout" placeholder, distinct
// from the entry being absent.
type Day struct {
	ID       string        `bson:"id" json:"id"`
	Order    int           `bson:"order" json:"order"`
	Label    string        `bson:"label" json:"label"`
	Notes    string        `bson:"notes,omitempty" json:"notes,omitempty"`
	Workouts []*WorkoutRef `bson:"workouts" json:"workouts"`

	// LegacyWorkoutRef is the pre-list singular field still present in older
	// documents. Read once by normalization and folded into Workouts; never
	// written back.
	LegacyWorkoutRef *WorkoutRef `bson:"workoutRef,omitempty" json:"workoutRef,omitempty"`
}

// WorkoutRef is a tagged reference to a workout. Exactly one of WorkoutID or
// InlineWorkoutID is set, according to Source.
type WorkoutRef struct {
	Source          WorkoutSource `bson:"source" json:"source"`
	WorkoutID       string        `bson:"workoutId,omitempty" json:"workoutId,omitempty"`
	InlineWorkoutID string        `bson:"inlineWorkoutId,omitempty" json:"inlineWorkoutId,omitempty"`
}

// WorkoutLibrary is the document's embedded manifest: the set of table-backed
// workout ids referenced anywhere in the phases (used to prefetch titles in
// bulk) plus snapshots of workouts that exist only inside this document.
type WorkoutLibrary struct {
	LinkedWorkoutIDs []string        `bson:"linkedWorkoutIds" json:"linkedWorkoutIds"`
	InlineWorkouts   []InlineWorkout `bson:"inlineWorkouts" json:"inlineWorkouts"`
}

// InlineWorkout is a workout defined directly in the program document, with
// no corresponding row in the workouts collection.
type InlineWorkout struct {
	ID    string         `bson:"id" json:"id"`
	Title string         `bson:"title" json:"title"`
	State map[string]any `bson:"state,omitempty" json:"state,omitempty"`
}
