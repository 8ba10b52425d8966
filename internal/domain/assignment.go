package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgramAssignment puts a client on a program template starting at a given
// calendar date. "Today's workout" for the client is derived by projecting
// the elapsed days since StartDate onto the program's flattened day sequence;
// there is no per-day row unless the trainer pins one (WorkoutAssignment).
type ProgramAssignment struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProgramTemplateID primitive.ObjectID `bson:"programTemplateId" json:"programTemplateId"`
	ClientID          primitive.ObjectID `bson:"clientId" json:"clientId"`
	TrainerID         primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	StartDate         string             `bson:"startDate" json:"startDate"` // YYYY-MM-DD
	Active            bool               `bson:"active" json:"active"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// WorkoutAssignmentStatus tracks the lifecycle of an explicitly assigned
// workout day.
type WorkoutAssignmentStatus string

const (
	StatusAssigned  WorkoutAssignmentStatus = "assigned"
	StatusCompleted WorkoutAssignmentStatus = "completed"
	StatusSkipped   WorkoutAssignmentStatus = "skipped"
)

// WorkoutAssignment is an explicit per-day workout row for a client. When one
// exists for a given date it overrides the program-derived schedule for that
// day.
type WorkoutAssignment struct {
	ID        primitive.ObjectID      `bson:"_id,omitempty" json:"id"`
	WorkoutID primitive.ObjectID      `bson:"workoutId" json:"workoutId"`
	ClientID  primitive.ObjectID      `bson:"clientId" json:"clientId"`
	TrainerID primitive.ObjectID      `bson:"trainerId" json:"trainerId"`
	Date      string                  `bson:"date" json:"date"` // YYYY-MM-DD
	Status    WorkoutAssignmentStatus `bson:"status" json:"status"`
	Notes     string                  `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time               `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time               `bson:"updatedAt" json:"updatedAt"`
}
