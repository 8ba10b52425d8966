package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Workout is a row in the trainer's workout library (the "workouts table"
// that table-backed WorkoutRefs resolve against). State is the opaque
// exercise/set document edited by the workout builder; this service stores
// and returns it without interpreting it.
type Workout struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID      primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	Title          string             `bson:"title" json:"title"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	Difficulty     Difficulty         `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
	State          map[string]any     `bson:"state,omitempty" json:"state,omitempty"`
	VideoObjectKey string             `bson:"videoObjectKey,omitempty" json:"-"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
