package repository

import (
	"context"

	"fitcoach/coaching-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	AddClientIDToTrainer(ctx context.Context, trainerID, clientID primitive.ObjectID) error
	GetClientsByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error)
	SetTrainerForClient(ctx context.Context, clientID, trainerID primitive.ObjectID) error
}

// WorkoutRepository defines the interface for the trainer's workout library
// (the workouts table that program documents reference by id).
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Workout, error)
	// GetByIDs fetches many workouts in one query; ids that do not resolve
	// are simply absent from the result. Used for bulk title lookups.
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Workout, error)
	Update(ctx context.Context, workout *domain.Workout) error
	SetVideoObjectKey(ctx context.Context, id, trainerID primitive.ObjectID, objectKey string) error
	Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error
}

// ProgramTemplatePatch is a partial update of a program template row. Nil
// fields are left untouched; State replaces the whole document.
type ProgramTemplatePatch struct {
	Title      *string
	Difficulty *domain.Difficulty
	State      *domain.ProgramTemplateState
}

// ProgramTemplateRepository defines the interface for program template rows.
type ProgramTemplateRepository interface {
	Create(ctx context.Context, tpl *domain.ProgramTemplate) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgramTemplate, error)
	GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID, includeArchived bool) ([]domain.ProgramTemplate, error)
	// GetByIDs batch-fetches templates; used by the bulk today-lookup so a
	// program shared by many clients is fetched once, not once per client.
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.ProgramTemplate, error)
	// Update applies a partial patch scoped to the owning trainer and
	// returns the stored document.
	Update(ctx context.Context, id, trainerID primitive.ObjectID, patch ProgramTemplatePatch) (*domain.ProgramTemplate, error)
	SetArchived(ctx context.Context, id, trainerID primitive.ObjectID, archived bool) error
	Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error
}

// ProgramAssignmentRepository tracks which client runs which program from
// which start date.
type ProgramAssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.ProgramAssignment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgramAssignment, error)
	// GetActiveByClientIDs returns the active assignments of the given
	// clients under one trainer, in a single query.
	GetActiveByClientIDs(ctx context.Context, trainerID primitive.ObjectID, clientIDs []primitive.ObjectID) ([]domain.ProgramAssignment, error)
	// DeactivateForClient clears any active assignment before a new one
	// becomes the client's current program.
	DeactivateForClient(ctx context.Context, trainerID, clientID primitive.ObjectID) error
}

// WorkoutAssignmentRepository holds explicit per-day workout rows, which
// override the program-derived schedule for their date.
type WorkoutAssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.WorkoutAssignment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutAssignment, error)
	// GetByClientIDsAndDate fetches all explicit rows for one calendar date
	// across many clients in a single query.
	GetByClientIDsAndDate(ctx context.Context, trainerID primitive.ObjectID, clientIDs []primitive.ObjectID, date string) ([]domain.WorkoutAssignment, error)
	UpdateStatus(ctx context.Context, id, clientID primitive.ObjectID, status domain.WorkoutAssignmentStatus) error
}
