package mongo

import (
	"context"
	"errors"
	"time"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	programAssignmentCollectionName = "program_assignments"
	workoutAssignmentCollectionName = "workout_assignments"
)

// --- Program assignments ---

// mongoProgramAssignmentRepository implements repository.ProgramAssignmentRepository.
type mongoProgramAssignmentRepository struct {
	collection *mongo.Collection
}

// NewMongoProgramAssignmentRepository creates a new ProgramAssignment repository.
func NewMongoProgramAssignmentRepository(db *mongo.Database) repository.ProgramAssignmentRepository {
	return &mongoProgramAssignmentRepository{
		collection: db.Collection(programAssignmentCollectionName),
	}
}

// Create inserts a new program assignment.
func (r *mongoProgramAssignmentRepository) Create(ctx context.Context, assignment *domain.ProgramAssignment) (primitive.ObjectID, error) {
	if assignment.ProgramTemplateID == primitive.NilObjectID ||
		assignment.ClientID == primitive.NilObjectID ||
		assignment.TrainerID == primitive.NilObjectID ||
		assignment.StartDate == "" {
		return primitive.NilObjectID, errors.New("program assignment requires programTemplateId, clientId, trainerId, and startDate")
	}
	assignment.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, assignment)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted program assignment ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single program assignment.
func (r *mongoProgramAssignmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgramAssignment, error) {
	var assignment domain.ProgramAssignment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&assignment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

// GetActiveByClientIDs returns the active assignments of the given clients
// under one trainer, in a single query.
func (r *mongoProgramAssignmentRepository) GetActiveByClientIDs(ctx context.Context, trainerID primitive.ObjectID, clientIDs []primitive.ObjectID) ([]domain.ProgramAssignment, error) {
	if len(clientIDs) == 0 {
		return []domain.ProgramAssignment{}, nil
	}
	filter := bson.M{
		"trainerId": trainerID,
		"clientId":  bson.M{"$in": clientIDs},
		"active":    true,
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assignments []domain.ProgramAssignment
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	if assignments == nil {
		assignments = []domain.ProgramAssignment{}
	}
	return assignments, nil
}

// DeactivateForClient clears any active assignment the client currently has.
func (r *mongoProgramAssignmentRepository) DeactivateForClient(ctx context.Context, trainerID, clientID primitive.ObjectID) error {
	filter := bson.M{"trainerId": trainerID, "clientId": clientID, "active": true}
	update := bson.M{"$set": bson.M{"active": false, "updatedAt": time.Now().UTC()}}
	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}

// EnsureProgramAssignmentIndexes creates necessary indexes. Call during startup.
func EnsureProgramAssignmentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "clientId", Value: 1}, {Key: "active", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}

// --- Workout assignments ---

// mongoWorkoutAssignmentRepository implements repository.WorkoutAssignmentRepository.
type mongoWorkoutAssignmentRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutAssignmentRepository creates a new WorkoutAssignment repository.
func NewMongoWorkoutAssignmentRepository(db *mongo.Database) repository.WorkoutAssignmentRepository {
	return &mongoWorkoutAssignmentRepository{
		collection: db.Collection(workoutAssignmentCollectionName),
	}
}

// Create inserts a new explicit per-day workout assignment.
func (r *mongoWorkoutAssignmentRepository) Create(ctx context.Context, assignment *domain.WorkoutAssignment) (primitive.ObjectID, error) {
	if assignment.WorkoutID == primitive.NilObjectID ||
		assignment.ClientID == primitive.NilObjectID ||
		assignment.TrainerID == primitive.NilObjectID ||
		assignment.Date == "" {
		return primitive.NilObjectID, errors.New("workout assignment requires workoutId, clientId, trainerId, and date")
	}
	assignment.ID = primitive.NewObjectID()
	if assignment.Status == "" {
		assignment.Status = domain.StatusAssigned
	}
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, assignment)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted workout assignment ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single workout assignment.
func (r *mongoWorkoutAssignmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutAssignment, error) {
	var assignment domain.WorkoutAssignment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&assignment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

// GetByClientIDsAndDate fetches all explicit rows for one calendar date
// across many clients in a single query.
func (r *mongoWorkoutAssignmentRepository) GetByClientIDsAndDate(ctx context.Context, trainerID primitive.ObjectID, clientIDs []primitive.ObjectID, date string) ([]domain.WorkoutAssignment, error) {
	if len(clientIDs) == 0 {
		return []domain.WorkoutAssignment{}, nil
	}
	filter := bson.M{
		"trainerId": trainerID,
		"clientId":  bson.M{"$in": clientIDs},
		"date":      date,
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assignments []domain.WorkoutAssignment
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	if assignments == nil {
		assignments = []domain.WorkoutAssignment{}
	}
	return assignments, nil
}

// UpdateStatus moves an assignment through its lifecycle, scoped to the
// client it belongs to.
func (r *mongoWorkoutAssignmentRepository) UpdateStatus(ctx context.Context, id, clientID primitive.ObjectID, status domain.WorkoutAssignmentStatus) error {
	filter := bson.M{"_id": id, "clientId": clientID}
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureWorkoutAssignmentIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutAssignmentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "date", Value: 1}, {Key: "clientId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
