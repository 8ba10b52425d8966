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

const programTemplateCollectionName = "program_templates"

// mongoProgramTemplateRepository implements repository.ProgramTemplateRepository.
type mongoProgramTemplateRepository struct {
	collection *mongo.Collection
}

// NewMongoProgramTemplateRepository creates a new ProgramTemplate repository.
func NewMongoProgramTemplateRepository(db *mongo.Database) repository.ProgramTemplateRepository {
	return &mongoProgramTemplateRepository{
		collection: db.Collection(programTemplateCollectionName),
	}
}

// Create inserts a new program template.
func (r *mongoProgramTemplateRepository) Create(ctx context.Context, tpl *domain.ProgramTemplate) (primitive.ObjectID, error) {
	if tpl.TrainerID == primitive.NilObjectID || tpl.Title == "" {
		return primitive.NilObjectID, errors.New("program template requires trainerId and title")
	}
	tpl.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now
	tpl.LastEditedAt = now

	result, err := r.collection.InsertOne(ctx, tpl)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted program template ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single program template by its ID.
func (r *mongoProgramTemplateRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgramTemplate, error) {
	var tpl domain.ProgramTemplate
	filter := bson.M{"_id": id}
	err := r.collection.FindOne(ctx, filter).Decode(&tpl)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &tpl, nil
}

// GetByTrainerID retrieves all templates owned by a trainer, newest first.
// Archived templates are excluded unless includeArchived is set.
func (r *mongoProgramTemplateRepository) GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID, includeArchived bool) ([]domain.ProgramTemplate, error) {
	filter := bson.M{"trainerId": trainerID}
	if !includeArchived {
		filter["archived"] = false
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var templates []domain.ProgramTemplate
	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	if templates == nil {
		templates = []domain.ProgramTemplate{}
	}
	return templates, nil
}

// GetByIDs batch-fetches templates. Missing ids are not an error; they are
// simply absent from the result.
func (r *mongoProgramTemplateRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.ProgramTemplate, error) {
	if len(ids) == 0 {
		return []domain.ProgramTemplate{}, nil
	}
	filter := bson.M{"_id": bson.M{"$in": ids}}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var templates []domain.ProgramTemplate
	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	if templates == nil {
		templates = []domain.ProgramTemplate{}
	}
	return templates, nil
}

// Update applies a partial patch to a template owned by the given trainer and
// returns the stored document. The filter carries the trainer id so a patch
// against someone else's template reads as not found.
func (r *mongoProgramTemplateRepository) Update(ctx context.Context, id, trainerID primitive.ObjectID, patch repository.ProgramTemplatePatch) (*domain.ProgramTemplate, error) {
	if id == primitive.NilObjectID || trainerID == primitive.NilObjectID {
		return nil, errors.New("template ID and trainer ID are required for update")
	}

	now := time.Now().UTC()
	set := bson.M{"updatedAt": now}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Difficulty != nil {
		set["difficulty"] = *patch.Difficulty
	}
	if patch.State != nil {
		set["state"] = *patch.State
		set["durationWeeks"] = patch.State.DurationWeeks
		set["lastEditedAt"] = now
	}

	filter := bson.M{"_id": id, "trainerId": trainerID}
	findOptions := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated domain.ProgramTemplate
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, findOptions).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// SetArchived flips the archive flag (soft delete / restore).
func (r *mongoProgramTemplateRepository) SetArchived(ctx context.Context, id, trainerID primitive.ObjectID, archived bool) error {
	filter := bson.M{"_id": id, "trainerId": trainerID}
	update := bson.M{"$set": bson.M{"archived": archived, "updatedAt": time.Now().UTC()}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a template row for good, scoped to the owning trainer.
func (r *mongoProgramTemplateRepository) Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error {
	if id == primitive.NilObjectID || trainerID == primitive.NilObjectID {
		return errors.New("template ID and trainer ID are required for deletion")
	}
	filter := bson.M{"_id": id, "trainerId": trainerID}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureProgramTemplateIndexes creates necessary indexes. Call during startup.
func EnsureProgramTemplateIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Main listing query: a trainer's non-archived templates.
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "archived", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "updatedAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
