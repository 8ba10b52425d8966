package service_test

import (
	"context"
	"fmt"
	"time"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes. They keep call counters where the services
// make promises about query fan-out.

type fakeTemplateRepo struct {
	templates map[primitive.ObjectID]domain.ProgramTemplate

	getByIDsCalls int
	createErr     error
	updateErr     error
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: make(map[primitive.ObjectID]domain.ProgramTemplate)}
}

func (r *fakeTemplateRepo) Create(_ context.Context, tpl *domain.ProgramTemplate) (primitive.ObjectID, error) {
	if r.createErr != nil {
		return primitive.NilObjectID, r.createErr
	}
	id := primitive.NewObjectID()
	stored := *tpl
	stored.ID = id
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.templates[id] = stored
	return id, nil
}

func (r *fakeTemplateRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.ProgramTemplate, error) {
	tpl, ok := r.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &tpl, nil
}

func (r *fakeTemplateRepo) GetByTrainerID(_ context.Context, trainerID primitive.ObjectID, includeArchived bool) ([]domain.ProgramTemplate, error) {
	var out []domain.ProgramTemplate
	for _, tpl := range r.templates {
		if tpl.TrainerID == trainerID && (includeArchived || !tpl.Archived) {
			out = append(out, tpl)
		}
	}
	return out, nil
}

func (r *fakeTemplateRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.ProgramTemplate, error) {
	r.getByIDsCalls++
	var out []domain.ProgramTemplate
	for _, id := range ids {
		if tpl, ok := r.templates[id]; ok {
			out = append(out, tpl)
		}
	}
	return out, nil
}

func (r *fakeTemplateRepo) Update(_ context.Context, id, trainerID primitive.ObjectID, patch repository.ProgramTemplatePatch) (*domain.ProgramTemplate, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	tpl, ok := r.templates[id]
	if !ok || tpl.TrainerID != trainerID {
		return nil, repository.ErrNotFound
	}
	if patch.Title != nil {
		tpl.Title = *patch.Title
	}
	if patch.Difficulty != nil {
		tpl.Difficulty = *patch.Difficulty
	}
	if patch.State != nil {
		tpl.State = *patch.State
		tpl.DurationWeeks = patch.State.DurationWeeks
		tpl.LastEditedAt = time.Now()
	}
	tpl.UpdatedAt = time.Now()
	r.templates[id] = tpl
	return &tpl, nil
}

func (r *fakeTemplateRepo) SetArchived(_ context.Context, id, trainerID primitive.ObjectID, archived bool) error {
	tpl, ok := r.templates[id]
	if !ok || tpl.TrainerID != trainerID {
		return repository.ErrNotFound
	}
	tpl.Archived = archived
	r.templates[id] = tpl
	return nil
}

func (r *fakeTemplateRepo) Delete(_ context.Context, id, trainerID primitive.ObjectID) error {
	tpl, ok := r.templates[id]
	if !ok || tpl.TrainerID != trainerID {
		return repository.ErrNotFound
	}
	delete(r.templates, id)
	return nil
}

type fakeWorkoutRepo struct {
	workouts map[primitive.ObjectID]domain.Workout

	getByIDsCalls int
	getByIDsErr   error
}

func newFakeWorkoutRepo() *fakeWorkoutRepo {
	return &fakeWorkoutRepo{workouts: make(map[primitive.ObjectID]domain.Workout)}
}

func (r *fakeWorkoutRepo) add(trainerID primitive.ObjectID, title string) primitive.ObjectID {
	id := primitive.NewObjectID()
	r.workouts[id] = domain.Workout{ID: id, TrainerID: trainerID, Title: title}
	return id
}

func (r *fakeWorkoutRepo) Create(_ context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	stored := *workout
	stored.ID = id
	r.workouts[id] = stored
	return id, nil
}

func (r *fakeWorkoutRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	w, ok := r.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &w, nil
}

func (r *fakeWorkoutRepo) GetByTrainerID(_ context.Context, trainerID primitive.ObjectID) ([]domain.Workout, error) {
	var out []domain.Workout
	for _, w := range r.workouts {
		if w.TrainerID == trainerID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *fakeWorkoutRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Workout, error) {
	r.getByIDsCalls++
	if r.getByIDsErr != nil {
		return nil, r.getByIDsErr
	}
	var out []domain.Workout
	for _, id := range ids {
		if w, ok := r.workouts[id]; ok {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *fakeWorkoutRepo) Update(_ context.Context, workout *domain.Workout) error {
	existing, ok := r.workouts[workout.ID]
	if !ok || existing.TrainerID != workout.TrainerID {
		return repository.ErrNotFound
	}
	stored := *workout
	stored.VideoObjectKey = existing.VideoObjectKey
	r.workouts[workout.ID] = stored
	return nil
}

func (r *fakeWorkoutRepo) SetVideoObjectKey(_ context.Context, id, trainerID primitive.ObjectID, objectKey string) error {
	w, ok := r.workouts[id]
	if !ok || w.TrainerID != trainerID {
		return repository.ErrNotFound
	}
	w.VideoObjectKey = objectKey
	r.workouts[id] = w
	return nil
}

func (r *fakeWorkoutRepo) Delete(_ context.Context, id, trainerID primitive.ObjectID) error {
	w, ok := r.workouts[id]
	if !ok || w.TrainerID != trainerID {
		return repository.ErrNotFound
	}
	delete(r.workouts, id)
	return nil
}

type fakeUserRepo struct {
	users map[primitive.ObjectID]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]domain.User)}
}

func (r *fakeUserRepo) addUser(role domain.Role, email string) primitive.ObjectID {
	id := primitive.NewObjectID()
	r.users[id] = domain.User{ID: id, Email: email, Role: role, PasswordHash: "x"}
	return id
}

func (r *fakeUserRepo) addManagedClient(trainerID primitive.ObjectID, email string) primitive.ObjectID {
	id := primitive.NewObjectID()
	r.users[id] = domain.User{ID: id, Email: email, Role: domain.RoleClient, TrainerID: &trainerID}
	return id
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	stored := *user
	stored.ID = id
	r.users[id] = stored
	return id, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) AddClientIDToTrainer(_ context.Context, trainerID, clientID primitive.ObjectID) error {
	t, ok := r.users[trainerID]
	if !ok {
		return repository.ErrNotFound
	}
	t.ClientIDs = append(t.ClientIDs, clientID)
	r.users[trainerID] = t
	return nil
}

func (r *fakeUserRepo) GetClientsByTrainerID(_ context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if u.Role == domain.RoleClient && u.TrainerID != nil && *u.TrainerID == trainerID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) SetTrainerForClient(_ context.Context, clientID, trainerID primitive.ObjectID) error {
	c, ok := r.users[clientID]
	if !ok {
		return repository.ErrNotFound
	}
	c.TrainerID = &trainerID
	r.users[clientID] = c
	return nil
}

type fakeProgramAssignmentRepo struct {
	assignments map[primitive.ObjectID]domain.ProgramAssignment

	activeCalls int
}

func newFakeProgramAssignmentRepo() *fakeProgramAssignmentRepo {
	return &fakeProgramAssignmentRepo{assignments: make(map[primitive.ObjectID]domain.ProgramAssignment)}
}

func (r *fakeProgramAssignmentRepo) Create(_ context.Context, a *domain.ProgramAssignment) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	stored := *a
	stored.ID = id
	r.assignments[id] = stored
	return id, nil
}

func (r *fakeProgramAssignmentRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.ProgramAssignment, error) {
	a, ok := r.assignments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *fakeProgramAssignmentRepo) GetActiveByClientIDs(_ context.Context, trainerID primitive.ObjectID, clientIDs []primitive.ObjectID) ([]domain.ProgramAssignment, error) {
	r.activeCalls++
	wanted := make(map[primitive.ObjectID]bool, len(clientIDs))
	for _, id := range clientIDs {
		wanted[id] = true
	}
	var out []domain.ProgramAssignment
	for _, a := range r.assignments {
		if a.TrainerID == trainerID && a.Active && wanted[a.ClientID] {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeProgramAssignmentRepo) DeactivateForClient(_ context.Context, trainerID, clientID primitive.ObjectID) error {
	for id, a := range r.assignments {
		if a.TrainerID == trainerID && a.ClientID == clientID && a.Active {
			a.Active = false
			r.assignments[id] = a
		}
	}
	return nil
}

type fakeWorkoutAssignmentRepo struct {
	assignments map[primitive.ObjectID]domain.WorkoutAssignment
}

func newFakeWorkoutAssignmentRepo() *fakeWorkoutAssignmentRepo {
	return &fakeWorkoutAssignmentRepo{assignments: make(map[primitive.ObjectID]domain.WorkoutAssignment)}
}

func (r *fakeWorkoutAssignmentRepo) Create(_ context.Context, a *domain.WorkoutAssignment) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	stored := *a
	stored.ID = id
	r.assignments[id] = stored
	return id, nil
}

func (r *fakeWorkoutAssignmentRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.WorkoutAssignment, error) {
	a, ok := r.assignments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *fakeWorkoutAssignmentRepo) GetByClientIDsAndDate(_ context.Context, trainerID primitive.ObjectID, clientIDs []primitive.ObjectID, date string) ([]domain.WorkoutAssignment, error) {
	wanted := make(map[primitive.ObjectID]bool, len(clientIDs))
	for _, id := range clientIDs {
		wanted[id] = true
	}
	var out []domain.WorkoutAssignment
	for _, a := range r.assignments {
		if a.TrainerID == trainerID && a.Date == date && wanted[a.ClientID] {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeWorkoutAssignmentRepo) UpdateStatus(_ context.Context, id, clientID primitive.ObjectID, status domain.WorkoutAssignmentStatus) error {
	a, ok := r.assignments[id]
	if !ok || a.ClientID != clientID {
		return repository.ErrNotFound
	}
	a.Status = status
	r.assignments[id] = a
	return nil
}

// fakeFileStorage records presign and delete calls.
type fakeFileStorage struct {
	uploads  []string
	deletes  []string
	signErr  error
	uploaded map[string]bool
}

func newFakeFileStorage() *fakeFileStorage {
	return &fakeFileStorage{uploaded: make(map[string]bool)}
}

func (s *fakeFileStorage) GeneratePresignedUploadURL(_ context.Context, objectKey, contentType string, _ time.Duration) (string, error) {
	if s.signErr != nil {
		return "", s.signErr
	}
	s.uploads = append(s.uploads, objectKey)
	return fmt.Sprintf("https://storage.test/upload/%s?type=%s", objectKey, contentType), nil
}

func (s *fakeFileStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	if s.signErr != nil {
		return "", s.signErr
	}
	return "https://storage.test/download/" + objectKey, nil
}

func (s *fakeFileStorage) DeleteObject(_ context.Context, objectKey string) error {
	s.deletes = append(s.deletes, objectKey)
	return nil
}
