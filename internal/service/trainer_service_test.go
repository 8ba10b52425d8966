package service_test

import (
	"context"
	"strings"
	"testing"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type trainerFixture struct {
	userRepo              *fakeUserRepo
	workoutRepo           *fakeWorkoutRepo
	templateRepo          *fakeTemplateRepo
	programAssignmentRepo *fakeProgramAssignmentRepo
	workoutAssignmentRepo *fakeWorkoutAssignmentRepo
	storage               *fakeFileStorage
	svc                   service.TrainerService
	trainerID             primitive.ObjectID
}

func newTrainerFixture() *trainerFixture {
	f := &trainerFixture{
		userRepo:              newFakeUserRepo(),
		workoutRepo:           newFakeWorkoutRepo(),
		templateRepo:          newFakeTemplateRepo(),
		programAssignmentRepo: newFakeProgramAssignmentRepo(),
		workoutAssignmentRepo: newFakeWorkoutAssignmentRepo(),
		storage:               newFakeFileStorage(),
	}
	f.trainerID = f.userRepo.addUser(domain.RoleTrainer, "coach@example.com")
	f.svc = service.NewTrainerService(f.userRepo, f.workoutRepo, f.templateRepo, f.programAssignmentRepo, f.workoutAssignmentRepo, f.storage)
	return f
}

func TestAddClientByEmail(t *testing.T) {
	f := newTrainerFixture()
	clientID := f.userRepo.addUser(domain.RoleClient, "client@example.com")

	client, err := f.svc.AddClientByEmail(context.Background(), f.trainerID, "client@example.com")
	require.NoError(t, err)
	assert.Equal(t, clientID, client.ID)
	require.NotNil(t, client.TrainerID)
	assert.Equal(t, f.trainerID, *client.TrainerID)

	// Adding the same client again is idempotent.
	_, err = f.svc.AddClientByEmail(context.Background(), f.trainerID, "client@example.com")
	assert.NoError(t, err)
}

func TestAddClientByEmailRejections(t *testing.T) {
	f := newTrainerFixture()
	f.userRepo.addUser(domain.RoleTrainer, "othercoach@example.com")
	otherTrainer := primitive.NewObjectID()
	f.userRepo.addManagedClient(otherTrainer, "taken@example.com")

	_, err := f.svc.AddClientByEmail(context.Background(), f.trainerID, "nobody@example.com")
	assert.ErrorIs(t, err, service.ErrClientNotFound)

	_, err = f.svc.AddClientByEmail(context.Background(), f.trainerID, "othercoach@example.com")
	assert.ErrorIs(t, err, service.ErrClientNotRole)

	_, err = f.svc.AddClientByEmail(context.Background(), f.trainerID, "taken@example.com")
	assert.ErrorIs(t, err, service.ErrClientAlreadyAssigned)
}

func TestGetManagedClientsStripsPasswordHash(t *testing.T) {
	f := newTrainerFixture()
	f.userRepo.addManagedClient(f.trainerID, "a@example.com")
	f.userRepo.addManagedClient(f.trainerID, "b@example.com")
	f.userRepo.addManagedClient(primitive.NewObjectID(), "other@example.com")

	clients, err := f.svc.GetManagedClients(context.Background(), f.trainerID)
	require.NoError(t, err)
	assert.Len(t, clients, 2)
	for _, c := range clients {
		assert.Empty(t, c.PasswordHash)
	}
}

func TestWorkoutOwnershipReadsAsNotFound(t *testing.T) {
	f := newTrainerFixture()
	workoutID := f.workoutRepo.add(primitive.NewObjectID(), "Someone Else's")

	_, err := f.svc.GetWorkout(context.Background(), f.trainerID, workoutID)
	assert.ErrorIs(t, err, service.ErrWorkoutNotFound)
}

func TestAssignProgramDeactivatesPrevious(t *testing.T) {
	f := newTrainerFixture()
	clientID := f.userRepo.addManagedClient(f.trainerID, "client@example.com")

	makeProgram := func(title string) primitive.ObjectID {
		id, err := f.templateRepo.Create(context.Background(), &domain.ProgramTemplate{
			TrainerID: f.trainerID, Title: title, Difficulty: domain.DifficultyBeginner,
		})
		require.NoError(t, err)
		return id
	}
	first := makeProgram("First Block")
	second := makeProgram("Second Block")

	a1, err := f.svc.AssignProgram(context.Background(), f.trainerID, clientID, first, "2026-03-02")
	require.NoError(t, err)
	assert.True(t, a1.Active)

	a2, err := f.svc.AssignProgram(context.Background(), f.trainerID, clientID, second, "2026-04-06")
	require.NoError(t, err)
	assert.True(t, a2.Active)

	stored, err := f.programAssignmentRepo.GetByID(context.Background(), a1.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
}

func TestAssignProgramValidation(t *testing.T) {
	f := newTrainerFixture()
	clientID := f.userRepo.addManagedClient(f.trainerID, "client@example.com")
	strangerID := f.userRepo.addManagedClient(primitive.NewObjectID(), "stranger@example.com")
	programID, err := f.templateRepo.Create(context.Background(), &domain.ProgramTemplate{
		TrainerID: f.trainerID, Title: "Block", Difficulty: domain.DifficultyBeginner,
	})
	require.NoError(t, err)

	_, err = f.svc.AssignProgram(context.Background(), f.trainerID, clientID, programID, "soon")
	assert.ErrorIs(t, err, service.ErrInvalidStartDate)

	_, err = f.svc.AssignProgram(context.Background(), f.trainerID, strangerID, programID, "2026-03-02")
	assert.ErrorIs(t, err, service.ErrClientNotManaged)

	_, err = f.svc.AssignProgram(context.Background(), f.trainerID, clientID, primitive.NewObjectID(), "2026-03-02")
	assert.ErrorIs(t, err, service.ErrProgramNotFound)
}

func TestAssignWorkoutForDay(t *testing.T) {
	f := newTrainerFixture()
	clientID := f.userRepo.addManagedClient(f.trainerID, "client@example.com")
	workoutID := f.workoutRepo.add(f.trainerID, "Deload Walk")

	a, err := f.svc.AssignWorkoutForDay(context.Background(), f.trainerID, clientID, workoutID, "2026-03-05")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAssigned, a.Status)
	assert.Equal(t, "2026-03-05", a.Date)

	_, err = f.svc.AssignWorkoutForDay(context.Background(), f.trainerID, clientID, primitive.NewObjectID(), "2026-03-05")
	assert.ErrorIs(t, err, service.ErrWorkoutNotFound)
}

func TestUnassignProgram(t *testing.T) {
	f := newTrainerFixture()
	clientID := f.userRepo.addManagedClient(f.trainerID, "client@example.com")
	programID, err := f.templateRepo.Create(context.Background(), &domain.ProgramTemplate{
		TrainerID: f.trainerID, Title: "Block", Difficulty: domain.DifficultyBeginner,
	})
	require.NoError(t, err)

	a, err := f.svc.AssignProgram(context.Background(), f.trainerID, clientID, programID, "2026-03-02")
	require.NoError(t, err)

	require.NoError(t, f.svc.UnassignProgram(context.Background(), f.trainerID, clientID))
	stored, err := f.programAssignmentRepo.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
}

func TestSetWorkoutAssignmentStatus(t *testing.T) {
	f := newTrainerFixture()
	clientID := f.userRepo.addManagedClient(f.trainerID, "client@example.com")
	workoutID := f.workoutRepo.add(f.trainerID, "Deload Walk")

	a, err := f.svc.AssignWorkoutForDay(context.Background(), f.trainerID, clientID, workoutID, "2026-03-05")
	require.NoError(t, err)

	require.NoError(t, f.svc.SetWorkoutAssignmentStatus(context.Background(), f.trainerID, a.ID, domain.StatusCompleted))
	stored, err := f.workoutAssignmentRepo.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)

	err = f.svc.SetWorkoutAssignmentStatus(context.Background(), f.trainerID, a.ID, "abandoned")
	assert.ErrorIs(t, err, service.ErrInvalidAssignmentStatus)

	err = f.svc.SetWorkoutAssignmentStatus(context.Background(), primitive.NewObjectID(), a.ID, domain.StatusSkipped)
	assert.ErrorIs(t, err, service.ErrAssignmentNotFound)
}

func TestVideoUploadFlow(t *testing.T) {
	f := newTrainerFixture()
	workoutID := f.workoutRepo.add(f.trainerID, "Squat Demo")

	ticket, err := f.svc.RequestVideoUploadURL(context.Background(), f.trainerID, workoutID, "video/mp4")
	require.NoError(t, err)
	assert.NotEmpty(t, ticket.UploadURL)
	assert.True(t, strings.HasPrefix(ticket.ObjectKey, "workouts/"+f.trainerID.Hex()+"/"))

	require.NoError(t, f.svc.ConfirmVideoUpload(context.Background(), f.trainerID, workoutID, ticket.ObjectKey))

	url, err := f.svc.GetVideoDownloadURL(context.Background(), f.trainerID, workoutID)
	require.NoError(t, err)
	assert.Contains(t, url, ticket.ObjectKey)
}

func TestVideoUploadReplacesOldObject(t *testing.T) {
	f := newTrainerFixture()
	workoutID := f.workoutRepo.add(f.trainerID, "Squat Demo")

	require.NoError(t, f.svc.ConfirmVideoUpload(context.Background(), f.trainerID, workoutID, "workouts/old-key.mp4"))
	require.NoError(t, f.svc.ConfirmVideoUpload(context.Background(), f.trainerID, workoutID, "workouts/new-key.mp4"))

	assert.Contains(t, f.storage.deletes, "workouts/old-key.mp4")
}

func TestVideoUploadRejectsNonVideoContentType(t *testing.T) {
	f := newTrainerFixture()
	workoutID := f.workoutRepo.add(f.trainerID, "Squat Demo")

	_, err := f.svc.RequestVideoUploadURL(context.Background(), f.trainerID, workoutID, "application/pdf")
	assert.ErrorIs(t, err, service.ErrInvalidVideoType)
}

func TestVideoDownloadWithoutVideo(t *testing.T) {
	f := newTrainerFixture()
	workoutID := f.workoutRepo.add(f.trainerID, "No Video Yet")

	_, err := f.svc.GetVideoDownloadURL(context.Background(), f.trainerID, workoutID)
	assert.ErrorIs(t, err, service.ErrWorkoutNotFound)
}
