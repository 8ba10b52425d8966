package service

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/program"
	"fitcoach/coaching-app/internal/repository"
	"fitcoach/coaching-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrClientNotFound          = errors.New("client user not found")
	ErrClientNotRole           = errors.New("user found but is not a client")
	ErrClientAlreadyAssigned   = errors.New("client is already assigned to a trainer")
	ErrClientNotManaged        = errors.New("client is not managed by this trainer")
	ErrWorkoutNotFound         = errors.New("workout not found")
	ErrAssignmentNotFound      = errors.New("assignment not found")
	ErrInvalidStartDate        = errors.New("start date must be a YYYY-MM-DD calendar date")
	ErrInvalidAssignmentStatus = errors.New("invalid assignment status")
	ErrInvalidVideoType        = errors.New("invalid or missing video content type")
)

// VideoUploadTicket carries a presigned upload URL and the object key the
// client must report back on confirm.
type VideoUploadTicket struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// TrainerService covers the trainer-side operations around the program
// engine: managing clients, the workout library, program assignments, and
// demo video media.
type TrainerService interface {
	// Client Management
	AddClientByEmail(ctx context.Context, trainerID primitive.ObjectID, clientEmail string) (*domain.User, error)
	GetManagedClients(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error)

	// Workout Library
	CreateWorkout(ctx context.Context, workout *domain.Workout) (*domain.Workout, error)
	GetWorkout(ctx context.Context, trainerID, workoutID primitive.ObjectID) (*domain.Workout, error)
	ListWorkouts(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Workout, error)
	UpdateWorkout(ctx context.Context, workout *domain.Workout) (*domain.Workout, error)
	DeleteWorkout(ctx context.Context, trainerID, workoutID primitive.ObjectID) error

	// Assignments
	AssignProgram(ctx context.Context, trainerID, clientID, programID primitive.ObjectID, startDate string) (*domain.ProgramAssignment, error)
	UnassignProgram(ctx context.Context, trainerID, clientID primitive.ObjectID) error
	AssignWorkoutForDay(ctx context.Context, trainerID, clientID, workoutID primitive.ObjectID, date string) (*domain.WorkoutAssignment, error)
	SetWorkoutAssignmentStatus(ctx context.Context, trainerID, assignmentID primitive.ObjectID, status domain.WorkoutAssignmentStatus) error

	// Demo video media
	RequestVideoUploadURL(ctx context.Context, trainerID, workoutID primitive.ObjectID, contentType string) (*VideoUploadTicket, error)
	ConfirmVideoUpload(ctx context.Context, trainerID, workoutID primitive.ObjectID, objectKey string) error
	GetVideoDownloadURL(ctx context.Context, trainerID, workoutID primitive.ObjectID) (string, error)
}

// trainerService implements the TrainerService interface.
type trainerService struct {
	userRepo              repository.UserRepository
	workoutRepo           repository.WorkoutRepository
	templateRepo          repository.ProgramTemplateRepository
	programAssignmentRepo repository.ProgramAssignmentRepository
	workoutAssignmentRepo repository.WorkoutAssignmentRepository
	fileStorage           storage.FileStorage
}

// NewTrainerService creates a new instance of trainerService.
func NewTrainerService(
	userRepo repository.UserRepository,
	workoutRepo repository.WorkoutRepository,
	templateRepo repository.ProgramTemplateRepository,
	programAssignmentRepo repository.ProgramAssignmentRepository,
	workoutAssignmentRepo repository.WorkoutAssignmentRepository,
	fileStorage storage.FileStorage,
) TrainerService {
	return &trainerService{
		userRepo:              userRepo,
		workoutRepo:           workoutRepo,
		templateRepo:          templateRepo,
		programAssignmentRepo: programAssignmentRepo,
		workoutAssignmentRepo: workoutAssignmentRepo,
		fileStorage:           fileStorage,
	}
}

// === Client Management ===

// AddClientByEmail finds a client by email and assigns them to the trainer.
func (s *trainerService) AddClientByEmail(ctx context.Context, trainerID primitive.ObjectID, clientEmail string) (*domain.User, error) {
	if trainerID == primitive.NilObjectID || clientEmail == "" {
		return nil, errors.New("trainer ID and client email are required")
	}

	client, err := s.userRepo.GetByEmail(ctx, clientEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if client.Role != domain.RoleClient {
		return nil, ErrClientNotRole
	}

	if client.TrainerID != nil && *client.TrainerID != primitive.NilObjectID {
		if *client.TrainerID == trainerID {
			return client, nil // already managed by this trainer
		}
		return nil, ErrClientAlreadyAssigned
	}

	if err := s.userRepo.AddClientIDToTrainer(ctx, trainerID, client.ID); err != nil {
		return nil, err
	}
	if err := s.userRepo.SetTrainerForClient(ctx, client.ID, trainerID); err != nil {
		return nil, err
	}

	client.TrainerID = &trainerID
	return client, nil
}

// GetManagedClients retrieves the list of clients managed by the trainer.
func (s *trainerService) GetManagedClients(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	if trainerID == primitive.NilObjectID {
		return nil, errors.New("trainer ID is required")
	}
	clients, err := s.userRepo.GetClientsByTrainerID(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	for i := range clients {
		clients[i].PasswordHash = ""
	}
	return clients, nil
}

// requireManagedClient checks that the client exists and belongs to the
// trainer.
func (s *trainerService) requireManagedClient(ctx context.Context, trainerID, clientID primitive.ObjectID) (*domain.User, error) {
	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if client.TrainerID == nil || *client.TrainerID != trainerID {
		return nil, ErrClientNotManaged
	}
	return client, nil
}

// === Workout Library ===

// CreateWorkout adds a workout to the trainer's library.
func (s *trainerService) CreateWorkout(ctx context.Context, workout *domain.Workout) (*domain.Workout, error) {
	id, err := s.workoutRepo.Create(ctx, workout)
	if err != nil {
		return nil, err
	}
	workout.ID = id
	return workout, nil
}

// GetWorkout fetches a workout and checks ownership.
func (s *trainerService) GetWorkout(ctx context.Context, trainerID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	if workout.TrainerID != trainerID {
		return nil, ErrWorkoutNotFound
	}
	return workout, nil
}

// ListWorkouts returns the trainer's workout library.
func (s *trainerService) ListWorkouts(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Workout, error) {
	if trainerID == primitive.NilObjectID {
		return nil, errors.New("trainer ID is required")
	}
	return s.workoutRepo.GetByTrainerID(ctx, trainerID)
}

// UpdateWorkout rewrites a workout's mutable fields.
func (s *trainerService) UpdateWorkout(ctx context.Context, workout *domain.Workout) (*domain.Workout, error) {
	if err := s.workoutRepo.Update(ctx, workout); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return s.GetWorkout(ctx, workout.TrainerID, workout.ID)
}

// DeleteWorkout removes a workout from the library. Program documents that
// still reference it degrade to the fallback title on schedule reads; the
// reference itself is cleaned up next time the program is normalized against
// the library by the editing client.
func (s *trainerService) DeleteWorkout(ctx context.Context, trainerID, workoutID primitive.ObjectID) error {
	err := s.workoutRepo.Delete(ctx, workoutID, trainerID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrWorkoutNotFound
	}
	return err
}

// === Assignments ===

// AssignProgram puts a managed client on a program template from the given
// start date, deactivating any previous active assignment.
func (s *trainerService) AssignProgram(ctx context.Context, trainerID, clientID, programID primitive.ObjectID, startDate string) (*domain.ProgramAssignment, error) {
	if _, err := program.ParseDay(startDate); err != nil {
		return nil, ErrInvalidStartDate
	}
	if _, err := s.requireManagedClient(ctx, trainerID, clientID); err != nil {
		return nil, err
	}

	// Ownership check on the program.
	tpl, err := s.templateRepo.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	if tpl.TrainerID != trainerID {
		return nil, ErrProgramNotFound
	}

	if err := s.programAssignmentRepo.DeactivateForClient(ctx, trainerID, clientID); err != nil {
		return nil, err
	}

	assignment := &domain.ProgramAssignment{
		ProgramTemplateID: programID,
		ClientID:          clientID,
		TrainerID:         trainerID,
		StartDate:         startDate,
		Active:            true,
	}
	id, err := s.programAssignmentRepo.Create(ctx, assignment)
	if err != nil {
		return nil, err
	}
	assignment.ID = id
	return assignment, nil
}

// UnassignProgram takes a managed client off their current program.
func (s *trainerService) UnassignProgram(ctx context.Context, trainerID, clientID primitive.ObjectID) error {
	if _, err := s.requireManagedClient(ctx, trainerID, clientID); err != nil {
		return err
	}
	return s.programAssignmentRepo.DeactivateForClient(ctx, trainerID, clientID)
}

// AssignWorkoutForDay pins an explicit workout to a calendar day for a
// client, overriding the program-derived schedule for that day.
func (s *trainerService) AssignWorkoutForDay(ctx context.Context, trainerID, clientID, workoutID primitive.ObjectID, date string) (*domain.WorkoutAssignment, error) {
	if _, err := program.ParseDay(date); err != nil {
		return nil, ErrInvalidStartDate
	}
	if _, err := s.requireManagedClient(ctx, trainerID, clientID); err != nil {
		return nil, err
	}
	if _, err := s.GetWorkout(ctx, trainerID, workoutID); err != nil {
		return nil, err
	}

	assignment := &domain.WorkoutAssignment{
		WorkoutID: workoutID,
		ClientID:  clientID,
		TrainerID: trainerID,
		Date:      date,
		Status:    domain.StatusAssigned,
	}
	id, err := s.workoutAssignmentRepo.Create(ctx, assignment)
	if err != nil {
		return nil, err
	}
	assignment.ID = id
	return assignment, nil
}

// SetWorkoutAssignmentStatus updates the lifecycle status of an explicit
// day assignment owned by the trainer.
func (s *trainerService) SetWorkoutAssignmentStatus(ctx context.Context, trainerID, assignmentID primitive.ObjectID, status domain.WorkoutAssignmentStatus) error {
	switch status {
	case domain.StatusAssigned, domain.StatusCompleted, domain.StatusSkipped:
	default:
		return ErrInvalidAssignmentStatus
	}

	assignment, err := s.workoutAssignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}
	if assignment.TrainerID != trainerID {
		return ErrAssignmentNotFound
	}

	err = s.workoutAssignmentRepo.UpdateStatus(ctx, assignmentID, assignment.ClientID, status)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrAssignmentNotFound
	}
	return err
}

// === Demo video media ===

// RequestVideoUploadURL generates a presigned URL for uploading a workout
// demo video straight to object storage.
func (s *trainerService) RequestVideoUploadURL(ctx context.Context, trainerID, workoutID primitive.ObjectID, contentType string) (*VideoUploadTicket, error) {
	if contentType == "" || !strings.HasPrefix(strings.ToLower(contentType), "video/") {
		return nil, ErrInvalidVideoType
	}
	if _, err := s.GetWorkout(ctx, trainerID, workoutID); err != nil {
		return nil, err
	}

	ext := ".bin"
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		ext = exts[0]
	}
	objectKey := fmt.Sprintf("workouts/%s/%s%s", trainerID.Hex(), uuid.NewString(), ext)

	url, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}
	return &VideoUploadTicket{UploadURL: url, ObjectKey: objectKey}, nil
}

// ConfirmVideoUpload records the uploaded object key on the workout row,
// deleting the previous video object if one existed.
func (s *trainerService) ConfirmVideoUpload(ctx context.Context, trainerID, workoutID primitive.ObjectID, objectKey string) error {
	if objectKey == "" {
		return errors.New("object key is required")
	}
	workout, err := s.GetWorkout(ctx, trainerID, workoutID)
	if err != nil {
		return err
	}

	if err := s.workoutRepo.SetVideoObjectKey(ctx, workoutID, trainerID, objectKey); err != nil {
		return err
	}
	if workout.VideoObjectKey != "" && workout.VideoObjectKey != objectKey {
		// Best effort; an orphaned object is not worth failing the confirm.
		_ = s.fileStorage.DeleteObject(ctx, workout.VideoObjectKey)
	}
	return nil
}

// GetVideoDownloadURL returns a temporary URL for viewing the workout's demo
// video.
func (s *trainerService) GetVideoDownloadURL(ctx context.Context, trainerID, workoutID primitive.ObjectID) (string, error) {
	workout, err := s.GetWorkout(ctx, trainerID, workoutID)
	if err != nil {
		return "", err
	}
	if workout.VideoObjectKey == "" {
		return "", ErrWorkoutNotFound
	}
	return s.fileStorage.GeneratePresignedDownloadURL(ctx, workout.VideoObjectKey, storage.DefaultPresignedURLExpiry)
}
