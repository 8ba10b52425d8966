package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/program"
	"fitcoach/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrProgramNotFound   = errors.New("program template not found")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	ErrEmptyTitle        = errors.New("program title is required")
)

// CreateProgramInput carries the fields needed to create a program template.
// PhaseCount defaults to 1.
type CreateProgramInput struct {
	Title         string
	Description   string
	DurationWeeks int
	PhaseCount    int
	Difficulty    domain.Difficulty
}

// UpdateProgramInput is a partial update; nil fields are left untouched.
type UpdateProgramInput struct {
	Title      *string
	Difficulty *domain.Difficulty
	State      *domain.ProgramTemplateState
}

// ProgramService owns the program template lifecycle: create, list, edit
// (through debounced editor sessions), duplicate, archive, delete.
type ProgramService interface {
	CreateProgram(ctx context.Context, trainerID primitive.ObjectID, input CreateProgramInput) (*domain.ProgramTemplate, error)
	GetProgram(ctx context.Context, trainerID, programID primitive.ObjectID) (*domain.ProgramTemplate, error)
	ListPrograms(ctx context.Context, trainerID primitive.ObjectID, includeArchived bool) ([]domain.ProgramTemplate, error)
	UpdateProgram(ctx context.Context, trainerID, programID primitive.ObjectID, input UpdateProgramInput) (*domain.ProgramTemplate, error)
	DuplicateProgram(ctx context.Context, trainerID, programID primitive.ObjectID) (*domain.ProgramTemplate, error)
	ArchiveProgram(ctx context.Context, trainerID, programID primitive.ObjectID, archived bool) error
	DeleteProgram(ctx context.Context, trainerID, programID primitive.ObjectID) error

	// ApplyOperation runs one engine transition inside the program's editor
	// session. The edit is applied optimistically in memory and persisted on
	// a debounced timer; the returned state is the post-edit document.
	ApplyOperation(ctx context.Context, trainerID, programID primitive.ObjectID, op program.Op) (domain.ProgramTemplateState, error)
	// CloseEditor flushes any pending edits and discards the session.
	CloseEditor(ctx context.Context, trainerID, programID primitive.ObjectID) error
}

// programService implements the ProgramService interface.
type programService struct {
	templateRepo repository.ProgramTemplateRepository
	debounce     time.Duration

	mu      sync.Mutex
	editors map[string]*program.Editor // keyed by trainerID/programID
}

// NewProgramService creates a new instance of programService. debounce <= 0
// falls back to the engine's default.
func NewProgramService(templateRepo repository.ProgramTemplateRepository, debounce time.Duration) ProgramService {
	return &programService{
		templateRepo: templateRepo,
		debounce:     debounce,
		editors:      make(map[string]*program.Editor),
	}
}

func validDifficulty(d domain.Difficulty) bool {
	switch d {
	case domain.DifficultyBeginner, domain.DifficultyIntermediate, domain.DifficultyAdvanced:
		return true
	}
	return false
}

// CreateProgram seeds a new template from the requested duration and phase
// count.
func (s *programService) CreateProgram(ctx context.Context, trainerID primitive.ObjectID, input CreateProgramInput) (*domain.ProgramTemplate, error) {
	if trainerID == primitive.NilObjectID {
		return nil, errors.New("trainer ID is required")
	}
	if input.Title == "" {
		return nil, ErrEmptyTitle
	}
	if !validDifficulty(input.Difficulty) {
		return nil, ErrInvalidDifficulty
	}
	if input.PhaseCount == 0 {
		input.PhaseCount = 1
	}

	state, err := program.NewState(input.DurationWeeks, input.PhaseCount, input.Difficulty)
	if err != nil {
		return nil, err
	}

	tpl := &domain.ProgramTemplate{
		TrainerID:     trainerID,
		Title:         input.Title,
		Description:   input.Description,
		DurationWeeks: state.DurationWeeks,
		Difficulty:    input.Difficulty,
		State:         state,
	}
	id, err := s.templateRepo.Create(ctx, tpl)
	if err != nil {
		return nil, err
	}
	tpl.ID = id
	return tpl, nil
}

// GetProgram fetches a template and checks ownership. A template owned by
// another trainer reads as not found, never as forbidden, so ids cannot be
// probed.
func (s *programService) GetProgram(ctx context.Context, trainerID, programID primitive.ObjectID) (*domain.ProgramTemplate, error) {
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
	tpl.State = program.Normalize(tpl.State)
	return tpl, nil
}

// ListPrograms returns the trainer's templates.
func (s *programService) ListPrograms(ctx context.Context, trainerID primitive.ObjectID, includeArchived bool) ([]domain.ProgramTemplate, error) {
	if trainerID == primitive.NilObjectID {
		return nil, errors.New("trainer ID is required")
	}
	return s.templateRepo.GetByTrainerID(ctx, trainerID, includeArchived)
}

// UpdateProgram applies a partial patch. A state patch is normalized before
// it is persisted, so the stored document is always canonical.
func (s *programService) UpdateProgram(ctx context.Context, trainerID, programID primitive.ObjectID, input UpdateProgramInput) (*domain.ProgramTemplate, error) {
	if input.Title != nil && *input.Title == "" {
		return nil, ErrEmptyTitle
	}
	if input.Difficulty != nil && !validDifficulty(*input.Difficulty) {
		return nil, ErrInvalidDifficulty
	}

	patch := repository.ProgramTemplatePatch{
		Title:      input.Title,
		Difficulty: input.Difficulty,
	}
	if input.State != nil {
		normalized := program.Normalize(*input.State)
		patch.State = &normalized
	}

	tpl, err := s.templateRepo.Update(ctx, programID, trainerID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	return tpl, nil
}

// DuplicateProgram copies a template under a "(Copy)" title with a fresh id
// and timestamps.
func (s *programService) DuplicateProgram(ctx context.Context, trainerID, programID primitive.ObjectID) (*domain.ProgramTemplate, error) {
	source, err := s.GetProgram(ctx, trainerID, programID)
	if err != nil {
		return nil, err
	}

	clone := &domain.ProgramTemplate{
		TrainerID:     trainerID,
		Title:         source.Title + " (Copy)",
		Description:   source.Description,
		DurationWeeks: source.DurationWeeks,
		Difficulty:    source.Difficulty,
		State:         source.State,
	}
	id, err := s.templateRepo.Create(ctx, clone)
	if err != nil {
		return nil, err
	}
	clone.ID = id
	return clone, nil
}

// ArchiveProgram soft-deletes (or restores) a template.
func (s *programService) ArchiveProgram(ctx context.Context, trainerID, programID primitive.ObjectID, archived bool) error {
	err := s.templateRepo.SetArchived(ctx, programID, trainerID, archived)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrProgramNotFound
	}
	return err
}

// DeleteProgram removes a template row for good.
func (s *programService) DeleteProgram(ctx context.Context, trainerID, programID primitive.ObjectID) error {
	s.dropEditor(trainerID, programID)
	err := s.templateRepo.Delete(ctx, programID, trainerID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrProgramNotFound
	}
	return err
}

// --- Editor sessions ---

func editorKey(trainerID, programID primitive.ObjectID) string {
	return trainerID.Hex() + "/" + programID.Hex()
}

// editorFor returns the live editor session for a program, creating and
// loading one on first use.
func (s *programService) editorFor(ctx context.Context, trainerID, programID primitive.ObjectID) (*program.Editor, error) {
	key := editorKey(trainerID, programID)

	s.mu.Lock()
	ed, ok := s.editors[key]
	if !ok {
		load := func(ctx context.Context) (*domain.ProgramTemplate, error) {
			return s.GetProgram(ctx, trainerID, programID)
		}
		save := func(ctx context.Context, state domain.ProgramTemplateState) (*domain.ProgramTemplate, error) {
			return s.UpdateProgram(ctx, trainerID, programID, UpdateProgramInput{State: &state})
		}
		ed = program.NewEditor(load, save, s.debounce)
		s.editors[key] = ed
	}
	s.mu.Unlock()

	if ed.State() == program.EditorUnloaded {
		if err := ed.Load(ctx); err != nil {
			s.dropEditor(trainerID, programID)
			return nil, err
		}
	}
	return ed, nil
}

func (s *programService) dropEditor(trainerID, programID primitive.ObjectID) {
	s.mu.Lock()
	delete(s.editors, editorKey(trainerID, programID))
	s.mu.Unlock()
}

// ApplyOperation runs one engine transition inside the program's editor
// session.
func (s *programService) ApplyOperation(ctx context.Context, trainerID, programID primitive.ObjectID, op program.Op) (domain.ProgramTemplateState, error) {
	ed, err := s.editorFor(ctx, trainerID, programID)
	if err != nil {
		return domain.ProgramTemplateState{}, err
	}
	return ed.Apply(op)
}

// CloseEditor flushes pending edits and discards the session.
func (s *programService) CloseEditor(ctx context.Context, trainerID, programID primitive.ObjectID) error {
	s.mu.Lock()
	ed, ok := s.editors[editorKey(trainerID, programID)]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	err := ed.Flush(ctx)
	s.dropEditor(trainerID, programID)
	return err
}
