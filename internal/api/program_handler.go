package api

import (
	"errors"
	"net/http"
	"time"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/program"
	"fitcoach/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgramHandler holds the program service dependency.
type ProgramHandler struct {
	programService service.ProgramService
}

// NewProgramHandler creates a new ProgramHandler.
func NewProgramHandler(programService service.ProgramService) *ProgramHandler {
	return &ProgramHandler{programService: programService}
}

// --- DTOs ---

type CreateProgramRequest struct {
	Title         string            `json:"title" binding:"required"`
	Description   string            `json:"description"`
	DurationWeeks int               `json:"durationWeeks" binding:"required,min=1"`
	PhaseCount    int               `json:"phaseCount" binding:"omitempty,min=1"`
	Difficulty    domain.Difficulty `json:"difficulty" binding:"required,oneof=beginner intermediate advanced"`
}

type UpdateProgramRequest struct {
	Title      *string                      `json:"title,omitempty"`
	Difficulty *domain.Difficulty           `json:"difficulty,omitempty"`
	State      *domain.ProgramTemplateState `json:"state,omitempty"`
}

type ArchiveProgramRequest struct {
	Archived bool `json:"archived"`
}

type ProgramResponse struct {
	ID            string                      `json:"id"`
	Title         string                      `json:"title"`
	Description   string                      `json:"description,omitempty"`
	DurationWeeks int                         `json:"durationWeeks"`
	Difficulty    domain.Difficulty           `json:"difficulty"`
	Archived      bool                        `json:"archived"`
	State         domain.ProgramTemplateState `json:"state"`
	CreatedAt     time.Time                   `json:"createdAt"`
	UpdatedAt     time.Time                   `json:"updatedAt"`
	LastEditedAt  time.Time                   `json:"lastEditedAt"`
}

func MapProgramToResponse(tpl *domain.ProgramTemplate) ProgramResponse {
	return ProgramResponse{
		ID:            tpl.ID.Hex(),
		Title:         tpl.Title,
		Description:   tpl.Description,
		DurationWeeks: tpl.DurationWeeks,
		Difficulty:    tpl.Difficulty,
		Archived:      tpl.Archived,
		State:         tpl.State,
		CreatedAt:     tpl.CreatedAt,
		UpdatedAt:     tpl.UpdatedAt,
		LastEditedAt:  tpl.LastEditedAt,
	}
}

// StateOpRequest is one structural edit addressed to a program's editor
// session. Type selects the operation; the remaining fields carry its
// arguments and are checked per type.
type StateOpRequest struct {
	Type string `json:"type" binding:"required"`

	PhaseIndex   int            `json:"phaseIndex"`
	WeekIndex    int            `json:"weekIndex"`
	DayOrder     int            `json:"dayOrder"`
	FromIndex    int            `json:"fromIndex"`
	ToIndex      int            `json:"toIndex"`
	WorkoutIndex int            `json:"workoutIndex"`
	ToDayOrder   int            `json:"toDayOrder"`
	WorkoutID    string         `json:"workoutId,omitempty"`
	Title        string         `json:"title,omitempty"`
	WorkoutState map[string]any `json:"workoutState,omitempty"`
}

// toOp maps the request to an engine operation.
func (r StateOpRequest) toOp() (program.Op, bool) {
	switch r.Type {
	case "addPhase":
		return func(s domain.ProgramTemplateState) (domain.ProgramTemplateState, error) {
			return program.AddPhase(s), nil
		}, true
	case "removePhase":
		return func(s domain.ProgramTemplateState) (domain.ProgramTemplateState, error) {
			return program.RemovePhase(s, r.PhaseIndex)
		}, true
	case "addWeek":
		return func(s domain.ProgramTemplateState) (domain.ProgramTemplateState, error) {
			return program.AddWeek(s, r.PhaseIndex)
		}, true
	case "removeWeek":
		return func(s domain.ProgramTemplateState) (domain.ProgramTemplateState, error) {
			return program.RemoveWeek(s, r.PhaseIndex, r.WeekIndex)
		}, true
	case "duplicateWeek":
		return func(s domain.ProgramTemplateState) (domain.ProgramTemplateState, error) {
			return program.DuplicateWeek(s, r.PhaseIndex, r.WeekIndex)
		}, true
	case "reorderPhases":
		return func(s domain.ProgramTemplateState) (domain.ProgramTemplateState, error) {
			return program.ReorderPhases(s, r.FromIndex, r.ToIndex)
		}, true
	case "reorderWeeks":
		return func(s domain.ProgramTemplateState) (domain.ProgramTemplateState, error) {
			return program.ReorderWeeks(s, r.PhaseIndex, r.FromIndex, r.ToIndex)
		}, true
	case "addTableWorkout":
		return func(s domain.ProgramTemplateState) (domain.ProgramTemplateState, error) {
			return program.AddTableWorkout(s, r.PhaseIndex, r.WeekIndex, r.DayOrder, r.WorkoutID)
		}, true
	case "addInlineWorkout":
		return func(s domain.ProgramTemplateState) (domain.ProgramTemplateState, error) {
			return program.AddInlineWorkout(s, r.PhaseIndex, r.WeekIndex, r.DayOrder, r.Title, r.WorkoutState)
		}, true
	case "removeWorkout":
		return func(s domain.ProgramTemplateState) (domain.ProgramTemplateState, error) {
			return program.RemoveWorkoutAt(s, r.PhaseIndex, r.WeekIndex, r.DayOrder, r.WorkoutIndex)
		}, true
	case "moveWorkout":
		return func(s domain.ProgramTemplateState) (domain.ProgramTemplateState, error) {
			return program.MoveWorkout(s, r.PhaseIndex, r.WeekIndex, r.DayOrder, r.WorkoutIndex, r.ToDayOrder)
		}, true
	}
	return nil, false
}

// isEngineRejection reports whether the error is an argument rejection from
// the engine, as opposed to an infrastructure failure.
func isEngineRejection(err error) bool {
	for _, sentinel := range []error{
		program.ErrPhaseIndexOutOfRange,
		program.ErrWeekIndexOutOfRange,
		program.ErrDayOutOfRange,
		program.ErrWorkoutIDRequired,
		program.ErrInlineTitleRequired,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// --- Handler Methods ---

// CreateProgram handles POST /trainer/programs.
func (h *ProgramHandler) CreateProgram(c *gin.Context) {
	var req CreateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}

	tpl, err := h.programService.CreateProgram(c.Request.Context(), trainerID, service.CreateProgramInput{
		Title:         req.Title,
		Description:   req.Description,
		DurationWeeks: req.DurationWeeks,
		PhaseCount:    req.PhaseCount,
		Difficulty:    req.Difficulty,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyTitle),
			errors.Is(err, service.ErrInvalidDifficulty),
			errors.Is(err, program.ErrInvalidDuration),
			errors.Is(err, program.ErrInvalidPhaseCount),
			errors.Is(err, program.ErrDurationTooShort):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to create program.")
		}
		return
	}
	c.JSON(http.StatusCreated, MapProgramToResponse(tpl))
}

// ListPrograms handles GET /trainer/programs.
func (h *ProgramHandler) ListPrograms(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	includeArchived := c.Query("includeArchived") == "true"

	programs, err := h.programService.ListPrograms(c.Request.Context(), trainerID, includeArchived)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list programs.")
		return
	}

	responses := make([]ProgramResponse, 0, len(programs))
	for i := range programs {
		responses = append(responses, MapProgramToResponse(&programs[i]))
	}
	c.JSON(http.StatusOK, responses)
}

// GetProgram handles GET /trainer/programs/:programId.
func (h *ProgramHandler) GetProgram(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	programID, ok := pathObjectID(c, "programId")
	if !ok {
		return
	}

	tpl, err := h.programService.GetProgram(c.Request.Context(), trainerID, programID)
	if err != nil {
		if errors.Is(err, service.ErrProgramNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve program.")
		}
		return
	}
	c.JSON(http.StatusOK, MapProgramToResponse(tpl))
}

// UpdateProgram handles PUT /trainer/programs/:programId.
func (h *ProgramHandler) UpdateProgram(c *gin.Context) {
	var req UpdateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	programID, ok := pathObjectID(c, "programId")
	if !ok {
		return
	}

	tpl, err := h.programService.UpdateProgram(c.Request.Context(), trainerID, programID, service.UpdateProgramInput{
		Title:      req.Title,
		Difficulty: req.Difficulty,
		State:      req.State,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProgramNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrEmptyTitle), errors.Is(err, service.ErrInvalidDifficulty):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update program.")
		}
		return
	}
	c.JSON(http.StatusOK, MapProgramToResponse(tpl))
}

// DuplicateProgram handles POST /trainer/programs/:programId/duplicate.
func (h *ProgramHandler) DuplicateProgram(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	programID, ok := pathObjectID(c, "programId")
	if !ok {
		return
	}

	clone, err := h.programService.DuplicateProgram(c.Request.Context(), trainerID, programID)
	if err != nil {
		if errors.Is(err, service.ErrProgramNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to duplicate program.")
		}
		return
	}
	c.JSON(http.StatusCreated, MapProgramToResponse(clone))
}

// ArchiveProgram handles POST /trainer/programs/:programId/archive.
func (h *ProgramHandler) ArchiveProgram(c *gin.Context) {
	var req ArchiveProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	programID, ok := pathObjectID(c, "programId")
	if !ok {
		return
	}

	if err := h.programService.ArchiveProgram(c.Request.Context(), trainerID, programID, req.Archived); err != nil {
		if errors.Is(err, service.ErrProgramNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to archive program.")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"archived": req.Archived})
}

// DeleteProgram handles DELETE /trainer/programs/:programId.
func (h *ProgramHandler) DeleteProgram(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	programID, ok := pathObjectID(c, "programId")
	if !ok {
		return
	}

	if err := h.programService.DeleteProgram(c.Request.Context(), trainerID, programID); err != nil {
		if errors.Is(err, service.ErrProgramNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete program.")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// ApplyStateOp handles POST /trainer/programs/:programId/ops. The edit is
// applied to the in-memory editor session and persisted on a debounced timer;
// the response carries the post-edit document.
func (h *ProgramHandler) ApplyStateOp(c *gin.Context) {
	var req StateOpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	programID, ok := pathObjectID(c, "programId")
	if !ok {
		return
	}

	op, known := req.toOp()
	if !known {
		abortWithError(c, http.StatusBadRequest, "Unknown operation type: "+req.Type)
		return
	}

	state, err := h.programService.ApplyOperation(c.Request.Context(), trainerID, programID, op)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProgramNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, program.ErrLastPhase), errors.Is(err, program.ErrLastWeek):
			abortWithError(c, http.StatusConflict, err.Error())
		case isEngineRejection(err):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, program.ErrEditorLoading), errors.Is(err, program.ErrEditorNotReady):
			abortWithError(c, http.StatusServiceUnavailable, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to apply operation.")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

// CloseEditor handles POST /trainer/programs/:programId/close. Pending edits
// are flushed before the session is discarded.
func (h *ProgramHandler) CloseEditor(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	programID, ok := pathObjectID(c, "programId")
	if !ok {
		return
	}

	if err := h.programService.CloseEditor(c.Request.Context(), trainerID, programID); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to save pending edits.")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Shared helpers ---

// trainerIDFromContext resolves the authenticated trainer's ObjectID. On
// failure the request is aborted and false is returned.
func trainerIDFromContext(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainer from token.")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainer ID format in token.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// parseObjectID parses an ObjectID carried in a request body.
func parseObjectID(hex string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(hex)
}

// pathObjectID parses an ObjectID path parameter, aborting on failure.
func pathObjectID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format.")
		return primitive.NilObjectID, false
	}
	return id, true
}
