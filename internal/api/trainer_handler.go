package api

import (
	"errors"
	"net/http"
	"time"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
)

type TrainerHandler struct {
	trainerService service.TrainerService
}

func NewTrainerHandler(trainerService service.TrainerService) *TrainerHandler {
	return &TrainerHandler{trainerService: trainerService}
}

// --- DTOs ---

type AddClientRequest struct {
	ClientEmail string `json:"clientEmail" binding:"required,email"`
}

type WorkoutRequest struct {
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description"`
	Difficulty  domain.Difficulty `json:"difficulty" binding:"omitempty,oneof=beginner intermediate advanced"`
	State       map[string]any    `json:"state"`
}

type WorkoutResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Difficulty  domain.Difficulty `json:"difficulty,omitempty"`
	State       map[string]any    `json:"state,omitempty"`
	HasVideo    bool              `json:"hasVideo"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func MapWorkoutToResponse(w *domain.Workout) WorkoutResponse {
	return WorkoutResponse{
		ID:          w.ID.Hex(),
		Title:       w.Title,
		Description: w.Description,
		Difficulty:  w.Difficulty,
		State:       w.State,
		HasVideo:    w.VideoObjectKey != "",
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

type AssignProgramRequest struct {
	ClientID  string `json:"clientId" binding:"required"`
	ProgramID string `json:"programId" binding:"required"`
	StartDate string `json:"startDate" binding:"required"`
}

type AssignWorkoutRequest struct {
	ClientID  string `json:"clientId" binding:"required"`
	WorkoutID string `json:"workoutId" binding:"required"`
	Date      string `json:"date" binding:"required"`
}

type AssignmentStatusRequest struct {
	Status domain.WorkoutAssignmentStatus `json:"status" binding:"required,oneof=assigned completed skipped"`
}

type VideoUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type VideoConfirmRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

// --- Client Management ---

// AddClientByEmail handles POST /trainer/clients.
func (h *TrainerHandler) AddClientByEmail(c *gin.Context) {
	var req AddClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}

	client, err := h.trainerService.AddClientByEmail(c.Request.Context(), trainerID, req.ClientEmail)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrClientNotRole), errors.Is(err, service.ErrClientAlreadyAssigned):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to add client.")
		}
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(client))
}

// GetManagedClients handles GET /trainer/clients.
func (h *TrainerHandler) GetManagedClients(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}

	clients, err := h.trainerService.GetManagedClients(c.Request.Context(), trainerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve managed clients.")
		return
	}

	responses := make([]UserResponse, 0, len(clients))
	for i := range clients {
		responses = append(responses, MapUserToResponse(&clients[i]))
	}
	c.JSON(http.StatusOK, responses)
}

// --- Workout Library ---

// CreateWorkout handles POST /trainer/workouts.
func (h *TrainerHandler) CreateWorkout(c *gin.Context) {
	var req WorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}

	workout, err := h.trainerService.CreateWorkout(c.Request.Context(), &domain.Workout{
		TrainerID:   trainerID,
		Title:       req.Title,
		Description: req.Description,
		Difficulty:  req.Difficulty,
		State:       req.State,
	})
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to create workout.")
		return
	}
	c.JSON(http.StatusCreated, MapWorkoutToResponse(workout))
}

// ListWorkouts handles GET /trainer/workouts.
func (h *TrainerHandler) ListWorkouts(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}

	workouts, err := h.trainerService.ListWorkouts(c.Request.Context(), trainerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list workouts.")
		return
	}

	responses := make([]WorkoutResponse, 0, len(workouts))
	for i := range workouts {
		responses = append(responses, MapWorkoutToResponse(&workouts[i]))
	}
	c.JSON(http.StatusOK, responses)
}

// GetWorkout handles GET /trainer/workouts/:workoutId.
func (h *TrainerHandler) GetWorkout(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "workoutId")
	if !ok {
		return
	}

	workout, err := h.trainerService.GetWorkout(c.Request.Context(), trainerID, workoutID)
	if err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve workout.")
		}
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// UpdateWorkout handles PUT /trainer/workouts/:workoutId.
func (h *TrainerHandler) UpdateWorkout(c *gin.Context) {
	var req WorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "workoutId")
	if !ok {
		return
	}

	workout, err := h.trainerService.UpdateWorkout(c.Request.Context(), &domain.Workout{
		ID:          workoutID,
		TrainerID:   trainerID,
		Title:       req.Title,
		Description: req.Description,
		Difficulty:  req.Difficulty,
		State:       req.State,
	})
	if err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update workout.")
		}
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// DeleteWorkout handles DELETE /trainer/workouts/:workoutId.
func (h *TrainerHandler) DeleteWorkout(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "workoutId")
	if !ok {
		return
	}

	if err := h.trainerService.DeleteWorkout(c.Request.Context(), trainerID, workoutID); err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete workout.")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Assignments ---

// AssignProgram handles POST /trainer/assignments/programs.
func (h *TrainerHandler) AssignProgram(c *gin.Context) {
	var req AssignProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	clientID, err := parseObjectID(req.ClientID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid clientId format.")
		return
	}
	programID, err := parseObjectID(req.ProgramID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid programId format.")
		return
	}

	assignment, err := h.trainerService.AssignProgram(c.Request.Context(), trainerID, clientID, programID, req.StartDate)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStartDate):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrClientNotFound), errors.Is(err, service.ErrProgramNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrClientNotManaged):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to assign program.")
		}
		return
	}
	c.JSON(http.StatusCreated, assignment)
}

// AssignWorkout handles POST /trainer/assignments/workouts.
func (h *TrainerHandler) AssignWorkout(c *gin.Context) {
	var req AssignWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	clientID, err := parseObjectID(req.ClientID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid clientId format.")
		return
	}
	workoutID, err := parseObjectID(req.WorkoutID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workoutId format.")
		return
	}

	assignment, err := h.trainerService.AssignWorkoutForDay(c.Request.Context(), trainerID, clientID, workoutID, req.Date)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStartDate):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrClientNotFound), errors.Is(err, service.ErrWorkoutNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrClientNotManaged):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to assign workout.")
		}
		return
	}
	c.JSON(http.StatusCreated, assignment)
}

// UnassignProgram handles DELETE /trainer/assignments/programs/:clientId.
func (h *TrainerHandler) UnassignProgram(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	clientID, ok := pathObjectID(c, "clientId")
	if !ok {
		return
	}

	if err := h.trainerService.UnassignProgram(c.Request.Context(), trainerID, clientID); err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrClientNotManaged):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to unassign program.")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// SetAssignmentStatus handles PATCH /trainer/assignments/workouts/:assignmentId/status.
func (h *TrainerHandler) SetAssignmentStatus(c *gin.Context) {
	var req AssignmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	assignmentID, ok := pathObjectID(c, "assignmentId")
	if !ok {
		return
	}

	if err := h.trainerService.SetWorkoutAssignmentStatus(c.Request.Context(), trainerID, assignmentID, req.Status); err != nil {
		switch {
		case errors.Is(err, service.ErrAssignmentNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidAssignmentStatus):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update assignment status.")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Demo video media ---

// RequestVideoUpload handles POST /trainer/workouts/:workoutId/video/upload-url.
func (h *TrainerHandler) RequestVideoUpload(c *gin.Context) {
	var req VideoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "workoutId")
	if !ok {
		return
	}

	ticket, err := h.trainerService.RequestVideoUploadURL(c.Request.Context(), trainerID, workoutID, req.ContentType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidVideoType):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrWorkoutNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to generate upload URL.")
		}
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// ConfirmVideoUpload handles POST /trainer/workouts/:workoutId/video/confirm.
func (h *TrainerHandler) ConfirmVideoUpload(c *gin.Context) {
	var req VideoConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "workoutId")
	if !ok {
		return
	}

	if err := h.trainerService.ConfirmVideoUpload(c.Request.Context(), trainerID, workoutID, req.ObjectKey); err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to confirm upload.")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// GetVideoURL handles GET /trainer/workouts/:workoutId/video/url.
func (h *TrainerHandler) GetVideoURL(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "workoutId")
	if !ok {
		return
	}

	url, err := h.trainerService.GetVideoDownloadURL(c.Request.Context(), trainerID, workoutID)
	if err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to generate download URL.")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
