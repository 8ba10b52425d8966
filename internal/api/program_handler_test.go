package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fitcoach/coaching-app/internal/api"
	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/program"
	"fitcoach/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// stubProgramService keeps one in-memory state document per program id and
// runs operations against it directly.
type stubProgramService struct {
	states map[primitive.ObjectID]domain.ProgramTemplateState
}

func newStubProgramService() *stubProgramService {
	return &stubProgramService{states: make(map[primitive.ObjectID]domain.ProgramTemplateState)}
}

func (s *stubProgramService) addProgram(t *testing.T, weeks, phases int) primitive.ObjectID {
	t.Helper()
	state, err := program.NewState(weeks, phases, domain.DifficultyBeginner)
	require.NoError(t, err)
	id := primitive.NewObjectID()
	s.states[id] = state
	return id
}

func (s *stubProgramService) CreateProgram(_ context.Context, trainerID primitive.ObjectID, input service.CreateProgramInput) (*domain.ProgramTemplate, error) {
	if input.Title == "" {
		return nil, service.ErrEmptyTitle
	}
	state, err := program.NewState(input.DurationWeeks, input.PhaseCount, input.Difficulty)
	if err != nil {
		return nil, err
	}
	id := primitive.NewObjectID()
	s.states[id] = state
	return &domain.ProgramTemplate{ID: id, TrainerID: trainerID, Title: input.Title, DurationWeeks: state.DurationWeeks, Difficulty: input.Difficulty, State: state}, nil
}

func (s *stubProgramService) GetProgram(_ context.Context, _, programID primitive.ObjectID) (*domain.ProgramTemplate, error) {
	state, ok := s.states[programID]
	if !ok {
		return nil, service.ErrProgramNotFound
	}
	return &domain.ProgramTemplate{ID: programID, State: state}, nil
}

func (s *stubProgramService) ListPrograms(context.Context, primitive.ObjectID, bool) ([]domain.ProgramTemplate, error) {
	return nil, nil
}

func (s *stubProgramService) UpdateProgram(_ context.Context, _, programID primitive.ObjectID, _ service.UpdateProgramInput) (*domain.ProgramTemplate, error) {
	return s.GetProgram(context.Background(), primitive.NilObjectID, programID)
}

func (s *stubProgramService) DuplicateProgram(_ context.Context, _, programID primitive.ObjectID) (*domain.ProgramTemplate, error) {
	return s.GetProgram(context.Background(), primitive.NilObjectID, programID)
}

func (s *stubProgramService) ArchiveProgram(context.Context, primitive.ObjectID, primitive.ObjectID, bool) error {
	return nil
}

func (s *stubProgramService) DeleteProgram(context.Context, primitive.ObjectID, primitive.ObjectID) error {
	return nil
}

func (s *stubProgramService) ApplyOperation(_ context.Context, _, programID primitive.ObjectID, op program.Op) (domain.ProgramTemplateState, error) {
	state, ok := s.states[programID]
	if !ok {
		return domain.ProgramTemplateState{}, service.ErrProgramNotFound
	}
	next, err := op(state)
	if err != nil {
		return domain.ProgramTemplateState{}, err
	}
	s.states[programID] = next
	return next, nil
}

func (s *stubProgramService) CloseEditor(context.Context, primitive.ObjectID, primitive.ObjectID) error {
	return nil
}

func newOpsRouter(svc service.ProgramService, trainerID primitive.ObjectID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := api.NewProgramHandler(svc)
	authed := func(c *gin.Context) {
		c.Set(api.ContextUserIDKey, trainerID.Hex())
		c.Set(api.ContextUserRoleKey, domain.RoleTrainer)
	}
	router.POST("/programs", authed, handler.CreateProgram)
	router.POST("/programs/:programId/ops", authed, handler.ApplyStateOp)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestApplyStateOpAddPhase(t *testing.T) {
	svc := newStubProgramService()
	trainerID := primitive.NewObjectID()
	programID := svc.addProgram(t, 4, 1)
	router := newOpsRouter(svc, trainerID)

	rec := postJSON(t, router, "/programs/"+programID.Hex()+"/ops", gin.H{"type": "addPhase"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		State domain.ProgramTemplateState `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.State.Phases, 2)
}

func TestApplyStateOpUnknownType(t *testing.T) {
	svc := newStubProgramService()
	trainerID := primitive.NewObjectID()
	programID := svc.addProgram(t, 4, 1)
	router := newOpsRouter(svc, trainerID)

	rec := postJSON(t, router, "/programs/"+programID.Hex()+"/ops", gin.H{"type": "explodePhase"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApplyStateOpLastPhaseConflict(t *testing.T) {
	svc := newStubProgramService()
	trainerID := primitive.NewObjectID()
	programID := svc.addProgram(t, 2, 1)
	router := newOpsRouter(svc, trainerID)

	rec := postJSON(t, router, "/programs/"+programID.Hex()+"/ops", gin.H{"type": "removePhase", "phaseIndex": 0})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestApplyStateOpOutOfRangeIndex(t *testing.T) {
	svc := newStubProgramService()
	trainerID := primitive.NewObjectID()
	programID := svc.addProgram(t, 4, 2)
	router := newOpsRouter(svc, trainerID)

	rec := postJSON(t, router, "/programs/"+programID.Hex()+"/ops", gin.H{"type": "addWeek", "phaseIndex": 9})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApplyStateOpUnknownProgram(t *testing.T) {
	svc := newStubProgramService()
	router := newOpsRouter(svc, primitive.NewObjectID())

	rec := postJSON(t, router, "/programs/"+primitive.NewObjectID().Hex()+"/ops", gin.H{"type": "addPhase"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateProgramRequestValidation(t *testing.T) {
	svc := newStubProgramService()
	router := newOpsRouter(svc, primitive.NewObjectID())

	rec := postJSON(t, router, "/programs", gin.H{"title": "No duration", "difficulty": "beginner"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, router, "/programs", gin.H{"title": "Block", "durationWeeks": 6, "difficulty": "beginner"})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}
