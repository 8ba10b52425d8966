package api

import (
	"net/http"
	"time"

	"fitcoach/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduleHandler holds the schedule service dependency.
type ScheduleHandler struct {
	scheduleService service.ScheduleService
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(scheduleService service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

type TodayRequest struct {
	ClientIDs []string `json:"clientIds" binding:"required,min=1,dive,required"`
}

type TodayResponse struct {
	Date  string                       `json:"date"`
	Items map[string]service.TodayItem `json:"items"`
}

// Today handles POST /trainer/schedule/today: one batched lookup of today's
// workout for a set of clients, shaped for the trainer's roster screen.
func (h *ScheduleHandler) Today(c *gin.Context) {
	var req TodayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}

	clientIDs := make([]primitive.ObjectID, 0, len(req.ClientIDs))
	for _, raw := range req.ClientIDs {
		id, err := parseObjectID(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid client id: "+raw)
			return
		}
		clientIDs = append(clientIDs, id)
	}

	now := time.Now()
	items, err := h.scheduleService.TodayForClients(c.Request.Context(), trainerID, clientIDs, now)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve today's schedule.")
		return
	}

	c.JSON(http.StatusOK, TodayResponse{
		Date:  now.UTC().Format("2006-01-02"),
		Items: items,
	})
}
