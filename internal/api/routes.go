package api

import (
	"net/http"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	programService service.ProgramService,
	trainerService service.TrainerService,
	scheduleService service.ScheduleService,
) {
	authHandler := NewAuthHandler(authService)
	programHandler := NewProgramHandler(programService)
	trainerHandler := NewTrainerHandler(trainerService)
	scheduleHandler := NewScheduleHandler(scheduleService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		trainerGroup := protected.Group("/trainer")
		trainerGroup.Use(RoleMiddleware(domain.RoleTrainer))
		{
			// Client roster
			trainerGroup.POST("/clients", trainerHandler.AddClientByEmail)
			trainerGroup.GET("/clients", trainerHandler.GetManagedClients)

			// Workout library
			trainerGroup.POST("/workouts", trainerHandler.CreateWorkout)
			trainerGroup.GET("/workouts", trainerHandler.ListWorkouts)
			trainerGroup.GET("/workouts/:workoutId", trainerHandler.GetWorkout)
			trainerGroup.PUT("/workouts/:workoutId", trainerHandler.UpdateWorkout)
			trainerGroup.DELETE("/workouts/:workoutId", trainerHandler.DeleteWorkout)

			// Demo video media
			trainerGroup.POST("/workouts/:workoutId/video/upload-url", trainerHandler.RequestVideoUpload)
			trainerGroup.POST("/workouts/:workoutId/video/confirm", trainerHandler.ConfirmVideoUpload)
			trainerGroup.GET("/workouts/:workoutId/video/url", trainerHandler.GetVideoURL)

			// Program templates
			trainerGroup.POST("/programs", programHandler.CreateProgram)
			trainerGroup.GET("/programs", programHandler.ListPrograms)
			trainerGroup.GET("/programs/:programId", programHandler.GetProgram)
			trainerGroup.PUT("/programs/:programId", programHandler.UpdateProgram)
			trainerGroup.DELETE("/programs/:programId", programHandler.DeleteProgram)
			trainerGroup.POST("/programs/:programId/duplicate", programHandler.DuplicateProgram)
			trainerGroup.POST("/programs/:programId/archive", programHandler.ArchiveProgram)

			// Structural edits go through the program's editor session.
			trainerGroup.POST("/programs/:programId/ops", programHandler.ApplyStateOp)
			trainerGroup.POST("/programs/:programId/close", programHandler.CloseEditor)

			// Assignments
			trainerGroup.POST("/assignments/programs", trainerHandler.AssignProgram)
			trainerGroup.DELETE("/assignments/programs/:clientId", trainerHandler.UnassignProgram)
			trainerGroup.POST("/assignments/workouts", trainerHandler.AssignWorkout)
			trainerGroup.PATCH("/assignments/workouts/:assignmentId/status", trainerHandler.SetAssignmentStatus)

			// Roster schedule
			trainerGroup.POST("/schedule/today", scheduleHandler.Today)
		}
	}
}
