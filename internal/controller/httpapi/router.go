package httpapi

import "github.com/gin-gonic/gin"

// NewRouter wires all routes onto a fresh engine.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	router.GET("/healthz", h.Health)

	api := router.Group("/api/v1")
	{
		api.POST("/sessions", h.BookSession)
		api.GET("/sessions/:id", h.GetSession)
		api.POST("/sessions/:id/start", h.StartSession)
		api.POST("/sessions/:id/complete", h.CompleteSession)
		api.POST("/sessions/:id/cancel", h.CancelSession)
		api.POST("/sessions/:id/no-show", h.MarkNoShow)
		api.POST("/sessions/:id/reviews", h.SubmitReview)

		api.GET("/users/:id/sessions", h.GetUserSessions)

		api.PUT("/mentors/:id/availability", h.SetAvailability)
		api.GET("/mentors/:id/availability", h.GetAvailability)
	}

	return router
}
