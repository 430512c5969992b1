package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/vijanahub/mentor-service/internal/model"
	"github.com/vijanahub/mentor-service/internal/service"
)

// Handler exposes the scheduling engine over HTTP. It stays thin: parse,
// delegate, map errors. Authentication is handled upstream by the gateway.
type Handler struct {
	sessions     *service.SessionService
	reviews      *service.ReviewService
	availability *service.AvailabilityService
	pool         *pgxpool.Pool
	logger       *zap.Logger
}

func NewHandler(
	sessions *service.SessionService,
	reviews *service.ReviewService,
	availability *service.AvailabilityService,
	pool *pgxpool.Pool,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		sessions:     sessions,
		reviews:      reviews,
		availability: availability,
		pool:         pool,
		logger:       logger,
	}
}

type bookSessionRequest struct {
	MentorID        string    `json:"mentor_id" binding:"required,uuid"`
	MenteeID        string    `json:"mentee_id" binding:"required,uuid"`
	StartDateTime   time.Time `json:"start_datetime" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"required"`
	Topic           string    `json:"topic" binding:"required"`
}

func (h *Handler) BookSession(c *gin.Context) {
	var req bookSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	mentorID, _ := uuid.Parse(req.MentorID)
	menteeID, _ := uuid.Parse(req.MenteeID)

	session, err := h.sessions.BookSession(c.Request.Context(), service.BookingRequest{
		MentorID:        mentorID,
		MenteeID:        menteeID,
		StartDateTime:   req.StartDateTime,
		DurationMinutes: req.DurationMinutes,
		Topic:           req.Topic,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

func (h *Handler) GetSession(c *gin.Context) {
	sessionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	session, err := h.sessions.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *Handler) GetUserSessions(c *gin.Context) {
	userID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.sessions.GetUserSessions(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type actorRequest struct {
	ActorID string `json:"actor_id" binding:"required,uuid"`
}

func (h *Handler) StartSession(c *gin.Context) {
	sessionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req actorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	actorID, _ := uuid.Parse(req.ActorID)

	session, err := h.sessions.StartSession(c.Request.Context(), sessionID, actorID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

type completeSessionRequest struct {
	ActorID string `json:"actor_id" binding:"required,uuid"`
	Notes   string `json:"notes"`
}

func (h *Handler) CompleteSession(c *gin.Context) {
	sessionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req completeSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	actorID, _ := uuid.Parse(req.ActorID)

	session, err := h.sessions.CompleteSession(c.Request.Context(), sessionID, actorID, req.Notes)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

type cancelSessionRequest struct {
	ActorID string `json:"actor_id" binding:"required,uuid"`
	Reason  string `json:"reason"`
}

func (h *Handler) CancelSession(c *gin.Context) {
	sessionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req cancelSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	actorID, _ := uuid.Parse(req.ActorID)

	session, err := h.sessions.CancelSession(c.Request.Context(), sessionID, actorID, req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *Handler) MarkNoShow(c *gin.Context) {
	sessionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req actorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	actorID, _ := uuid.Parse(req.ActorID)

	session, err := h.sessions.MarkNoShow(c.Request.Context(), sessionID, actorID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

type submitReviewRequest struct {
	ReviewerID string `json:"reviewer_id" binding:"required,uuid"`
	Rating     int    `json:"rating" binding:"required"`
	Comment    string `json:"comment"`
}

func (h *Handler) SubmitReview(c *gin.Context) {
	sessionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	reviewerID, _ := uuid.Parse(req.ReviewerID)

	review, err := h.reviews.SubmitReview(c.Request.Context(), sessionID, reviewerID, req.Rating, req.Comment)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

type availabilitySlotRequest struct {
	Weekday     int   `json:"weekday"`
	StartMinute int   `json:"start_minute"`
	EndMinute   int   `json:"end_minute"`
	IsActive    *bool `json:"is_active"`
}

type setAvailabilityRequest struct {
	Slots []availabilitySlotRequest `json:"slots" binding:"required"`
}

func (h *Handler) SetAvailability(c *gin.Context) {
	mentorID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req setAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	slots := make([]model.AvailabilitySlot, 0, len(req.Slots))
	for _, s := range req.Slots {
		active := true
		if s.IsActive != nil {
			active = *s.IsActive
		}
		slots = append(slots, model.AvailabilitySlot{
			Weekday:     time.Weekday(s.Weekday),
			StartMinute: s.StartMinute,
			EndMinute:   s.EndMinute,
			IsActive:    active,
		})
	}

	saved, err := h.availability.SetAvailability(c.Request.Context(), mentorID, slots)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"slots": saved})
}

func (h *Handler) GetAvailability(c *gin.Context) {
	mentorID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	slots, err := h.availability.GetAvailability(c.Request.Context(), mentorID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

func (h *Handler) Health(c *gin.Context) {
	if err := h.pool.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError maps domain errors to HTTP statuses. Validation failures are
// client-correctable; infra failures stay 500 without leaking internals.
func (h *Handler) respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Message, "rule": verr.Rule})
		return
	}

	var nfe *service.NotFoundError
	if errors.As(err, &nfe) {
		c.JSON(http.StatusNotFound, gin.H{"error": nfe.Error()})
		return
	}

	h.logger.Error("Request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func pathUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return uuid.Nil, false
	}
	return id, true
}
