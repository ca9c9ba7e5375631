package assistant

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medpraxis/practice-api/internal/handler"
	"github.com/medpraxis/practice-api/internal/middleware"
	"github.com/medpraxis/practice-api/internal/model"
	"github.com/medpraxis/practice-api/internal/service/assistant"
)

type Handler struct {
	svc  *assistant.Service
	auth *middleware.AuthMiddleware
}

func NewHandler(svc *assistant.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{svc: svc, auth: auth}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/assistants", h.auth.RequireRole(model.RoleDoctor), h.CreateAssistant)
	r.GET("/doctors/:id/assistants", h.auth.RequireRole(model.RoleDoctor, model.RoleHospitalAdmin), h.ListAssistants)
}

// CreateAssistant registers a pending assistant for the calling doctor.
func (h *Handler) CreateAssistant(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
		return
	}

	var req model.CreateAssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	profile, err := h.svc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(profile))
}

func (h *Handler) ListAssistants(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	// doctors may only read their own assistant roster
	if actor.Role == model.RoleDoctor && doctorID != actor.ProfileID {
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("permission denied"))
		return
	}

	assistants, err := h.svc.ListForDoctor(c.Request.Context(), doctorID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(assistants))
}
