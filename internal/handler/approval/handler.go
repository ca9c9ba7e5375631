package approval

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medpraxis/practice-api/internal/handler"
	"github.com/medpraxis/practice-api/internal/middleware"
	"github.com/medpraxis/practice-api/internal/model"
	"github.com/medpraxis/practice-api/internal/service/approval"
)

// Handler exposes the approval workflow: approve/reject actions per gate,
// candidate listings for the approver dashboards, and the super-admin
// override.
type Handler struct {
	svc  *approval.Service
	auth *middleware.AuthMiddleware
}

func NewHandler(svc *approval.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{svc: svc, auth: auth}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	superAdmin := h.auth.RequireRole() // super_admin passes any role gate
	adminOrAbove := h.auth.RequireRole(model.RoleHospitalAdmin)

	admins := r.Group("/hospital-admins", superAdmin)
	{
		admins.GET("", h.ListHospitalAdmins)
		admins.POST("/:id/approve", h.decideHospitalAdmin(model.DecisionApprove))
		admins.POST("/:id/reject", h.decideHospitalAdmin(model.DecisionReject))
	}

	hospitals := r.Group("/hospitals", superAdmin)
	{
		hospitals.POST("/:id/approve", h.decideHospital(model.DecisionApprove))
		hospitals.POST("/:id/reject", h.decideHospital(model.DecisionReject))
	}

	doctors := r.Group("/doctors", adminOrAbove)
	{
		doctors.GET("", h.ListDoctors)
		doctors.POST("/:id/approve", h.decideDoctor(model.DecisionApprove))
		doctors.POST("/:id/reject", h.decideDoctor(model.DecisionReject))
	}

	assistants := r.Group("/assistants")
	{
		assistants.GET("", adminOrAbove, h.ListAssistants)
		decide := h.auth.RequireRole(model.RoleHospitalAdmin, model.RoleDoctor)
		assistants.POST("/:id/approve", decide, h.decideAssistant(model.DecisionApprove))
		assistants.POST("/:id/reject", decide, h.decideAssistant(model.DecisionReject))
	}

	r.PUT("/profiles/:id/approval", superAdmin, h.OverrideApproval)
}

type decideFunc func(c *gin.Context, actor model.Actor, id uuid.UUID, decision model.Decision) error

func (h *Handler) decide(decision model.Decision, fn decideFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.GetActor(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
			return
		}

		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid ID"))
			return
		}

		if err := fn(c, actor, id, decision); err != nil {
			c.Error(err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func (h *Handler) decideHospitalAdmin(decision model.Decision) gin.HandlerFunc {
	return h.decide(decision, func(c *gin.Context, actor model.Actor, id uuid.UUID, d model.Decision) error {
		return h.svc.DecideHospitalAdmin(c.Request.Context(), actor, id, d)
	})
}

func (h *Handler) decideHospital(decision model.Decision) gin.HandlerFunc {
	return h.decide(decision, func(c *gin.Context, actor model.Actor, id uuid.UUID, d model.Decision) error {
		return h.svc.DecideHospital(c.Request.Context(), actor, id, d)
	})
}

func (h *Handler) decideDoctor(decision model.Decision) gin.HandlerFunc {
	return h.decide(decision, func(c *gin.Context, actor model.Actor, id uuid.UUID, d model.Decision) error {
		return h.svc.DecideDoctor(c.Request.Context(), actor, id, d)
	})
}

func (h *Handler) decideAssistant(decision model.Decision) gin.HandlerFunc {
	return h.decide(decision, func(c *gin.Context, actor model.Actor, id uuid.UUID, d model.Decision) error {
		return h.svc.DecideAssistant(c.Request.Context(), actor, id, d)
	})
}

func (h *Handler) ListHospitalAdmins(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	admins, err := h.svc.ListHospitalAdmins(c.Request.Context(), actor, model.ApprovalStatus(c.Query("status")))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(admins))
}

func (h *Handler) ListDoctors(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	doctors, err := h.svc.ListDoctors(c.Request.Context(), actor, model.ApprovalStatus(c.Query("status")))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctors))
}

func (h *Handler) ListAssistants(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	assistants, err := h.svc.ListAssistants(c.Request.Context(), actor, model.ApprovalStatus(c.Query("status")))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(assistants))
}

func (h *Handler) OverrideApproval(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid profile ID"))
		return
	}

	var req model.OverrideApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.svc.OverrideProfileStatus(c.Request.Context(), actor, id, req.Status); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
