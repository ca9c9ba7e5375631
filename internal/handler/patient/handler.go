package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medpraxis/practice-api/internal/handler"
	"github.com/medpraxis/practice-api/internal/middleware"
	"github.com/medpraxis/practice-api/internal/model"
	"github.com/medpraxis/practice-api/internal/service/patient"
)

type Handler struct {
	svc  *patient.Service
	auth *middleware.AuthMiddleware
}

func NewHandler(svc *patient.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{svc: svc, auth: auth}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.auth.RequireRole(model.RoleDoctorAssistant), h.CreatePatient)
		patients.GET("/search", h.auth.RequireRole(model.RoleDoctor, model.RoleDoctorAssistant, model.RoleHospitalAdmin), h.SearchPatient)
		patients.GET("", h.auth.RequireRole(model.RoleDoctor, model.RoleHospitalAdmin), h.ListPatients)
	}
}

// CreatePatient reconciles a submitted patient identity. 201 when a new
// identity was created, 200 when the CNIC was already known (already_exists
// or linked).
func (h *Handler) CreatePatient(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
		return
	}

	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	result, err := h.svc.Register(c.Request.Context(), actor, &req)
	if err != nil {
		c.Error(err)
		return
	}

	code := http.StatusOK
	if result.Status == model.ReconciliationCreated {
		code = http.StatusCreated
	}
	c.JSON(code, result)
}

func (h *Handler) SearchPatient(c *gin.Context) {
	cnic := c.Query("cnic")
	if cnic == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("cnic query parameter is required"))
		return
	}

	result, err := h.svc.Search(c.Request.Context(), cnic)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) ListPatients(c *gin.Context) {
	hospitalID, err := uuid.Parse(c.Query("hospital_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid hospital ID"))
		return
	}

	patients, err := h.svc.ListByHospital(c.Request.Context(), hospitalID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}
