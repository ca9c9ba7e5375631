package hospital

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medpraxis/practice-api/internal/handler"
	"github.com/medpraxis/practice-api/internal/model"
	"github.com/medpraxis/practice-api/internal/service/hospital"
)

type Handler struct {
	svc *hospital.Service
}

func NewHandler(svc *hospital.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the public hospital reads. Registration forms need
// the approved-hospital list before any authentication exists.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	hospitals := r.Group("/hospitals")
	{
		hospitals.GET("", h.ListHospitals)
		hospitals.GET("/:id", h.GetHospital)
	}
}

// ListHospitals is unauthenticated, so only approved hospitals are exposed;
// pending and rejected ones are visible through the approval dashboards only.
func (h *Handler) ListHospitals(c *gin.Context) {
	hospitals, err := h.svc.List(c.Request.Context(), model.ApprovalStatusApproved)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(hospitals))
}

func (h *Handler) GetHospital(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid hospital ID"))
		return
	}

	hospital, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(hospital))
}
