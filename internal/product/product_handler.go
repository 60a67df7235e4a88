package product

import (
	"net/http"

	"campus-marketplace/internal/pkg/apperror"
	"campus-marketplace/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{service: s}
}

// GetByID godoc
// GET /products/:id
func (h *Handler) GetByID(c *gin.Context) {
	res, err := h.service.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
		return
	}

	response.Success(c, http.StatusOK, res, nil)
}
