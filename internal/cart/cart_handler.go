package cart

import (
	"net/http"

	autherrors "campus-marketplace/internal/auth/errors"
	carterrors "campus-marketplace/internal/cart/errors"
	"campus-marketplace/internal/pkg/apperror"
	"campus-marketplace/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(s Service, logger ...*zap.Logger) *Handler {
	l := zap.NewNop()
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return &Handler{service: s, logger: l.Named("cart.handler")}
}

func (h *Handler) userID(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id_validated")
	if userID == "" {
		h.writeServiceError(c, autherrors.ErrUnauthorized)
		return "", false
	}
	return userID, true
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	if httpErr.Status >= http.StatusInternalServerError {
		h.logger.Error("cart request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
}

// GET /cart
func (h *Handler) Get(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	res, err := h.service.GetCart(c.Request.Context(), userID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res, nil)
}

// GET /cart/count
func (h *Handler) Count(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	count, err := h.service.Count(c.Request.Context(), userID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, CartCountResponse{Count: count}, nil)
}

// POST /cart/add
func (h *Handler) AddItem(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("invalid add item body", zap.Error(err))
		h.writeServiceError(c, carterrors.ErrInvalidRequest)
		return
	}

	res, err := h.service.AddItem(c.Request.Context(), userID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, res, nil)
}

// DELETE /cart/:itemId, itemId is the product id of the line
func (h *Handler) RemoveItem(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	res, err := h.service.RemoveItem(c.Request.Context(), userID, c.Param("itemId"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res, nil)
}

// DELETE /cart
func (h *Handler) Clear(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	res, err := h.service.ClearCart(c.Request.Context(), userID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res, nil)
}
