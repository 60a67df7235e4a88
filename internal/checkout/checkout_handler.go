package checkout

import (
	"net/http"

	autherrors "campus-marketplace/internal/auth/errors"
	checkouterrors "campus-marketplace/internal/checkout/errors"
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
	return &Handler{service: s, logger: l.Named("checkout.handler")}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	if httpErr.Status >= http.StatusInternalServerError {
		h.logger.Error("checkout request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
}

// POST /api/v1/cart/create-checkout-session
func (h *Handler) CreateSession(c *gin.Context) {
	userID := c.GetString("user_id_validated")
	if userID == "" {
		h.writeServiceError(c, autherrors.ErrUnauthorized)
		return
	}

	res, err := h.service.CreateSession(c.Request.Context(), userID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res, nil)
}

// POST /api/v1/payments/notification
func (h *Handler) Notification(c *gin.Context) {
	var req NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, checkouterrors.ErrInvalidNotification)
		return
	}

	res, err := h.service.HandleNotification(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res, nil)
}
