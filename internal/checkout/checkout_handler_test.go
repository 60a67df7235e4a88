package checkout_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"campus-marketplace/internal/checkout"
	checkouterrors "campus-marketplace/internal/checkout/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeCheckoutService struct {
	CreateSessionFn      func(ctx context.Context, userID string) (checkout.CheckoutSessionResponse, error)
	HandleNotificationFn func(ctx context.Context, req checkout.NotificationRequest) (checkout.NotificationResponse, error)
}

func (f *fakeCheckoutService) CreateSession(ctx context.Context, userID string) (checkout.CheckoutSessionResponse, error) {
	return f.CreateSessionFn(ctx, userID)
}
func (f *fakeCheckoutService) HandleNotification(ctx context.Context, req checkout.NotificationRequest) (checkout.NotificationResponse, error) {
	return f.HandleNotificationFn(ctx, req)
}

func setupTestRouter(svc checkout.Service, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	auth := func(c *gin.Context) {
		if userID == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set("user_id_validated", userID)
		c.Next()
	}
	checkout.RegisterRoutes(r.Group("/api/v1"), checkout.NewHandler(svc), auth, nil)
	return r
}

func TestCheckoutHandler_CreateSession(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeCheckoutService{
			CreateSessionFn: func(ctx context.Context, userID string) (checkout.CheckoutSessionResponse, error) {
				assert.Equal(t, "user-1", userID)
				return checkout.CheckoutSessionResponse{URL: "https://pay.test/tok", OrderID: "CM-1-ABCD"}, nil
			},
		}

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/create-checkout-session", nil)
		setupTestRouter(svc, "user-1").ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"url":"https://pay.test/tok"`)
		assert.Contains(t, w.Body.String(), `"orderId":"CM-1-ABCD"`)
	})

	t.Run("empty cart", func(t *testing.T) {
		svc := &fakeCheckoutService{
			CreateSessionFn: func(ctx context.Context, userID string) (checkout.CheckoutSessionResponse, error) {
				return checkout.CheckoutSessionResponse{}, checkouterrors.ErrEmptyCart
			},
		}

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/create-checkout-session", nil)
		setupTestRouter(svc, "user-2").ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("provider down", func(t *testing.T) {
		svc := &fakeCheckoutService{
			CreateSessionFn: func(ctx context.Context, userID string) (checkout.CheckoutSessionResponse, error) {
				return checkout.CheckoutSessionResponse{}, checkouterrors.ErrPaymentUpstream
			},
		}

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/create-checkout-session", nil)
		setupTestRouter(svc, "user-3").ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/create-checkout-session", nil)
		setupTestRouter(&fakeCheckoutService{}, "").ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestCheckoutHandler_Notification(t *testing.T) {
	t.Run("accepted without user token", func(t *testing.T) {
		svc := &fakeCheckoutService{
			HandleNotificationFn: func(ctx context.Context, req checkout.NotificationRequest) (checkout.NotificationResponse, error) {
				assert.Equal(t, "CM-1-ABCD", req.OrderID)
				assert.Equal(t, "settlement", req.TransactionStatus)
				return checkout.NotificationResponse{OrderID: req.OrderID, Status: checkout.StatusPaid}, nil
			},
		}

		body := `{"order_id":"CM-1-ABCD","status_code":"200","gross_amount":"2800.00","signature_key":"abc","transaction_status":"settlement"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/notification", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		setupTestRouter(svc, "").ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"PAID"`)
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/notification", strings.NewReader(`{`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		setupTestRouter(&fakeCheckoutService{}, "").ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad signature", func(t *testing.T) {
		svc := &fakeCheckoutService{
			HandleNotificationFn: func(ctx context.Context, req checkout.NotificationRequest) (checkout.NotificationResponse, error) {
				return checkout.NotificationResponse{}, checkouterrors.ErrInvalidSignature
			},
		}

		body := `{"order_id":"CM-1-ABCD","status_code":"200","gross_amount":"2800.00","signature_key":"forged","transaction_status":"settlement"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/notification", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		setupTestRouter(svc, "").ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
