package cart_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"campus-marketplace/internal/cart"
	carterrors "campus-marketplace/internal/cart/errors"
	producterrors "campus-marketplace/internal/product/errors"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==================== FAKE SERVICE ====================

type fakeCartService struct {
	GetOrCreateCartFn func(ctx context.Context, userID string) (cart.Cart, error)
	GetCartFn         func(ctx context.Context, userID string) (cart.CartResponse, error)
	AddItemFn         func(ctx context.Context, userID string, req cart.AddItemRequest) (cart.CartResponse, error)
	RemoveItemFn      func(ctx context.Context, userID, productID string) (cart.CartResponse, error)
	ClearCartFn       func(ctx context.Context, userID string) (cart.CartResponse, error)
	CountFn           func(ctx context.Context, userID string) (int64, error)
	SnapshotFn        func(ctx context.Context, userID string) (cart.Cart, error)
}

func (f *fakeCartService) GetOrCreateCart(ctx context.Context, userID string) (cart.Cart, error) {
	return f.GetOrCreateCartFn(ctx, userID)
}
func (f *fakeCartService) GetCart(ctx context.Context, userID string) (cart.CartResponse, error) {
	return f.GetCartFn(ctx, userID)
}
func (f *fakeCartService) AddItem(ctx context.Context, userID string, req cart.AddItemRequest) (cart.CartResponse, error) {
	return f.AddItemFn(ctx, userID, req)
}
func (f *fakeCartService) RemoveItem(ctx context.Context, userID, productID string) (cart.CartResponse, error) {
	return f.RemoveItemFn(ctx, userID, productID)
}
func (f *fakeCartService) ClearCart(ctx context.Context, userID string) (cart.CartResponse, error) {
	return f.ClearCartFn(ctx, userID)
}
func (f *fakeCartService) Count(ctx context.Context, userID string) (int64, error) {
	return f.CountFn(ctx, userID)
}
func (f *fakeCartService) Snapshot(ctx context.Context, userID string) (cart.Cart, error) {
	return f.SnapshotFn(ctx, userID)
}

// ==================== HELPER FUNCTIONS ====================

const testUserID = "8d0d5a52-8a7c-4d39-9c4b-0a3f0b1c2d3e"

func setupTestRouter(h *cart.Handler, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// stands in for AuthMiddleware
	auth := func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id_validated", userID)
		}
		c.Next()
	}

	g := r.Group("/api/v1/cart", auth)
	g.GET("", h.Get)
	g.GET("/count", h.Count)
	g.POST("/add", h.AddItem)
	g.DELETE("/:itemId", h.RemoveItem)
	g.DELETE("", h.Clear)
	return r
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

// ==================== TEST CASES ====================

func TestCartHandler_Get(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeCartService{
			GetCartFn: func(ctx context.Context, userID string) (cart.CartResponse, error) {
				assert.Equal(t, testUserID, userID)
				return cart.CartResponse{
					ID:     "cart-1",
					UserID: userID,
					Items: []cart.CartItemResponse{
						{ProductID: "p-1", Quantity: 2, LineTotal: decimal.RequireFromString("25")},
					},
					TotalQuantity: 2,
					Subtotal:      decimal.RequireFromString("25"),
				}, nil
			},
		}
		r := setupTestRouter(cart.NewHandler(svc), testUserID)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		env := decode(t, w)
		assert.True(t, env.Success)
		assert.Contains(t, string(env.Data), `"totalQuantity":2`)
	})

	t.Run("missing user", func(t *testing.T) {
		r := setupTestRouter(cart.NewHandler(&fakeCartService{}), "")

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("internal error hides cause", func(t *testing.T) {
		svc := &fakeCartService{
			GetCartFn: func(ctx context.Context, userID string) (cart.CartResponse, error) {
				return cart.CartResponse{}, carterrors.ErrCartFailed.WithCause(errors.New("pq: connection refused"))
			},
		}
		r := setupTestRouter(cart.NewHandler(svc), testUserID)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}

func TestCartHandler_Count(t *testing.T) {
	svc := &fakeCartService{
		CountFn: func(ctx context.Context, userID string) (int64, error) {
			return 5, nil
		},
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/cart/count", nil)
	c.Set("user_id_validated", testUserID)

	cart.NewHandler(svc).Count(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":5`)
}

func TestCartHandler_AddItem(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &fakeCartService{
			AddItemFn: func(ctx context.Context, userID string, req cart.AddItemRequest) (cart.CartResponse, error) {
				assert.Equal(t, "0f8fad5b-d9cb-469f-a165-70867728950e", req.ProductID)
				assert.Equal(t, int32(2), req.Quantity)
				return cart.CartResponse{TotalQuantity: 2}, nil
			},
		}
		r := setupTestRouter(cart.NewHandler(svc), testUserID)

		body := `{"productId":"0f8fad5b-d9cb-469f-a165-70867728950e","quantity":2}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/add", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		r := setupTestRouter(cart.NewHandler(&fakeCartService{}), testUserID)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/add", strings.NewReader(`{"productId":`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown product", func(t *testing.T) {
		svc := &fakeCartService{
			AddItemFn: func(ctx context.Context, userID string, req cart.AddItemRequest) (cart.CartResponse, error) {
				return cart.CartResponse{}, producterrors.ErrProductNotFound
			},
		}
		r := setupTestRouter(cart.NewHandler(svc), testUserID)

		body := `{"productId":"0f8fad5b-d9cb-469f-a165-70867728950e"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/add", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		env := decode(t, w)
		require.NotNil(t, env.Error)
		assert.Equal(t, producterrors.ErrProductNotFound.Code, env.Error.Code)
	})
}

func TestCartHandler_RemoveItem(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeCartService{
			RemoveItemFn: func(ctx context.Context, userID, productID string) (cart.CartResponse, error) {
				assert.Equal(t, "p-123", productID)
				return cart.CartResponse{}, nil
			},
		}
		r := setupTestRouter(cart.NewHandler(svc), testUserID)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/cart/p-123", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("item not found", func(t *testing.T) {
		svc := &fakeCartService{
			RemoveItemFn: func(ctx context.Context, userID, productID string) (cart.CartResponse, error) {
				return cart.CartResponse{}, carterrors.ErrCartItemNotFound
			},
		}
		r := setupTestRouter(cart.NewHandler(svc), testUserID)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/cart/p-404", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCartHandler_Clear(t *testing.T) {
	called := false
	svc := &fakeCartService{
		ClearCartFn: func(ctx context.Context, userID string) (cart.CartResponse, error) {
			called = true
			return cart.CartResponse{ID: "cart-1"}, nil
		},
	}
	r := setupTestRouter(cart.NewHandler(svc), testUserID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/cart", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
}
