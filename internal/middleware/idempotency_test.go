package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"campus-marketplace/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func setupIdempotency(t *testing.T) (*gin.Engine, *miniredis.Miniredis, *int) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	calls := 0
	r := setupTestRouter()
	r.POST("/checkout", middleware.Idempotency(rdb, zap.NewNop()), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"call": calls})
	})
	return r, mr, &calls
}

func TestIdempotency(t *testing.T) {
	t.Run("replays_stored_response", func(t *testing.T) {
		r, _, calls := setupIdempotency(t)

		send := func() *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
			req.Header.Set(middleware.IdempotencyHeader, "key-1")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			return w
		}

		first := send()
		second := send()

		assert.Equal(t, 1, *calls)
		assert.Equal(t, http.StatusCreated, first.Code)
		assert.Equal(t, http.StatusCreated, second.Code)
		assert.JSONEq(t, first.Body.String(), second.Body.String())
		assert.Equal(t, "true", second.Header().Get(middleware.ReplayedHeader))
	})

	t.Run("no_header_passes_through", func(t *testing.T) {
		r, _, calls := setupIdempotency(t)

		for i := 0; i < 2; i++ {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/checkout", nil))
			assert.Equal(t, http.StatusCreated, w.Code)
		}
		assert.Equal(t, 2, *calls)
	})

	t.Run("in_flight_conflict", func(t *testing.T) {
		r, mr, calls := setupIdempotency(t)
		mr.Set("idem:lock::/checkout:key-2", "1")

		req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
		req.Header.Set(middleware.IdempotencyHeader, "key-2")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, 0, *calls)
	})
}
