package middleware

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"campus-marketplace/internal/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	ReplayedHeader    = "Idempotent-Replayed"

	idempotencyLockTTL = 30 * time.Second
	idempotencyTTL     = 24 * time.Hour
)

var ErrIdempotencyInProgress = apperror.New(
	apperror.CodeConflict,
	"A request with this idempotency key is already in progress",
	http.StatusConflict,
)

type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored 2xx response for a repeated
// Idempotency-Key from the same user. Requests without the header pass
// through. Redis failures fail open.
func Idempotency(rdb *redis.Client, logger *zap.Logger) gin.HandlerFunc {
	l := logger.Named("idempotency")
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyHeader))
		if key == "" || rdb == nil {
			c.Next()
			return
		}
		if len(key) > 128 {
			abortWithError(c, apperror.New(apperror.CodeInvalidInput, "Idempotency key too long", http.StatusBadRequest))
			return
		}

		scope := fmt.Sprintf("%s:%s:%s", c.GetString("user_id_validated"), c.FullPath(), key)
		cacheKey := "idem:resp:" + scope
		lockKey := "idem:lock:" + scope
		ctx := c.Request.Context()

		cached, err := rdb.Get(ctx, cacheKey).Bytes()
		if err == nil {
			status, body := decodeStored(cached)
			c.Header(ReplayedHeader, "true")
			c.Data(status, "application/json; charset=utf-8", body)
			c.Abort()
			return
		}
		if !errors.Is(err, redis.Nil) {
			l.Warn("idempotency lookup failed", zap.Error(err))
			c.Next()
			return
		}

		locked, err := rdb.SetNX(ctx, lockKey, "1", idempotencyLockTTL).Result()
		if err != nil {
			l.Warn("idempotency lock failed", zap.Error(err))
			c.Next()
			return
		}
		if !locked {
			abortWithError(c, ErrIdempotencyInProgress)
			return
		}
		defer rdb.Del(ctx, lockKey)

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			if err := rdb.Set(ctx, cacheKey, encodeStored(status, rec.body.Bytes()), idempotencyTTL).Err(); err != nil {
				l.Warn("idempotency store failed", zap.Error(err))
			}
		}
	}
}

// stored form: "<status>\n<body>"
func encodeStored(status int, body []byte) []byte {
	out := make([]byte, 0, len(body)+4)
	out = strconv.AppendInt(out, int64(status), 10)
	out = append(out, '\n')
	return append(out, body...)
}

func decodeStored(raw []byte) (int, []byte) {
	i := bytes.IndexByte(raw, '\n')
	if i < 0 {
		return http.StatusOK, raw
	}
	status, err := strconv.Atoi(string(raw[:i]))
	if err != nil {
		return http.StatusOK, raw
	}
	return status, raw[i+1:]
}
