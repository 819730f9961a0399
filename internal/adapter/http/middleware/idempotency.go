package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"current-account-ledger/internal/core/ports"
	"current-account-ledger/pkg/apperror"
	"current-account-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"

	maxIdempotencyKeyLen = 128
	idempotencyLease     = 30 * time.Second
)

// storedResponse is what the cache keeps per key.
type storedResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

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

// Idempotency replays the stored response of a command that carried the
// same Idempotency-Key. Requests without the header pass through. Server
// errors, conflicts and rate-limit rejections are not stored, so the caller
// can retry them with the same key. A failing cache lets requests through.
func Idempotency(cache ports.IdempotencyCache, ttl time.Duration, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLen {
			response.Error(c, apperror.Validation("Idempotency-Key must be at most 128 characters"))
			c.Abort()
			return
		}

		scoped := extractIdentifier(c) + ":" + c.Request.Method + ":" + c.Request.URL.Path + ":" + key
		ctx := c.Request.Context()

		cached, reserved, err := cache.Reserve(ctx, scoped, idempotencyLease)
		if err != nil {
			log.Warn().Err(err).Msg("idempotency check failed, processing request (degraded mode)")
			c.Next()
			return
		}
		if cached != nil {
			var stored storedResponse
			if err := json.Unmarshal(cached, &stored); err == nil {
				c.Header(HeaderReplayed, "true")
				c.Data(stored.Status, "application/json; charset=utf-8", stored.Body)
				c.Abort()
				return
			}
			log.Warn().Str("key", key).Msg("discarding unreadable idempotency record")
		} else if !reserved {
			response.Error(c, apperror.ErrIdempotencyKeyInUse())
			c.Abort()
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		bg := context.WithoutCancel(ctx)
		status := rec.Status()
		if !storable(status) {
			if err := cache.Release(bg, scoped); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("failed to release idempotency key")
			}
			return
		}

		payload, err := json.Marshal(storedResponse{Status: status, Body: rec.body.Bytes()})
		if err != nil {
			log.Error().Err(err).Msg("failed to encode idempotency record")
			return
		}
		if err := cache.Store(bg, scoped, payload, ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to store idempotency record")
		}
	}
}

func storable(status int) bool {
	switch {
	case status >= http.StatusInternalServerError:
		return false
	case status == http.StatusConflict, status == http.StatusTooManyRequests:
		return false
	}
	return true
}
