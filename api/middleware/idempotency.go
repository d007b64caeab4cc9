package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/eventdesk-backend/api/responses"
	pkgerrors "github.com/angelmondragon/eventdesk-backend/pkg/errors"
	"github.com/angelmondragon/eventdesk-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/eventdesk-backend/pkg/redis"
)

const (
	IdempotencyHeader = "Idempotency-Key"

	// StandardReplayTTL covers edits and non-final transitions.
	StandardReplayTTL = 24 * time.Hour
	// DecisionReplayTTL covers accept and refuse, which clients retry for longer.
	DecisionReplayTTL = 7 * 24 * time.Hour

	maxIdempotencyKeyBytes = 255
)

// replay is the cached outcome of one keyed request.
type replay struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
	Fingerprint string `json:"fingerprint"`
}

type replayCache struct {
	store pkgredis.IdempotencyStore
	ttl   time.Duration
}

// lookup returns nil, nil when nothing is cached under key.
func (c replayCache) lookup(ctx context.Context, key string) (*replay, error) {
	raw, err := c.store.Get(ctx, key)
	if errors.Is(err, redis.Nil) || (err == nil && raw == "") {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency")
	}
	var cached replay
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record")
	}
	return &cached, nil
}

func (c replayCache) save(ctx context.Context, key string, entry replay) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = c.store.SetNX(ctx, key, string(payload), c.ttl)
	return err
}

// Idempotent replays the first response recorded for an Idempotency-Key.
// Requests without the header run normally. The cache is scoped per caller
// and path, and a reused key with a different body is rejected. Server
// errors are not cached so the same key can be retried.
func Idempotent(store pkgredis.IdempotencyStore, logg *logger.Logger, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		cache := replayCache{store: store, ttl: ttl}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientKey := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if clientKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			if len(clientKey) > maxIdempotencyKeyBytes {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header too long"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			fingerprint := fingerprintBody(body)
			key := store.IdempotencyKey(callerScope(r), clientKey)

			cached, err := cache.lookup(ctx, key)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if cached != nil {
				if cached.Fingerprint != fingerprint {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
					return
				}
				cached.writeTo(w)
				return
			}

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)

			status := capture.statusCode()
			if status >= http.StatusInternalServerError {
				return
			}
			entry := replay{
				Status:      status,
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
				Fingerprint: fingerprint,
			}
			if err := cache.save(ctx, key, entry); err != nil && logg != nil {
				logg.Error(ctx, "persist idempotency record", err)
			}
		})
	}
}

func (p *replay) writeTo(w http.ResponseWriter) {
	if p.ContentType != "" {
		w.Header().Set("Content-Type", p.ContentType)
	}
	w.WriteHeader(p.Status)
	_, _ = w.Write(p.Body)
}

func callerScope(r *http.Request) string {
	ctx := r.Context()
	path := r.URL.Path
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return strings.Join([]string{UserIDFromContext(ctx), ClientIDFromContext(ctx), r.Method, path}, "|")
}

func fingerprintBody(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *responseCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *responseCapture) statusCode() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}
