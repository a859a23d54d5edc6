package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyHeader = "Idempotency-Key"
	idempotencyPrefix = "idem:dispatch:"
	// Ride requests and lifecycle actions are retried by mobile clients
	// on flaky links; replays older than this are new requests.
	idempotencyTTL = 6 * time.Hour
)

// replayedResponse is the stored outcome of a completed request.
type replayedResponse struct {
	StatusCode int             `json:"status_code"`
	Body       json.RawMessage `json:"body"`
	Headers    http.Header     `json:"headers"`
}

// captureWriter tees the response body so it can be stored for replay.
type captureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the stored response when a mutating
// request carries an Idempotency-Key seen before. Keys are scoped to
// the method and route, so reusing a key across endpoints never leaks
// another operation's response. A ride request or accept retried with
// the same key returns the original outcome instead of running twice.
func IdempotencyMiddleware(redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut && c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		key := c.GetHeader(idempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := idempotencyPrefix + c.Request.Method + ":" + c.FullPath() + ":" + key

		stored, err := loadReplay(ctx, redisClient, cacheKey)
		if err != nil && err != redis.Nil {
			// Redis outage degrades to at-least-once.
			c.Next()
			return
		}

		if stored != nil {
			for k, v := range stored.Headers {
				for _, val := range v {
					c.Header(k, val)
				}
			}
			c.Data(stored.StatusCode, "application/json", stored.Body)
			c.Abort()
			return
		}

		w := &captureWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = w

		c.Next()

		// 5xx outcomes stay retriable; everything else is the request's
		// settled result.
		if c.Writer.Status() >= 200 && c.Writer.Status() < 500 {
			_ = storeReplay(ctx, redisClient, cacheKey, &replayedResponse{
				StatusCode: c.Writer.Status(),
				Body:       w.body.Bytes(),
				Headers:    replayHeaders(c),
			})
		}
	}
}

func loadReplay(ctx context.Context, client *redis.Client, key string) (*replayedResponse, error) {
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var stored replayedResponse
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func storeReplay(ctx context.Context, client *redis.Client, key string, response *replayedResponse) error {
	data, err := json.Marshal(response)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, data, idempotencyTTL).Err()
}

func replayHeaders(c *gin.Context) http.Header {
	headers := make(http.Header)
	if ct := c.Writer.Header().Get("Content-Type"); ct != "" {
		headers.Set("Content-Type", ct)
	}
	return headers
}
