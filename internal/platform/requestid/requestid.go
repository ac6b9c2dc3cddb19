// Package requestid tags every request with a correlation id.
package requestid

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header carries the request id in both directions.
const Header = "X-Request-ID"

const maxLength = 128

type contextKey struct{}

// Middleware reuses a caller supplied id when present and generates one otherwise.
// The id is echoed in the response header and stored on the request context.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(Header))
		if id == "" || len(id) > maxLength {
			id = uuid.NewString()
		}
		c.Set(Header, id)
		c.Request = c.Request.WithContext(WithID(c.Request.Context(), id))
		c.Header(Header, id)
		c.Next()
	}
}

// WithID returns a copy of ctx carrying id.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the request id, or an empty string.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
