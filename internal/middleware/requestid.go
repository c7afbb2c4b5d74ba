package middleware

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/linkshort/internal/messaging"
)

// HeaderRequestID is echoed on every response.
const HeaderRequestID = "X-Request-ID"

const maxRequestIDLength = 64

// RequestID tags each request with an id, reusing a reasonable inbound X-Request-ID.
func RequestID(generate func() string) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		id := ctx.Header(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLength {
			id = generate()
		}

		ctx.SetHeader(HeaderRequestID, id)

		next(huma.WithContext(ctx, messaging.ContextWithRequestID(ctx.Context(), id)))
	}
}
