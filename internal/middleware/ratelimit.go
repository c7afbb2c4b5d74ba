package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/linkshort/internal/ratelimit"
	"go.uber.org/zap"
)

// RateLimiter rejects requests over the limits of their endpoint or scope with 429.
// Endpoint metadata can disable limiting, pin a scope, or supply its own limits.
func RateLimiter(
	api huma.API,
	limiter *ratelimit.Limiter,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		cfg := ratelimit.EndpointConfigFrom(ctx)
		if cfg != nil && cfg.Disabled {
			next(ctx)

			return
		}

		var (
			exceeded *ratelimit.Exceeded
			err      error
		)

		client := clientKey(ctx)

		if cfg != nil && len(cfg.Limits) > 0 {
			// Counters are shared per route template, not per concrete path.
			exceeded, err = limiter.AllowLimits(ctx.Context(), client, ctx.Operation().Path, cfg.Limits)
		} else {
			exceeded, err = limiter.Allow(ctx.Context(), client, ratelimit.ResolveScopes(ctx))
		}

		if err != nil {
			logger.Error("rate limit check failed", zap.String("path", ctx.URL().Path), zap.Error(err))
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error", err)

			return
		}

		if exceeded != nil {
			logger.Warn("rate limit exceeded",
				zap.String("method", ctx.Method()),
				zap.String("path", ctx.URL().Path),
				zap.String("scope", string(exceeded.Scope)),
				zap.Int64("count", exceeded.Count),
				zap.Int64("max", exceeded.Limit.Max),
				zap.Duration("window", exceeded.Limit.Window),
				zap.String("client_ip", clientIP(ctx)),
			)
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, "rate limit exceeded: "+exceeded.String())

			return
		}

		next(ctx)
	}
}

// clientKey identifies a client by IP and User-Agent without keeping either in clear.
func clientKey(ctx huma.Context) string {
	sum := sha256.Sum256([]byte(clientIP(ctx) + "|" + ctx.Header("User-Agent")))

	return hex.EncodeToString(sum[:])
}

// clientIP prefers proxy headers and falls back to the connection's remote address.
func clientIP(ctx huma.Context) string {
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")

		return strings.TrimSpace(first)
	}

	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return xri
	}

	addr := ctx.RemoteAddr()

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}

	return host
}
