package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/linkshort/internal/ratelimit"
)

// RegisterRoutes registers the link endpoints.
func RegisterRoutes(api huma.API, h *LinkHandler) {
	// Writes grow the store for the life of the process, so they get their own limits.
	huma.Register(api, huma.Operation{
		OperationID: "shorten",
		Method:      http.MethodPost,
		Path:        "/shorten",
		Summary:     "Shorten a URL",
		Description: "Returns the token for a URL, assigning one on first use. The same URL always gets the same token.",
		Tags:        []string{"Links"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.Limit{
					{Window: time.Minute, Max: 20},
					{Window: time.Hour, Max: 200},
				},
			},
		},
	}, h.Shorten)

	huma.Register(api, huma.Operation{
		OperationID: "expand",
		Method:      http.MethodGet,
		Path:        "/expand",
		Summary:     "Expand a token",
		Description: "Returns the URL behind a full short token.",
		Tags:        []string{"Links"},
		Errors:      []int{http.StatusNotFound},
	}, h.Expand)

	huma.Register(api, huma.Operation{
		OperationID: "redirect",
		Method:      http.MethodGet,
		Path:        "/r/{code}",
		Summary:     "Follow a short link",
		Description: "Redirects to the URL whose token is the configured prefix followed by code. " +
			"The token equal to the bare prefix has no code and is only reachable through /expand.",
		Tags:        []string{"Links"},
		Errors:      []int{http.StatusNotFound},
	}, h.Redirect)
}
