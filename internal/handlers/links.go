package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/linkshort/internal/events"
	"github.com/serroba/linkshort/internal/messaging"
	"github.com/serroba/linkshort/internal/shortener"
	"go.uber.org/zap"
)

// LinkStore is the part of the shortener store the HTTP layer needs.
type LinkStore interface {
	Put(longURL string) (shortener.Entry, bool)
	Lookup(token string) (shortener.Entry, error)
	Prefix() string
}

// LinkHandler serves shorten, expand and redirect.
type LinkHandler struct {
	store       LinkStore
	publishLink messaging.Publish[events.LinkCreated]
	logger      *zap.Logger
}

// NewLinkHandler creates a handler over store. publishLink is called for newly created links only.
func NewLinkHandler(
	store LinkStore,
	publishLink messaging.Publish[events.LinkCreated],
	logger *zap.Logger,
) *LinkHandler {
	return &LinkHandler{
		store:       store,
		publishLink: publishLink,
		logger:      logger,
	}
}

func (h *LinkHandler) Shorten(ctx context.Context, req *ShortenRequest) (*ShortenResponse, error) {
	entry, created := h.store.Put(req.Body.URL)

	resp := &ShortenResponse{Status: http.StatusOK, Location: entry.Token}
	resp.Body.Token = entry.Token
	resp.Body.URL = entry.LongURL

	if !created {
		return resp, nil
	}

	resp.Status = http.StatusCreated

	event := &events.LinkCreated{
		Token:     entry.Token,
		URL:       entry.LongURL,
		CreatedAt: entry.CreatedAt,
	}

	if err := h.publishLink(ctx, event); err != nil {
		h.logger.Error("failed to publish link event",
			zap.String("token", entry.Token),
			zap.Error(err),
		)
	}

	return resp, nil
}

func (h *LinkHandler) Expand(_ context.Context, req *ExpandRequest) (*ExpandResponse, error) {
	entry, err := h.lookup(req.Token)
	if err != nil {
		return nil, err
	}

	resp := &ExpandResponse{}
	resp.Body.URL = entry.LongURL

	return resp, nil
}

func (h *LinkHandler) Redirect(_ context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	entry, err := h.lookup(h.store.Prefix() + req.Code)
	if err != nil {
		return nil, err
	}

	return &RedirectResponse{
		Status:   http.StatusMovedPermanently,
		Location: entry.LongURL,
	}, nil
}

func (h *LinkHandler) lookup(token string) (shortener.Entry, error) {
	entry, err := h.store.Lookup(token)
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return shortener.Entry{}, huma.Error404NotFound(err.Error())
		}

		h.logger.Error("failed to look up token", zap.String("token", token), zap.Error(err))

		return shortener.Entry{}, huma.Error500InternalServerError("failed to look up token")
	}

	return entry, nil
}
