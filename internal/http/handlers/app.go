// Package handlers implements the HTTP surface: scene generation, the
// image operations, rewrite endpoints, and the per-session gallery.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"storycanvas/internal/debounce"
	"storycanvas/internal/domain"
	"storycanvas/internal/infra"
	"storycanvas/internal/middleware"
	"storycanvas/internal/providers/rewrite"
	"storycanvas/internal/session"
)

// Generator is the slice of the orchestrator the handlers need.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest, controls domain.CinematicControls) ([]domain.GenerationResult, error)
}

type App struct {
	Cfg      *infra.Config
	Log      *infra.Logger
	Sessions *session.Store
	Images   Generator
	Rewriter rewrite.Rewriter

	sceneRewrites *debounce.Group[sceneRewriteInput, string]
	editRewrites  *debounce.Group[editRewriteInput, string]
}

func NewApp(cfg *infra.Config, log *infra.Logger, sessions *session.Store, images Generator, rewriter rewrite.Rewriter) *App {
	a := &App{
		Cfg:      cfg,
		Log:      log,
		Sessions: sessions,
		Images:   images,
		Rewriter: rewriter,
	}
	a.sceneRewrites = debounce.NewGroup(cfg.RewriteDebounce, func(ctx context.Context, in sceneRewriteInput) (string, error) {
		return rewriter.ImproveScene(ctx, in.Scene, in.HasCharacterImages)
	})
	a.editRewrites = debounce.NewGroup(cfg.RewriteDebounce, func(ctx context.Context, in editRewriteInput) (string, error) {
		return rewriter.ImproveEditInstruction(ctx, in.Instruction, in.HasReferenceImage, in.HasMask)
	})
	return a
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *App) error(w http.ResponseWriter, code int, err error) {
	a.json(w, code, errorResponse{Error: err.Error()})
}

// fail maps domain errors onto HTTP statuses.
func (a *App) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyScene), errors.Is(err, domain.ErrEmptyInstruction):
		a.error(w, http.StatusBadRequest, err)
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, err)
	case errors.Is(err, domain.ErrContentPolicy):
		a.error(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, domain.ErrQuotaExhausted), errors.Is(err, domain.ErrQuotaExceeded):
		a.error(w, http.StatusTooManyRequests, err)
	case errors.Is(err, domain.ErrMissingAPIKey):
		a.error(w, http.StatusServiceUnavailable, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		a.error(w, http.StatusRequestTimeout, err)
	default:
		a.error(w, http.StatusBadGateway, err)
	}
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		a.error(w, http.StatusBadRequest, errors.New("invalid request body"))
		return false
	}
	return true
}

// sessionState resolves the request's session from the middleware context.
func (a *App) sessionState(r *http.Request) (string, *session.State) {
	sid := middleware.SessionIDFromContext(r.Context())
	if sid == "" {
		sid = session.NewID()
	}
	return sid, a.Sessions.Get(sid)
}
