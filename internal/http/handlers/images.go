package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"storycanvas/internal/domain"
	"storycanvas/internal/imagegen"
	"storycanvas/internal/session"
)

type imageResponse struct {
	SessionID string                `json:"session_id"`
	Image     domain.GeneratedImage `json:"image"`
}

// lookupImage fetches the target gallery image for a derived operation.
func (a *App) lookupImage(w http.ResponseWriter, r *http.Request) (string, *session.State, domain.GeneratedImage, bool) {
	sid, state := a.sessionState(r)
	id := chi.URLParam(r, "id")
	img, ok := state.Lookup(id)
	if !ok {
		a.fail(w, domain.ErrNotFound)
		return "", nil, domain.GeneratedImage{}, false
	}
	return sid, state, img, true
}

// runDerived executes a single-image operation derived from an existing
// gallery entry and stores the result.
func (a *App) runDerived(w http.ResponseWriter, r *http.Request, sid string, state *session.State, req domain.GenerationRequest, controls domain.CinematicControls, decorate func(*domain.GeneratedImage)) {
	state.BeginOperation()
	defer state.EndOperation()

	results, err := a.Images.Generate(r.Context(), req, controls)
	if err != nil {
		a.Log.Error().Err(err).Msg("handlers: derived image operation failed")
		a.fail(w, err)
		return
	}
	if len(results) == 0 {
		a.fail(w, errors.New("the operation failed to produce an image"))
		return
	}
	images := a.storeResults(state, results[:1], decorate)
	a.json(w, http.StatusOK, imageResponse{SessionID: sid, Image: images[0]})
}

// RegenerateImage replays the stored payload of a gallery image.
func (a *App) RegenerateImage(w http.ResponseWriter, r *http.Request) {
	sid, state, img, ok := a.lookupImage(w, r)
	if !ok {
		return
	}
	req, controls := imagegen.RegenerateRequest(img)
	a.runDerived(w, r, sid, state, req, controls, func(out *domain.GeneratedImage) {
		out.Controls = img.Controls
	})
}

// UpscaleImage re-runs the payload with the upscale instruction appended.
func (a *App) UpscaleImage(w http.ResponseWriter, r *http.Request) {
	sid, state, img, ok := a.lookupImage(w, r)
	if !ok {
		return
	}
	req, controls := imagegen.UpscaleRequest(img)
	a.runDerived(w, r, sid, state, req, controls, func(out *domain.GeneratedImage) {
		out.Upscaled = true
		out.Controls = img.Controls
	})
}

// RemoveBackground cuts the subject out of a gallery image.
func (a *App) RemoveBackground(w http.ResponseWriter, r *http.Request) {
	sid, state, img, ok := a.lookupImage(w, r)
	if !ok {
		return
	}
	req, controls, err := imagegen.RemoveBackgroundRequest(img)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.runDerived(w, r, sid, state, req, controls, func(out *domain.GeneratedImage) {
		out.Controls = img.Controls
	})
}

type editRequest struct {
	Instruction         string                 `json:"instruction"`
	ImprovedInstruction string                 `json:"improved_instruction,omitempty"`
	UseImproved         bool                   `json:"use_improved"`
	Reference           *domain.ReferenceImage `json:"reference,omitempty"`
	Mask                *domain.ReferenceImage `json:"mask,omitempty"`
}

// EditImage applies a text instruction, with optional mask and reference
// image, to a gallery entry.
func (a *App) EditImage(w http.ResponseWriter, r *http.Request) {
	sid, state, img, ok := a.lookupImage(w, r)
	if !ok {
		return
	}
	var body editRequest
	if !a.decode(w, r, &body) {
		return
	}

	instruction := body.Instruction
	improved := false
	if body.UseImproved && strings.TrimSpace(body.ImprovedInstruction) != "" {
		instruction = body.ImprovedInstruction
		improved = true
	}

	req, controls, err := imagegen.EditRequest(img, imagegen.EditOptions{
		Instruction: instruction,
		Improved:    improved,
		Reference:   body.Reference,
		Mask:        body.Mask,
	})
	if err != nil {
		a.fail(w, err)
		return
	}
	a.runDerived(w, r, sid, state, req, controls, func(out *domain.GeneratedImage) {
		out.Controls = img.Controls
		out.EditPrompt = body.Instruction
		out.ImprovedEditPrompt = instruction
	})
}
