package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"storycanvas/internal/domain"
	"storycanvas/internal/prompt"
)

type generateRequest struct {
	Scene              domain.SceneSpec `json:"scene"`
	UseCinematicPrompt bool             `json:"use_cinematic_prompt"`
	UseImprovedScene   bool             `json:"use_improved_scene"`
}

type generateResponse struct {
	SessionID string                  `json:"session_id"`
	Mode      string                  `json:"mode"`
	Images    []domain.GeneratedImage `json:"images"`
}

// GenerateScene compiles the structured brief into a prompt and runs the
// generation batch. New images are prepended to the session gallery.
func (a *App) GenerateScene(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !a.decode(w, r, &req) {
		return
	}

	req.Scene.Controls.Normalize(a.Cfg.MaxImagesPerBatch)
	if req.Scene.BlankScene() {
		a.fail(w, domain.ErrEmptyScene)
		return
	}

	mode := prompt.SelectMode(req.Scene, req.UseCinematicPrompt, req.UseImprovedScene)
	text, refs := prompt.Build(req.Scene, mode)
	genReq := domain.GenerationRequest{Prompt: text, Images: refs}

	sid, state := a.sessionState(r)
	state.BeginOperation()
	defer state.EndOperation()

	results, err := a.Images.Generate(r.Context(), genReq, req.Scene.Controls)
	if err != nil {
		a.Log.Error().Err(err).Str("mode", mode.String()).Msg("handlers: scene generation failed")
		a.fail(w, err)
		return
	}

	images := a.storeResults(state, results, func(img *domain.GeneratedImage) {
		img.Controls = req.Scene.Controls
	})
	a.json(w, http.StatusOK, generateResponse{SessionID: sid, Mode: mode.String(), Images: images})
}

// storeResults turns raw generation results into gallery entries and
// prepends them in batch order.
func (a *App) storeResults(state galleryState, results []domain.GenerationResult, decorate func(*domain.GeneratedImage)) []domain.GeneratedImage {
	images := make([]domain.GeneratedImage, len(results))
	for i, res := range results {
		img := domain.GeneratedImage{
			ID:      uuid.NewString(),
			URL:     res.ImageURL,
			Prompt:  res.Prompt,
			Payload: res.Payload,
		}
		if decorate != nil {
			decorate(&img)
		}
		images[i] = img
	}
	state.Prepend(images...)
	return images
}

type galleryState interface {
	Prepend(imgs ...domain.GeneratedImage)
}
