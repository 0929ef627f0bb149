package handlers

import "net/http"

type sceneRewriteInput struct {
	Scene              string `json:"scene_description"`
	HasCharacterImages bool   `json:"has_character_images"`
}

type editRewriteInput struct {
	Instruction       string `json:"instruction"`
	HasReferenceImage bool   `json:"has_reference_image"`
	HasMask           bool   `json:"has_mask"`
}

type rewriteResponse struct {
	Improved string `json:"improved"`
	Stale    bool   `json:"stale,omitempty"`
}

// RewriteScene improves a scene description. Calls are debounced per
// session; a request superseded by faster typing returns stale=true and
// an empty text.
func (a *App) RewriteScene(w http.ResponseWriter, r *http.Request) {
	var in sceneRewriteInput
	if !a.decode(w, r, &in) {
		return
	}
	sid, _ := a.sessionState(r)

	improved, stale, err := a.sceneRewrites.For(sid).Submit(r.Context(), in)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, rewriteResponse{Improved: improved, Stale: stale})
}

// RewriteEditInstruction improves an edit instruction, debounced the same
// way as scene rewrites but on an independent stream.
func (a *App) RewriteEditInstruction(w http.ResponseWriter, r *http.Request) {
	var in editRewriteInput
	if !a.decode(w, r, &in) {
		return
	}
	sid, _ := a.sessionState(r)

	improved, stale, err := a.editRewrites.For(sid).Submit(r.Context(), in)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, rewriteResponse{Improved: improved, Stale: stale})
}
