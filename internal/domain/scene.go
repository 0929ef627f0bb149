package domain

import "strings"

// ReferenceImage is an uploaded asset transmitted alongside the prompt to
// condition generation on its visual content. Data is the raw binary
// payload; encoding/json carries it as base64 on the wire.
type ReferenceImage struct {
	Data     []byte `json:"data"`
	MIMEType string `json:"mime_type"`
}

// Present reports whether the optional image actually carries bytes.
func (r *ReferenceImage) Present() bool {
	return r != nil && len(r.Data) > 0
}

// Character is one cast member of the scene. The image is optional; only
// characters with an image become numbered references in the prompt.
type Character struct {
	Name  string          `json:"name"`
	Image *ReferenceImage `json:"image,omitempty"`
}

// StyleReference describes the desired art direction, by text, image, or both.
type StyleReference struct {
	Text  string          `json:"text"`
	Image *ReferenceImage `json:"image,omitempty"`
}

// SceneLocation describes where the scene takes place.
type SceneLocation struct {
	Text  string          `json:"text"`
	Image *ReferenceImage `json:"image,omitempty"`
}

// KeyObject is a prop that must appear in the scene.
type KeyObject struct {
	Text  string          `json:"text"`
	Image *ReferenceImage `json:"image,omitempty"`
}

// SceneSpec is the complete structured creative brief. It is immutable
// input to prompt compilation; compilation is a pure mapping over it.
type SceneSpec struct {
	Characters       []Character       `json:"characters"`
	SceneDescription string            `json:"scene_description"`
	Location         SceneLocation     `json:"location"`
	Style            StyleReference    `json:"style"`
	KeyObjects       []KeyObject       `json:"key_objects"`
	Controls         CinematicControls `json:"controls"`
}

// ReferencedCharacters returns the characters carrying an image, in list
// order. The count decides between the ensemble and standard templates.
func (s SceneSpec) ReferencedCharacters() []Character {
	var out []Character
	for _, c := range s.Characters {
		if c.Image.Present() {
			out = append(out, c)
		}
	}
	return out
}

// HasReferenceImages reports whether any slot of the spec carries an image.
func (s SceneSpec) HasReferenceImages() bool {
	if len(s.ReferencedCharacters()) > 0 {
		return true
	}
	if s.Style.Image.Present() || s.Location.Image.Present() {
		return true
	}
	for _, ko := range s.KeyObjects {
		if ko.Image.Present() {
			return true
		}
	}
	return false
}

// BlankScene reports whether the scene description is empty or whitespace
// only; such specs are rejected before any call is issued.
func (s SceneSpec) BlankScene() bool {
	return strings.TrimSpace(s.SceneDescription) == ""
}

// GenerationRequest is the wire-ready payload handed to the orchestrator.
// Image order must exactly match the reference numbers embedded in Prompt.
type GenerationRequest struct {
	Prompt string           `json:"prompt"`
	Images []ReferenceImage `json:"images"`
}

// GenerationResult is one generated image. Payload echoes the request that
// produced it so regenerate and upscale can resubmit the same inputs.
type GenerationResult struct {
	ImageURL string            `json:"image_url"`
	Prompt   string            `json:"prompt"`
	Payload  GenerationRequest `json:"payload"`
}

// GeneratedImage is a gallery entry owned by the session. The gallery list
// is append-only: entries are prepended newest-first or removed whole,
// never mutated in place.
type GeneratedImage struct {
	ID                 string            `json:"id"`
	URL                string            `json:"url"`
	Prompt             string            `json:"prompt"`
	Payload            GenerationRequest `json:"payload"`
	Upscaled           bool              `json:"upscaled,omitempty"`
	Controls           CinematicControls `json:"controls"`
	EditPrompt         string            `json:"edit_prompt,omitempty"`
	ImprovedEditPrompt string            `json:"improved_edit_prompt,omitempty"`
}
