package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"storycanvas/internal/domain"
	"storycanvas/internal/http/handlers"
	"storycanvas/internal/http/httpapi"
	"storycanvas/internal/infra"
	"storycanvas/internal/session"
)

type fakeGenerator struct {
	calls   int
	lastReq domain.GenerationRequest
	err     error
}

func (f *fakeGenerator) Generate(_ context.Context, req domain.GenerationRequest, controls domain.CinematicControls) ([]domain.GenerationResult, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	count := controls.NumberOfImages
	if count < 1 {
		count = 1
	}
	out := make([]domain.GenerationResult, count)
	for i := range out {
		out[i] = domain.GenerationResult{
			ImageURL: fmt.Sprintf("data:image/png;base64,aW1nLTd%d", i),
			Prompt:   req.Prompt,
			Payload:  req,
		}
	}
	return out, nil
}

type fakeRewriter struct{}

func (fakeRewriter) ImproveScene(_ context.Context, scene string, _ bool) (string, error) {
	return "improved: " + scene, nil
}

func (fakeRewriter) ImproveEditInstruction(_ context.Context, instruction string, _, _ bool) (string, error) {
	return "improved edit: " + instruction, nil
}

func newTestServer(t *testing.T, gen handlers.Generator) *httptest.Server {
	t.Helper()
	cfg := &infra.Config{
		AppEnv:            "test",
		MaxImagesPerBatch: 4,
		RateLimitPerMin:   1000,
	}
	logger := infra.Logger(zerolog.New(io.Discard))
	app := handlers.NewApp(cfg, &logger, session.NewStore(0), gen, fakeRewriter{})
	srv := httptest.NewServer(httpapi.NewRouter(cfg, app))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, sessionID string, body any) *http.Response {
	t.Helper()
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		payload = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, payload)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set("X-Session-ID", sessionID)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

type imagesEnvelope struct {
	SessionID string                  `json:"session_id"`
	Mode      string                  `json:"mode"`
	Images    []domain.GeneratedImage `json:"images"`
}

type imageEnvelope struct {
	SessionID string                `json:"session_id"`
	Image     domain.GeneratedImage `json:"image"`
}

func generateBody(scene string, n int) map[string]any {
	return map[string]any{
		"scene": map[string]any{
			"scene_description": scene,
			"controls": map[string]any{
				"shot_type": "None", "camera_angle": "None", "camera_zoom": "None",
				"lighting": "Cinematic", "photo_style": "Photorealistic",
				"color_tone": "None", "aspect_ratio": "16:9",
				"number_of_images": n,
			},
		},
		"use_cinematic_prompt": true,
	}
}

func TestGenerateScene(t *testing.T) {
	gen := &fakeGenerator{}
	srv := newTestServer(t, gen)

	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/scenes/generate", "", generateBody("a fox in the snow", 2))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	sid := resp.Header.Get("X-Session-ID")
	if sid == "" {
		t.Fatal("session ID not assigned")
	}
	out := decodeBody[imagesEnvelope](t, resp)
	if len(out.Images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(out.Images))
	}
	if out.Mode != "compact" {
		t.Fatalf("text-only cinematic request should compile compact, got %q", out.Mode)
	}
	if !strings.Contains(gen.lastReq.Prompt, "a fox in the snow") {
		t.Fatalf("scene text missing from prompt %q", gen.lastReq.Prompt)
	}

	// The gallery now lists both images for the same session.
	listResp := doJSON(t, http.MethodGet, srv.URL+"/v1/gallery", sid, nil)
	list := decodeBody[imagesEnvelope](t, listResp)
	if len(list.Images) != 2 {
		t.Fatalf("gallery should hold 2 images, got %d", len(list.Images))
	}
}

func TestGenerateSceneBlankSceneRejected(t *testing.T) {
	gen := &fakeGenerator{}
	srv := newTestServer(t, gen)

	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/scenes/generate", "", generateBody("   ", 1))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("blank scene must be a 400, got %d", resp.StatusCode)
	}
	if gen.calls != 0 {
		t.Fatal("blank scenes must never reach the generator")
	}
}

func TestGenerateSceneQuotaMapsTo429(t *testing.T) {
	gen := &fakeGenerator{err: domain.ErrQuotaExhausted}
	srv := newTestServer(t, gen)

	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/scenes/generate", "", generateBody("a fox", 1))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("quota exhaustion must be a 429, got %d", resp.StatusCode)
	}
}

func TestGenerateScenePolicyMapsTo422(t *testing.T) {
	gen := &fakeGenerator{err: fmt.Errorf("wrapped: %w", domain.ErrContentPolicy)}
	srv := newTestServer(t, gen)

	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/scenes/generate", "", generateBody("a fox", 1))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("policy refusal must be a 422, got %d", resp.StatusCode)
	}
}

func TestRegenerateAndUpscale(t *testing.T) {
	gen := &fakeGenerator{}
	srv := newTestServer(t, gen)

	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/scenes/generate", "", generateBody("a castle", 1))
	sid := resp.Header.Get("X-Session-ID")
	first := decodeBody[imagesEnvelope](t, resp)
	imgID := first.Images[0].ID

	reResp := doJSON(t, http.MethodPost, srv.URL+"/v1/images/"+imgID+"/regenerate", sid, nil)
	if reResp.StatusCode != http.StatusOK {
		t.Fatalf("regenerate status %d", reResp.StatusCode)
	}
	re := decodeBody[imageEnvelope](t, reResp)
	if re.Image.ID == imgID {
		t.Fatal("regeneration must mint a new gallery entry")
	}
	if re.Image.Prompt != first.Images[0].Prompt {
		t.Fatal("regeneration must replay the stored prompt")
	}

	upResp := doJSON(t, http.MethodPost, srv.URL+"/v1/images/"+imgID+"/upscale", sid, nil)
	up := decodeBody[imageEnvelope](t, upResp)
	if !up.Image.Upscaled {
		t.Fatal("upscaled flag not set")
	}
	if !strings.Contains(gen.lastReq.Prompt, "**UPSCALE INSTRUCTION:**") {
		t.Fatalf("upscale instruction missing from prompt %q", gen.lastReq.Prompt)
	}

	listResp := doJSON(t, http.MethodGet, srv.URL+"/v1/gallery", sid, nil)
	list := decodeBody[imagesEnvelope](t, listResp)
	if len(list.Images) != 3 {
		t.Fatalf("gallery should hold 3 entries, got %d", len(list.Images))
	}
	if list.Images[0].ID != up.Image.ID {
		t.Fatal("newest image must come first")
	}
}

func TestImageOperationsUnknownID(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{})
	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/images/nope/regenerate", "some-session", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown image must be a 404, got %d", resp.StatusCode)
	}
}

func TestEditImage(t *testing.T) {
	gen := &fakeGenerator{}
	srv := newTestServer(t, gen)

	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/scenes/generate", "", generateBody("a castle", 1))
	sid := resp.Header.Get("X-Session-ID")
	first := decodeBody[imagesEnvelope](t, resp)
	imgID := first.Images[0].ID

	editResp := doJSON(t, http.MethodPost, srv.URL+"/v1/images/"+imgID+"/edit", sid, map[string]any{
		"instruction": "add a dragon",
	})
	if editResp.StatusCode != http.StatusOK {
		t.Fatalf("edit status %d", editResp.StatusCode)
	}
	edited := decodeBody[imageEnvelope](t, editResp)
	if edited.Image.EditPrompt != "add a dragon" {
		t.Fatalf("edit prompt not recorded: %+v", edited.Image)
	}
	if !strings.HasPrefix(gen.lastReq.Prompt, "**Task: Image Editing**") {
		t.Fatalf("plain edit instruction should be wrapped, got %q", gen.lastReq.Prompt)
	}
	if len(gen.lastReq.Images) != 1 {
		t.Fatalf("edit must send the source image, got %d images", len(gen.lastReq.Images))
	}

	blankResp := doJSON(t, http.MethodPost, srv.URL+"/v1/images/"+imgID+"/edit", sid, map[string]any{
		"instruction": "  ",
	})
	defer blankResp.Body.Close()
	if blankResp.StatusCode != http.StatusBadRequest {
		t.Fatalf("blank instruction must be a 400, got %d", blankResp.StatusCode)
	}
}

func TestRewriteSceneImmediate(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{})

	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/rewrite/scene", "", map[string]any{
		"scene_description":    "a harbor",
		"has_character_images": false,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("rewrite status %d", resp.StatusCode)
	}
	out := decodeBody[struct {
		Improved string `json:"improved"`
		Stale    bool   `json:"stale"`
	}](t, resp)
	if out.Stale || out.Improved != "improved: a harbor" {
		t.Fatalf("unexpected rewrite result %+v", out)
	}
}

func TestDeleteGalleryImage(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{})

	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/scenes/generate", "", generateBody("a castle", 1))
	sid := resp.Header.Get("X-Session-ID")
	first := decodeBody[imagesEnvelope](t, resp)

	delResp := doJSON(t, http.MethodDelete, srv.URL+"/v1/gallery/"+first.Images[0].ID, sid, nil)
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status %d", delResp.StatusCode)
	}

	againResp := doJSON(t, http.MethodDelete, srv.URL+"/v1/gallery/"+first.Images[0].ID, sid, nil)
	againResp.Body.Close()
	if againResp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete must be a 404, got %d", againResp.StatusCode)
	}
}

func TestSessionUnlock(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{})

	statusResp := doJSON(t, http.MethodGet, srv.URL+"/v1/session", "s-1", nil)
	status := decodeBody[struct {
		Unlocked bool `json:"unlocked"`
	}](t, statusResp)
	if status.Unlocked {
		t.Fatal("fresh sessions must start locked")
	}

	unlockResp := doJSON(t, http.MethodPost, srv.URL+"/v1/session/unlock", "s-1", nil)
	unlock := decodeBody[struct {
		Unlocked bool `json:"unlocked"`
	}](t, unlockResp)
	if !unlock.Unlocked {
		t.Fatal("unlock did not take effect")
	}

	otherResp := doJSON(t, http.MethodGet, srv.URL+"/v1/session", "s-2", nil)
	other := decodeBody[struct {
		Unlocked bool `json:"unlocked"`
	}](t, otherResp)
	if other.Unlocked {
		t.Fatal("unlock must not leak across sessions")
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{})
	resp, err := http.Get(srv.URL + "/v1/healthz")
	if err != nil {
		t.Fatalf("GET healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status %d", resp.StatusCode)
	}
}
