package rewrite

import (
	"context"
	"errors"
	"strings"
	"testing"

	"storycanvas/internal/providers/genai"
)

type fakeContentCaller struct {
	calls    int
	lastText string
	reply    string
	err      error
}

func (f *fakeContentCaller) GenerateContent(_ context.Context, _ string, parts []genai.Part, cfg *genai.GenerateConfig) (*genai.ContentResponse, error) {
	f.calls++
	f.lastText = parts[0].Text
	if cfg == nil || cfg.ThinkingBudget == nil || *cfg.ThinkingBudget != 0 {
		return nil, errors.New("thinking must be disabled for rewrites")
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.ContentResponse{Candidates: []genai.Candidate{{
		Content: genai.Content{Parts: []genai.Part{{Text: f.reply}}},
	}}}, nil
}

func TestImproveSceneReturnsModelText(t *testing.T) {
	caller := &fakeContentCaller{reply: "  A mist-shrouded harbor at dawn, lanterns flickering.  "}
	r := NewGeminiRewriter(Options{Caller: caller})

	got, err := r.ImproveScene(context.Background(), "a harbor", false)
	if err != nil {
		t.Fatalf("ImproveScene: %v", err)
	}
	if got != "A mist-shrouded harbor at dawn, lanterns flickering." {
		t.Fatalf("unexpected improvement %q", got)
	}
	if !strings.Contains(caller.lastText, `User's Description: "a harbor"`) {
		t.Errorf("meta prompt missing user description:\n%s", caller.lastText)
	}
	if strings.Contains(caller.lastText, "character preservation") {
		t.Error("likeness block must be absent without character images")
	}
}

func TestImproveSceneIncludesLikenessBlock(t *testing.T) {
	caller := &fakeContentCaller{reply: "improved"}
	r := NewGeminiRewriter(Options{Caller: caller})

	if _, err := r.ImproveScene(context.Background(), "a harbor", true); err != nil {
		t.Fatalf("ImproveScene: %v", err)
	}
	if !strings.Contains(caller.lastText, "preserves the exact facial features") {
		t.Errorf("likeness block missing:\n%s", caller.lastText)
	}
}

func TestImproveSceneBlankInputSkipsCall(t *testing.T) {
	caller := &fakeContentCaller{reply: "x"}
	r := NewGeminiRewriter(Options{Caller: caller})

	got, err := r.ImproveScene(context.Background(), "   ", false)
	if err != nil || got != "" {
		t.Fatalf("blank scene: got %q, %v", got, err)
	}
	if caller.calls != 0 {
		t.Fatal("blank input must not reach the model")
	}
}

func TestImproveSceneDegradesToOriginal(t *testing.T) {
	caller := &fakeContentCaller{err: errors.New("boom")}
	r := NewGeminiRewriter(Options{Caller: caller})

	got, err := r.ImproveScene(context.Background(), "a harbor", false)
	if err != nil {
		t.Fatalf("failures must degrade, not error: %v", err)
	}
	if got != "a harbor" {
		t.Fatalf("expected original description back, got %q", got)
	}
}

func TestImproveEditInstructionStripsAsterisks(t *testing.T) {
	caller := &fakeContentCaller{reply: "**Seamlessly replace the sky with a sunset.**"}
	r := NewGeminiRewriter(Options{Caller: caller})

	got, err := r.ImproveEditInstruction(context.Background(), "change the sky", false, false)
	if err != nil {
		t.Fatalf("ImproveEditInstruction: %v", err)
	}
	if got != "Seamlessly replace the sky with a sunset." {
		t.Fatalf("asterisks not stripped: %q", got)
	}
}

func TestImproveEditInstructionContextFlags(t *testing.T) {
	caller := &fakeContentCaller{reply: "ok"}
	r := NewGeminiRewriter(Options{Caller: caller})

	if _, err := r.ImproveEditInstruction(context.Background(), "add a bird", true, true); err != nil {
		t.Fatalf("ImproveEditInstruction: %v", err)
	}
	if !strings.Contains(caller.lastText, "provided a secondary reference image") {
		t.Error("reference flag missing from meta prompt")
	}
	if !strings.Contains(caller.lastText, "The white area of the mask specifies the exact region") {
		t.Error("mask flag missing from meta prompt")
	}
}

func TestImproveEditInstructionFallback(t *testing.T) {
	caller := &fakeContentCaller{err: errors.New("quota")}
	r := NewGeminiRewriter(Options{Caller: caller})

	got, err := r.ImproveEditInstruction(context.Background(), "add a bird", true, true)
	if err != nil {
		t.Fatalf("failures must degrade, not error: %v", err)
	}
	want := `Apply the following edit: "add a bird". Confine the edit strictly to the masked area. Use the provided reference image for inspiration. Ensure the result is high-quality and seamlessly integrated.`
	if got != want {
		t.Fatalf("fallback mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestImproveEditInstructionBlankInput(t *testing.T) {
	caller := &fakeContentCaller{}
	r := NewGeminiRewriter(Options{Caller: caller})

	got, err := r.ImproveEditInstruction(context.Background(), "", false, false)
	if err != nil || got != "" {
		t.Fatalf("blank instruction: got %q, %v", got, err)
	}
	if caller.calls != 0 {
		t.Fatal("blank input must not reach the model")
	}
}
