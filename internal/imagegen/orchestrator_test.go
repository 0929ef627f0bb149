package imagegen

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"storycanvas/internal/domain"
	"storycanvas/internal/providers/genai"
)

type fakeCaller struct {
	mu           sync.Mutex
	contentCalls int
	predictCalls int
	content      func(call int) (*genai.ContentResponse, error)
	predict      func(call int) (*genai.PredictResponse, error)

	lastModel   string
	lastParts   []genai.Part
	lastPrompt  string
	lastPredict genai.PredictConfig
}

func (f *fakeCaller) GenerateContent(_ context.Context, model string, parts []genai.Part, _ *genai.GenerateConfig) (*genai.ContentResponse, error) {
	f.mu.Lock()
	f.contentCalls++
	call := f.contentCalls
	f.lastModel = model
	f.lastParts = parts
	f.mu.Unlock()
	return f.content(call)
}

func (f *fakeCaller) PredictImages(_ context.Context, model, prompt string, cfg genai.PredictConfig) (*genai.PredictResponse, error) {
	f.mu.Lock()
	f.predictCalls++
	call := f.predictCalls
	f.lastModel = model
	f.lastPrompt = prompt
	f.lastPredict = cfg
	f.mu.Unlock()
	return f.predict(call)
}

func newTestOrchestrator(caller Caller, delays *[]time.Duration) *Orchestrator {
	return NewOrchestrator(Options{
		Caller: caller,
		Sleep: func(_ context.Context, d time.Duration) error {
			if delays != nil {
				*delays = append(*delays, d)
			}
			return nil
		},
		Jitter: func() time.Duration { return 0 },
	})
}

func inlineResponse(b64 string) (*genai.ContentResponse, error) {
	return &genai.ContentResponse{Candidates: []genai.Candidate{{
		FinishReason: "STOP",
		Content: genai.Content{Parts: []genai.Part{
			{Text: "here you go"},
			{InlineData: &genai.InlineData{MIMEType: "image/png", Data: b64}},
		}},
	}}}, nil
}

func TestGenerateConditionedFansOut(t *testing.T) {
	caller := &fakeCaller{content: func(int) (*genai.ContentResponse, error) { return inlineResponse("aW1n") }}
	o := newTestOrchestrator(caller, nil)

	req := domain.GenerationRequest{
		Prompt: "a brief",
		Images: []domain.ReferenceImage{{Data: []byte("x"), MIMEType: "image/jpeg"}},
	}
	controls := domain.DefaultControls()
	controls.NumberOfImages = 3

	results, err := o.Generate(context.Background(), req, controls)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if caller.contentCalls != 3 {
		t.Fatalf("expected 3 model calls, got %d", caller.contentCalls)
	}
	if caller.predictCalls != 0 {
		t.Fatal("image-conditioned request must not hit the batch model")
	}
	for _, r := range results {
		if r.ImageURL != "data:image/png;base64,aW1n" {
			t.Fatalf("unexpected data URL %q", r.ImageURL)
		}
		if r.Prompt != "a brief" {
			t.Fatalf("result must echo the prompt, got %q", r.Prompt)
		}
	}
	if caller.lastParts[len(caller.lastParts)-1].Text != "a brief" {
		t.Fatal("text part must come after the image parts")
	}
}

func TestGenerateBatchTextOnly(t *testing.T) {
	caller := &fakeCaller{predict: func(int) (*genai.PredictResponse, error) {
		return &genai.PredictResponse{Predictions: []genai.Prediction{
			{BytesBase64Encoded: "YQ=="},
			{BytesBase64Encoded: "Yg=="},
		}}, nil
	}}
	o := newTestOrchestrator(caller, nil)

	controls := domain.DefaultControls()
	controls.NumberOfImages = 2
	controls.AspectRatio = domain.AspectRatioSquare

	results, err := o.Generate(context.Background(), domain.GenerationRequest{Prompt: "keywords"}, controls)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if caller.predictCalls != 1 {
		t.Fatalf("batch must be a single call, got %d", caller.predictCalls)
	}
	if caller.lastPredict.SampleCount != 2 || caller.lastPredict.AspectRatio != "1:1" {
		t.Fatalf("unexpected predict config %+v", caller.lastPredict)
	}
	if results[0].ImageURL != "data:image/png;base64,YQ==" {
		t.Fatalf("unexpected data URL %q", results[0].ImageURL)
	}
}

func TestQuotaErrorsRetryWithBackoff(t *testing.T) {
	caller := &fakeCaller{content: func(call int) (*genai.ContentResponse, error) {
		if call <= 2 {
			return nil, &genai.APIError{StatusCode: 429, Status: "RESOURCE_EXHAUSTED", Message: "quota"}
		}
		return inlineResponse("aW1n")
	}}
	var delays []time.Duration
	o := newTestOrchestrator(caller, &delays)

	req := domain.GenerationRequest{Prompt: "p", Images: []domain.ReferenceImage{{Data: []byte("x")}}}
	if _, err := o.Generate(context.Background(), req, domain.DefaultControls()); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := []time.Duration{6 * time.Second, 12 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("expected %d sleeps, got %v", len(want), delays)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Fatalf("delay %d: got %v, want %v", i, delays[i], want[i])
		}
	}
}

func TestQuotaExhaustedAfterAllRetries(t *testing.T) {
	caller := &fakeCaller{content: func(int) (*genai.ContentResponse, error) {
		return nil, errors.New("rate limited: quota exceeded")
	}}
	var delays []time.Duration
	o := newTestOrchestrator(caller, &delays)

	req := domain.GenerationRequest{Prompt: "p", Images: []domain.ReferenceImage{{Data: []byte("x")}}}
	_, err := o.Generate(context.Background(), req, domain.DefaultControls())
	if !errors.Is(err, domain.ErrQuotaExhausted) {
		t.Fatalf("expected ErrQuotaExhausted, got %v", err)
	}
	if errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatal("terminal quota error must not be the transient sentinel")
	}
	if caller.contentCalls != maxAttempts {
		t.Fatalf("expected %d attempts, got %d", maxAttempts, caller.contentCalls)
	}
	if len(delays) != maxAttempts-1 {
		t.Fatalf("expected %d sleeps, got %d", maxAttempts-1, len(delays))
	}
}

func TestPolicyErrorFailsImmediately(t *testing.T) {
	caller := &fakeCaller{content: func(int) (*genai.ContentResponse, error) {
		return nil, &genai.APIError{StatusCode: 400, Message: "generation failed: IMAGE_OTHER"}
	}}
	var delays []time.Duration
	o := newTestOrchestrator(caller, &delays)

	req := domain.GenerationRequest{Prompt: "p", Images: []domain.ReferenceImage{{Data: []byte("x")}}}
	_, err := o.Generate(context.Background(), req, domain.DefaultControls())
	if !errors.Is(err, domain.ErrContentPolicy) {
		t.Fatalf("expected ErrContentPolicy, got %v", err)
	}
	if caller.contentCalls != 1 {
		t.Fatalf("policy errors must not retry, got %d attempts", caller.contentCalls)
	}
	if len(delays) != 0 {
		t.Fatalf("policy errors must not back off, slept %v", delays)
	}
}

func TestBlockedResponseSurfacesReason(t *testing.T) {
	caller := &fakeCaller{content: func(int) (*genai.ContentResponse, error) {
		return &genai.ContentResponse{
			PromptFeedback: &genai.PromptFeedback{BlockReason: "SAFETY", BlockReasonMessage: "unsafe content"},
		}, nil
	}}
	o := newTestOrchestrator(caller, nil)

	req := domain.GenerationRequest{Prompt: "p", Images: []domain.ReferenceImage{{Data: []byte("x")}}}
	_, err := o.Generate(context.Background(), req, domain.DefaultControls())
	if err == nil || !strings.Contains(err.Error(), "SAFETY") {
		t.Fatalf("expected block reason in error, got %v", err)
	}
	if caller.contentCalls != 1 {
		t.Fatalf("blocked responses must not retry, got %d attempts", caller.contentCalls)
	}
}

func TestTextOnlyResponseIsAnError(t *testing.T) {
	caller := &fakeCaller{content: func(int) (*genai.ContentResponse, error) {
		resp := &genai.ContentResponse{Candidates: []genai.Candidate{{FinishReason: "STOP"}}}
		resp.Candidates[0].Content.Parts = []genai.Part{{Text: "I cannot draw that"}}
		return resp, nil
	}}
	o := newTestOrchestrator(caller, nil)

	req := domain.GenerationRequest{Prompt: "p", Images: []domain.ReferenceImage{{Data: []byte("x")}}}
	_, err := o.Generate(context.Background(), req, domain.DefaultControls())
	if err == nil || !strings.Contains(err.Error(), "returned text instead of an image") {
		t.Fatalf("expected text-instead-of-image error, got %v", err)
	}
}

func TestEmptyPredictionListRetriesAsFatal(t *testing.T) {
	caller := &fakeCaller{predict: func(int) (*genai.PredictResponse, error) {
		return &genai.PredictResponse{}, nil
	}}
	o := newTestOrchestrator(caller, nil)

	_, err := o.Generate(context.Background(), domain.GenerationRequest{Prompt: "p"}, domain.DefaultControls())
	if err == nil || !strings.Contains(err.Error(), "returned no images") {
		t.Fatalf("expected empty-batch error, got %v", err)
	}
	if caller.predictCalls != 1 {
		t.Fatalf("fatal errors must not retry, got %d calls", caller.predictCalls)
	}
}
