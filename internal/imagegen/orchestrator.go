// Package imagegen drives image generation against the Gemini API: it
// routes requests between the image-conditioned and text-to-image models,
// classifies failures, and retries quota errors with exponential backoff.
package imagegen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"storycanvas/internal/domain"
	"storycanvas/internal/infra"
	"storycanvas/internal/providers/genai"
)

// Caller is the slice of the genai client the orchestrator needs.
type Caller interface {
	GenerateContent(ctx context.Context, model string, parts []genai.Part, cfg *genai.GenerateConfig) (*genai.ContentResponse, error)
	PredictImages(ctx context.Context, model, prompt string, cfg genai.PredictConfig) (*genai.PredictResponse, error)
}

const (
	maxAttempts   = 5
	baseBackoff   = 3 * time.Second
	maxJitter     = time.Second
	defaultOutput = "image/png"
)

// Options configures an Orchestrator.
type Options struct {
	Caller     Caller
	ImageModel string
	BatchModel string
	Logger     *infra.Logger

	// Sleep and Jitter exist for tests; nil selects the real clock.
	Sleep  func(ctx context.Context, d time.Duration) error
	Jitter func() time.Duration
}

// Orchestrator fans requests out to the generation models and normalizes
// every outcome into results or one of the domain error classes.
type Orchestrator struct {
	caller     Caller
	imageModel string
	batchModel string
	logger     *infra.Logger
	sleep      func(ctx context.Context, d time.Duration) error
	jitter     func() time.Duration
}

func NewOrchestrator(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		discard := infra.Logger(zerolog.New(io.Discard))
		logger = &discard
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	jitter := opts.Jitter
	if jitter == nil {
		jitter = func() time.Duration { return time.Duration(rand.Int63n(int64(maxJitter))) }
	}
	imageModel := opts.ImageModel
	if imageModel == "" {
		imageModel = "gemini-2.5-flash-image"
	}
	batchModel := opts.BatchModel
	if batchModel == "" {
		batchModel = "imagen-4.0-generate-001"
	}
	return &Orchestrator{
		caller:     opts.Caller,
		imageModel: imageModel,
		batchModel: batchModel,
		logger:     logger,
		sleep:      sleep,
		jitter:     jitter,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Generate produces the requested number of images. Requests carrying
// reference images run as independent single-image calls against the
// image-conditioned model; text-only requests go out as one batch call.
func (o *Orchestrator) Generate(ctx context.Context, req domain.GenerationRequest, controls domain.CinematicControls) ([]domain.GenerationResult, error) {
	count := controls.NumberOfImages
	if count < 1 {
		count = 1
	}
	if len(req.Images) > 0 {
		return o.generateConditioned(ctx, req, count)
	}
	return o.generateBatch(ctx, req, count, string(controls.AspectRatio))
}

// generateConditioned runs count parallel single-image calls. Any failing
// call cancels the rest; partial batches are never returned.
func (o *Orchestrator) generateConditioned(ctx context.Context, req domain.GenerationRequest, count int) ([]domain.GenerationResult, error) {
	results := make([]domain.GenerationResult, count)
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < count; i++ {
		i := i
		g.Go(func() error {
			result, err := o.generateOne(ctx, req)
			if err != nil {
				return err
			}
			results[i] = *result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (o *Orchestrator) generateOne(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	parts := make([]genai.Part, 0, len(req.Images)+1)
	for _, img := range req.Images {
		parts = append(parts, genai.ImagePart(img))
	}
	parts = append(parts, genai.TextPart(req.Prompt))
	cfg := &genai.GenerateConfig{ResponseModalities: []string{"IMAGE", "TEXT"}}

	var result *domain.GenerationResult
	err := o.withRetries(ctx, func() error {
		resp, err := o.caller.GenerateContent(ctx, o.imageModel, parts, cfg)
		if err != nil {
			return err
		}
		result, err = extractImage(resp, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// generateBatch issues one predict call for the whole batch; retries cover
// the batch as a unit.
func (o *Orchestrator) generateBatch(ctx context.Context, req domain.GenerationRequest, count int, aspectRatio string) ([]domain.GenerationResult, error) {
	var results []domain.GenerationResult
	err := o.withRetries(ctx, func() error {
		resp, err := o.caller.PredictImages(ctx, o.batchModel, req.Prompt, genai.PredictConfig{
			SampleCount:    count,
			AspectRatio:    aspectRatio,
			OutputMIMEType: defaultOutput,
		})
		if err != nil {
			return err
		}
		if len(resp.Predictions) == 0 {
			return errors.New("image generation failed: the API returned no images")
		}
		results = results[:0]
		for _, p := range resp.Predictions {
			mime := p.MIMEType
			if mime == "" {
				mime = defaultOutput
			}
			results = append(results, domain.GenerationResult{
				ImageURL: dataURLFromBase64(mime, p.BytesBase64Encoded),
				Prompt:   req.Prompt,
				Payload:  req,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// extractImage walks the response for inline image data and maps every
// empty shape to the message the caller surfaces.
func extractImage(resp *genai.ContentResponse, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	if len(resp.Candidates) == 0 {
		if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
			msg := fmt.Sprintf("request was blocked. Reason: %s.", fb.BlockReason)
			if fb.BlockReasonMessage != "" {
				msg += " Message: " + fb.BlockReasonMessage
			}
			return nil, errors.New(msg)
		}
		return nil, errors.New("image generation failed: the API returned no candidates. This might be due to a content filter or other policy violation")
	}

	candidate := resp.Candidates[0]
	if len(candidate.Content.Parts) == 0 {
		if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
			return nil, fmt.Errorf("request was blocked. Reason: %s. Message: %s",
				fb.BlockReason, orDefault(fb.BlockReasonMessage, "no specific message provided"))
		}
		if candidate.FinishReason != "" && candidate.FinishReason != "STOP" {
			return nil, fmt.Errorf("image generation finished unexpectedly. Reason: %s. %s",
				candidate.FinishReason, candidate.FinishMessage)
		}
		return nil, errors.New("invalid response structure from API: the candidate has no content parts")
	}

	for _, part := range candidate.Content.Parts {
		if part.InlineData != nil && part.InlineData.Data != "" {
			return &domain.GenerationResult{
				ImageURL: dataURLFromBase64(orDefault(part.InlineData.MIMEType, defaultOutput), part.InlineData.Data),
				Prompt:   req.Prompt,
				Payload:  req,
			}, nil
		}
	}
	return nil, fmt.Errorf("image generation failed. Model returned text instead of an image: %s",
		orDefault(strings.TrimSpace(resp.Text()), "no image data was found in the response"))
}

// withRetries runs fn up to maxAttempts times. Only quota errors are
// retried; policy errors and everything else fail the call on the spot.
func (o *Orchestrator) withRetries(ctx context.Context, fn func() error) error {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrMissingAPIKey) || ctx.Err() != nil {
			return err
		}

		switch classify(err) {
		case classPolicy:
			o.logger.Warn().Err(err).Int("attempt", attempt).Msg("imagegen: policy failure, not retrying")
			return fmt.Errorf("%w: %s", domain.ErrContentPolicy, err)
		case classQuota:
			if attempt == maxAttempts {
				return domain.ErrQuotaExhausted
			}
			delay := baseBackoff*(1<<attempt) + o.jitter()
			o.logger.Warn().
				Err(err).
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("imagegen: quota exceeded, backing off")
			if err := o.sleep(ctx, delay); err != nil {
				return err
			}
		default:
			return fmt.Errorf("the image generation API failed: %w", err)
		}
	}
	return domain.ErrQuotaExhausted
}

type errorClass int

const (
	classFatal errorClass = iota
	classPolicy
	classQuota
)

// classify inspects the error text the way the API actually reports these
// conditions: IMAGE_OTHER for refusals, 429/quota/RESOURCE_EXHAUSTED for
// rate limits.
func classify(err error) errorClass {
	text := strings.ToLower(err.Error())
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		text = strings.ToLower(fmt.Sprintf("%d %s %s", apiErr.StatusCode, apiErr.Status, apiErr.Message))
	}
	if strings.Contains(text, "image_other") {
		return classPolicy
	}
	if strings.Contains(text, "429") || strings.Contains(text, "quota") || strings.Contains(text, "resource_exhausted") {
		return classQuota
	}
	return classFatal
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
