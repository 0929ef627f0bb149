// Package rewrite improves user-written scene descriptions and edit
// instructions through the text model. Failures never surface to the
// caller: every error degrades to a usable fallback text.
package rewrite

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"storycanvas/internal/infra"
	"storycanvas/internal/providers/genai"
)

// Rewriter turns terse user input into detailed prompts.
type Rewriter interface {
	ImproveScene(ctx context.Context, scene string, hasCharacterImages bool) (string, error)
	ImproveEditInstruction(ctx context.Context, instruction string, hasReferenceImage, hasMask bool) (string, error)
}

// ContentCaller is the slice of the genai client the rewriter needs.
type ContentCaller interface {
	GenerateContent(ctx context.Context, model string, parts []genai.Part, cfg *genai.GenerateConfig) (*genai.ContentResponse, error)
}

// GeminiRewriter implements Rewriter against the text model with thinking
// disabled, trading quality for latency on these short completions.
type GeminiRewriter struct {
	caller ContentCaller
	model  string
	logger *infra.Logger
}

type Options struct {
	Caller ContentCaller
	Model  string
	Logger *infra.Logger
}

func NewGeminiRewriter(opts Options) *GeminiRewriter {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	logger := opts.Logger
	if logger == nil {
		discard := infra.Logger(zerolog.New(io.Discard))
		logger = &discard
	}
	return &GeminiRewriter{caller: opts.Caller, model: model, logger: logger}
}

var _ Rewriter = (*GeminiRewriter)(nil)

const sceneCharacterInstruction = `This is the most critical instruction: The user has provided reference images for characters. Your primary and most important goal is to craft a description that ensures the image generation model preserves the exact facial features, hair, and overall likeness of these characters with the highest possible fidelity. The entire cinematic description you create should be built around this core requirement of character preservation. All other atmospheric and descriptive enhancements are secondary to maintaining the character's appearance.`

// starTrim strips the asterisk runs the model sometimes wraps its output in.
var starTrim = regexp.MustCompile(`^\*+\s*|\s*\*+$`)

// ImproveScene expands a scene description into a vivid cinematic one.
// Blank input returns "" without a call; any failure returns the original
// description unchanged.
func (g *GeminiRewriter) ImproveScene(ctx context.Context, scene string, hasCharacterImages bool) (string, error) {
	if strings.TrimSpace(scene) == "" {
		return "", nil
	}

	characterInstruction := ""
	if hasCharacterImages {
		characterInstruction = sceneCharacterInstruction
	}
	metaPrompt := fmt.Sprintf(`You are a master prompt engineer for a powerful AI image generation model. Your task is to take a user's simple scene description and expand it into a more vivid, detailed, and atmospheric prompt that will produce a high-quality, cinematic image.

%s

Your enhancement should focus on sensory details, lighting, mood, and composition. Do not change the core subject of the user's description, but build upon it.

The final output must ONLY be the new, improved scene description itself, without any conversational text, explanation, or markdown formatting.

User's Description: %q

Generate the professional, enhanced scene description now.`, characterInstruction, scene)

	text, err := g.complete(ctx, metaPrompt, 0.5)
	if err != nil || text == "" {
		g.logger.Warn().Err(err).Msg("rewrite: scene improvement failed, keeping original")
		return scene, nil
	}
	return text, nil
}

// ImproveEditInstruction rewrites an edit instruction into a professional
// editing prompt. Blank input returns "" without a call; failures degrade
// to a template assembled from the instruction and the provided flags.
func (g *GeminiRewriter) ImproveEditInstruction(ctx context.Context, instruction string, hasReferenceImage, hasMask bool) (string, error) {
	if strings.TrimSpace(instruction) == "" {
		return "", nil
	}

	refClause := "not provided a secondary reference image"
	if hasReferenceImage {
		refClause = "provided a secondary reference image"
	}
	maskClause := "not provided a mask, so the edit should be applied to the most logical area of the image."
	if hasMask {
		maskClause = "provided a black and white mask image. The white area of the mask specifies the exact region to be edited."
	}
	maskRule := ""
	if hasMask {
		maskRule = "CRITICAL: Instruct the model to apply the change ONLY within the white area of the provided mask, leaving the black areas completely untouched. This is the most important instruction."
	}
	refRule := ""
	if hasReferenceImage {
		refRule = "Incorporate details from the reference image, instructing the model to blend its style, subject, or features into the masked area of the base image."
	}

	metaPrompt := fmt.Sprintf(`You are a master prompt engineer for a powerful AI image generation model that can edit existing images based on text, an optional reference image, and an optional mask.

Your task is to take a user's simple edit instruction and create a sophisticated, detailed, and professional prompt that will produce a high-quality, seamless, and photorealistic result.

Here is the context:
- The base image is the starting point for the edit.
- The user provides an instruction: %q.
- The user has %s to guide the edit.
- The user has %s

Your generated prompt must:
1.  Clearly state the primary editing action based on the user's instruction.
2.  %s
3.  %s
4.  Emphasize maintaining the overall style, lighting, and composition of the base image to ensure the edit looks natural and not "pasted on", especially at the boundary of the masked region.
5.  Use descriptive and professional language that the image model will understand well (e.g., use terms like 'seamlessly integrate', 'match the lighting and color grading', 'ensure realistic shadows and reflections at the mask edge').
6.  The final output should ONLY be the new prompt itself, without any conversational text, explanation, or markdown formatting like "**".

User Instruction: %q

Generate the professional prompt now.`, instruction, refClause, maskClause, maskRule, refRule, instruction)

	text, err := g.complete(ctx, metaPrompt, 0.4)
	if err != nil || text == "" {
		g.logger.Warn().Err(err).Msg("rewrite: edit improvement failed, using fallback template")
		return editFallback(instruction, hasReferenceImage, hasMask), nil
	}
	return starTrim.ReplaceAllString(text, ""), nil
}

func (g *GeminiRewriter) complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	budget := 0
	resp, err := g.caller.GenerateContent(ctx, g.model, []genai.Part{genai.TextPart(prompt)}, &genai.GenerateConfig{
		Temperature:    temperature,
		TopP:           0.95,
		TopK:           40,
		ThinkingBudget: &budget,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}

func editFallback(instruction string, hasReferenceImage, hasMask bool) string {
	fallback := fmt.Sprintf("Apply the following edit: %q.", instruction)
	if hasMask {
		fallback += " Confine the edit strictly to the masked area."
	}
	if hasReferenceImage {
		fallback += " Use the provided reference image for inspiration."
	}
	fallback += " Ensure the result is high-quality and seamlessly integrated."
	return fallback
}
