package domain

import "errors"

var (
	// ErrMissingAPIKey is returned before any network attempt when the
	// Gemini credential is absent from the environment.
	ErrMissingAPIKey = errors.New("GEMINI_API_KEY environment variable is not set. Please configure it to use the application")

	// ErrContentPolicy marks a generation the model refused or could not
	// satisfy. It is never retried.
	ErrContentPolicy = errors.New("the AI failed to generate the image. This can happen with very complex or contradictory requests. Please try simplifying your prompt or cinematic controls")

	// ErrQuotaExceeded marks a transient rate-limit failure that is still
	// eligible for retry.
	ErrQuotaExceeded = errors.New("API quota exceeded")

	// ErrQuotaExhausted is the terminal form of ErrQuotaExceeded, raised
	// only after the retry budget is spent.
	ErrQuotaExhausted = errors.New("API quota exceeded. The operation failed after several retries. Please check your usage or try again later")

	// ErrEmptyScene rejects generation before any call is issued.
	ErrEmptyScene = errors.New("scene description must not be blank")

	// ErrEmptyInstruction rejects an edit with no usable instruction text.
	ErrEmptyInstruction = errors.New("edit instruction must not be blank")

	// ErrNotFound covers gallery lookups for unknown image or session IDs.
	ErrNotFound = errors.New("not found")
)
