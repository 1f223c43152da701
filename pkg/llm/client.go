package llm

import "context"

// Inferencer runs one prompt through a model and returns the raw text. Callers
// must treat an error or empty result as "no usable text" and fall back to a
// default of their own.
type Inferencer interface {
	Infer(ctx context.Context, prompt string) (string, error)
}
