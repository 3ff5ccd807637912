package ai

import "context"

// Request is a single prompt sent to a completion provider.
type Request struct {
	// Prompt is the user message.
	Prompt string
	// System is an optional system instruction. Empty means none.
	System string
	// MaxTokens caps the length of the reply. Zero lets the provider decide.
	MaxTokens int
	// Temperature controls sampling. Zero is the default.
	Temperature float64
}

// Completer turns a prompt into the provider's raw text reply.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ModelNamer is implemented by completers that can report their model.
type ModelNamer interface {
	Model() string
}

// ModelOf returns the model behind c, or "unknown" when c does not say.
func ModelOf(c Completer) string {
	if n, ok := c.(ModelNamer); ok {
		if model := n.Model(); model != "" {
			return model
		}
	}
	return "unknown"
}
