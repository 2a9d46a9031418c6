package port

// GenerateOptions bounds one generation call.
type GenerateOptions struct {
	Temperature float32 // sampling randomness, 0 leans deterministic
	MaxTokens   int     // output length budget
}

// Generator represents a language model for text generation. The engine's
// only coupling is "prompt in, text out" so implementations can be swapped
// without touching orchestration logic.
type Generator interface {
	// Generate generates text for the prompt.
	Generate(prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}
