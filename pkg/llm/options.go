// Package llm provides options pattern for LLM request parameters.
//
// Defaults come from the model definition in config.yaml and can be
// overridden per call (CLI flags, HTTP body).
package llm

// Option is a functional option for configuring a Request.
type Option func(*Request)

// NewRequest builds a Request for the given input text.
func NewRequest(input string, opts ...Option) Request {
	req := Request{Input: input}
	for _, opt := range opts {
		opt(&req)
	}
	return req
}

// WithModel sets the model for generation.
func WithModel(model string) Option {
	return func(r *Request) {
		r.Model = model
	}
}

// WithInstructions sets the system instructions.
// Blank instructions are not sent to the provider.
func WithInstructions(instructions string) Option {
	return func(r *Request) {
		r.Instructions = instructions
	}
}

// WithJSONOutput asks the provider for a JSON object response.
func WithJSONOutput(enabled bool) Option {
	return func(r *Request) {
		r.JSONOutput = enabled
	}
}

// WithTemperature sets the temperature for generation.
// Zero keeps the provider default.
func WithTemperature(temp float64) Option {
	return func(r *Request) {
		r.Temperature = temp
	}
}

// WithMaxTokens sets the maximum tokens for generation.
// Zero keeps the provider default.
func WithMaxTokens(tokens int) Option {
	return func(r *Request) {
		r.MaxTokens = tokens
	}
}
