package llm

import "context"

// Client is the boundary to an external LLM. Implementations block on
// network I/O; callers bound each call with a context deadline.
type Client interface {
	// Complete sends a completion request and returns the reply.
	Complete(ctx context.Context, req Request) (*Response, error)
	// Name returns the provider name.
	Name() string
}

// Request contains the parameters of a completion call.
type Request struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
	JSONMode    bool
}

// Response contains the reply of a completion call.
type Response struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}
