package generation

import (
	"context"
	"log"

	"github.com/adocshq/adocs/internal/knowledge"
	"github.com/adocshq/adocs/internal/llm"
	"github.com/adocshq/adocs/internal/metadata"
	"github.com/adocshq/adocs/internal/sections"
)

// Executor drives a full generation: augment, call the model with
// transport retries, validate, and run at most one repair pass when the
// reply does not parse.
type Executor struct {
	Client      llm.Client
	Model       string
	Temperature float64
	MaxTokens   int
	Retry       RetryPolicy

	augmenter Augmenter
}

// NewExecutor builds an executor with the default retry policy.
func NewExecutor(client llm.Client, model string, temperature float64) *Executor {
	return &Executor{
		Client:      client,
		Model:       model,
		Temperature: temperature,
		MaxTokens:   8192,
		Retry:       DefaultRetryPolicy(),
	}
}

// Result is a successful generation plus its token accounting.
type Result struct {
	Structure    *sections.Structure
	InputTokens  int
	OutputTokens int
	Repaired     bool
}

// Generate produces a documentation structure for the given metadata,
// grounded on the retrieved exemplars.
func (e *Executor) Generate(ctx context.Context, meta *metadata.RepoMetadata, exemplars []knowledge.Scored) (*Result, error) {
	prompt, err := e.augmenter.BuildPrompt(meta, exemplars)
	if err != nil {
		return nil, &Error{Kind: KindMalformedOutput, Err: err}
	}

	resp, err := e.call(ctx, prompt)
	if err != nil {
		return nil, &Error{Kind: KindUnavailable, Err: err}
	}
	result := &Result{
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
	}

	st, parseErr := ParseStructure(resp.Content)
	if parseErr == nil {
		result.Structure = st
		return result, nil
	}

	// One repair attempt with the failure echoed back. A second
	// malformed reply is final.
	log.Printf("generation: malformed output for %s, attempting repair: %v", meta.RepoURL, parseErr)
	repairResp, err := e.call(ctx, repairPrompt(prompt, resp.Content, parseErr))
	if err != nil {
		return nil, &Error{Kind: KindUnavailable, Err: err}
	}
	result.InputTokens += repairResp.InputTokens
	result.OutputTokens += repairResp.OutputTokens

	st, parseErr = ParseStructure(repairResp.Content)
	if parseErr != nil {
		return nil, &Error{Kind: KindMalformedOutput, Err: parseErr}
	}
	result.Structure = st
	result.Repaired = true
	return result, nil
}

func (e *Executor) call(ctx context.Context, prompt string) (*llm.Response, error) {
	req := llm.Request{
		Model:       e.Model,
		System:      e.augmenter.SystemPrompt(),
		Prompt:      prompt,
		MaxTokens:   e.MaxTokens,
		Temperature: e.Temperature,
		JSONMode:    true,
	}
	return e.Retry.complete(ctx, e.Client, req)
}
