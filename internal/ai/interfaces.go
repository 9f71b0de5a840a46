package ai

import (
	"context"
	"fmt"
)

// Message 对话消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionOptions 单次补全调用参数
type CompletionOptions struct {
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// Completer issues one completion call. Implementations that stream must
// concatenate chunks in order before returning; no partial results cross
// this boundary.
type Completer interface {
	Complete(ctx context.Context, messages []Message, opts CompletionOptions) (string, error)
}

// UpstreamError wraps a failed completion call for a named stage. Stages do
// not retry and do not fall back to another model.
type UpstreamError struct {
	Stage string
	Err   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("stage %s: upstream error: %v", e.Stage, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
