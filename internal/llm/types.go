package llm

import (
	"context"
	"errors"
)

// message roles accepted by chat completion backends
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	ErrRateLimited   = errors.New("completion backend rate limit exceeded")
	ErrEmptyResponse = errors.New("completion backend returned no choices")
)

type Message struct {
	Role    string `json:"role" binding:"required,oneof=system user assistant"`
	Content string `json:"content" binding:"required"`
}

// CompletionRequest is one call to one model.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func (u Usage) Add(o Usage) Usage {
	return Usage{
		PromptTokens:     u.PromptTokens + o.PromptTokens,
		CompletionTokens: u.CompletionTokens + o.CompletionTokens,
		TotalTokens:      u.TotalTokens + o.TotalTokens,
	}
}

// Completion is a normalized backend response.
type Completion struct {
	Text  string
	Model string
	Usage Usage
}

// Completer turns a message list into generated text for one model.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}
