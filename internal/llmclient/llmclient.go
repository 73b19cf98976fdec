// Package llmclient defines the chat-completion contract shared by the
// response generator and summary generator, and the Anthropic/OpenAI
// backends that implement it.
package llmclient

import (
	"context"
	"errors"
)

// Role identifies a message's speaker within a chat-completion request.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in a chat-completion request.
type Message struct {
	Role    Role
	Content string
}

// Request is the full chat-completion request shape, identical across
// backends so callers never branch on which provider is configured.
type Request struct {
	Model            string
	Messages         []Message
	Temperature      float64 // [0, 2]
	MaxTokens        int
	TopP             float64
	PresencePenalty  float64
	FrequencyPenalty float64
	Stop             []string
}

// Usage carries token accounting for cost/latency telemetry.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response is the generation result: the first choice's content plus usage.
type Response struct {
	Content string
	Usage   Usage
}

// ErrEmptyResponse is returned when a provider succeeds but returns no
// usable content; callers fall back to a template bank rather than treat
// this as transient.
var ErrEmptyResponse = errors.New("llmclient: empty completion response")

// Provider is the minimal contract the response generator and summary
// generator depend on. internal/conversation and internal/summary never
// import a concrete backend package directly.
type Provider interface {
	Complete(ctx context.Context, req Request) (Response, error)
}
