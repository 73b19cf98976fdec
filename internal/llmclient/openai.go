package llmclient

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/packages/param"
	"github.com/openai/openai-go/v2/shared"

	"ninjaengine/internal/domain"
)

// OpenAIProvider implements Provider against the OpenAI Chat Completions API.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

// NewOpenAIProvider constructs a provider bound to model. baseURL empty
// uses the SDK's default endpoint, which also covers OpenAI-compatible
// self-hosted gateways.
func NewOpenAIProvider(apiKey, model, baseURL string) *OpenAIProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIProvider{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (Response, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case RoleUser:
			messages = append(messages, openai.UserMessage(m.Content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	model := p.model
	if req.Model != "" {
		model = req.Model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 256
	}

	params := openai.ChatCompletionNewParams{
		Model:            shared.ChatModel(model),
		Messages:         messages,
		Temperature:      param.NewOpt(req.Temperature),
		TopP:             param.NewOpt(req.TopP),
		PresencePenalty:  param.NewOpt(req.PresencePenalty),
		FrequencyPenalty: param.NewOpt(req.FrequencyPenalty),
		MaxTokens:        param.NewOpt(int64(maxTokens)),
	}
	if len(req.Stop) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: req.Stop}
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Response{}, fmt.Errorf("%w: openai completion: %v", domain.ErrTransient, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return Response{}, ErrEmptyResponse
	}

	return Response{
		Content: resp.Choices[0].Message.Content,
		Usage: Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}
