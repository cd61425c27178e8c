package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"agentchat-backend/internal/content"
)

const openaiSystemPrompt = "You are a helpful product assistant embedded in a chat UI. Reply in plain text."

// OpenAIResponder answers turns with a chat completion instead of canned
// content. Replies are wrapped as a single text block so the content protocol
// stays uniform across backends.
type OpenAIResponder struct {
	client *openai.Client
	model  string
	newID  func() string
}

func NewOpenAIResponder(apiKey, model string) (*OpenAIResponder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required for the openai backend")
	}
	return &OpenAIResponder{
		client: openai.NewClient(apiKey),
		model:  model,
		newID:  uuid.NewString,
	}, nil
}

func (o *OpenAIResponder) SendMessage(ctx context.Context, req Request) (Response, error) {
	completion, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: openaiSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.InputText},
		},
	})
	if err != nil {
		return Response{}, fmt.Errorf("openai completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return Response{}, fmt.Errorf("openai completion: empty choice list")
	}

	blocks := []content.Block{content.Text{Text: completion.Choices[0].Message.Content}}
	encoded, err := content.EncodeBlocks(blocks)
	if err != nil {
		return Response{}, fmt.Errorf("encode openai reply: %w", err)
	}
	return Response{
		Completion:       encoded,
		SessionID:        req.SessionID,
		RequestID:        o.newID(),
		PromptTokens:     completion.Usage.PromptTokens,
		CompletionTokens: completion.Usage.CompletionTokens,
	}, nil
}
