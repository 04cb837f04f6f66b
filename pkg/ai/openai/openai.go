package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/reverie-ai/reverie/pkg/ai"
)

const (
	NAME = "openai"
)

type Driver struct {
	client          *openai.Client
	model           string
	transcribeModel string
}

func NewClient(token, proxy string) *openai.Client {
	cfg := openai.DefaultConfig(token)
	if proxy != "" {
		cfg.BaseURL = proxy
	}

	return openai.NewClientWithConfig(cfg)
}

func New(token, proxy, model string) *Driver {
	if model == "" {
		model = openai.GPT4oMini
	}

	return &Driver{
		client:          NewClient(token, proxy),
		model:           model,
		transcribeModel: openai.Whisper1,
	}
}

func (s *Driver) Name() string {
	return NAME
}

func (s *Driver) Respond(ctx context.Context, prompt []ai.Message) (string, error) {
	slog.Debug("Respond", slog.String("driver", NAME), slog.String("model", s.model))

	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: lo.Map(prompt, func(item ai.Message, _ int) openai.ChatCompletionMessage {
			return openai.ChatCompletionMessage{
				Role:    item.Role,
				Content: item.Content,
			}
		}),
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("Completion error: err:%v len(choices):%v", err, len(resp.Choices))
	}

	return resp.Choices[0].Message.Content, nil
}

const SummarizeFuncName = "summarize"

// Summarize asks for a title via a function call so the model can't wrap
// it in prose.
func (s *Driver) Summarize(ctx context.Context, conversationText string) (string, error) {
	slog.Debug("Summarize", slog.String("driver", NAME))
	params := jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"title": {
				Type:        jsonschema.String,
				Description: "A short title (at most six words) for the journal conversation, in the user's language.",
			},
		},
		Required: []string{"title"},
	}

	f := openai.FunctionDefinition{
		Name:        SummarizeFuncName,
		Description: "Title the journal conversation.",
		Parameters:  params,
	}
	t := openai.Tool{
		Type:     openai.ToolTypeFunction,
		Function: &f,
	}

	dialogue := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: ai.PROMPT_TITLE_EN},
		{Role: openai.ChatMessageRoleUser, Content: conversationText},
	}

	resp, err := s.client.CreateChatCompletion(ctx,
		openai.ChatCompletionRequest{
			Model:    s.model,
			Messages: dialogue,
			Tools:    []openai.Tool{t},
		},
	)
	if err != nil || len(resp.Choices) != 1 {
		return "", fmt.Errorf("Completion error: err:%v len(choices):%v", err, len(resp.Choices))
	}

	var result struct {
		Title string `json:"title"`
	}
	for _, v := range resp.Choices[0].Message.ToolCalls {
		if v.Function.Name != SummarizeFuncName {
			continue
		}
		if err = json.Unmarshal([]byte(v.Function.Arguments), &result); err != nil {
			return "", fmt.Errorf("failed to unmarshal func call arguments of summarize, %w", err)
		}
	}

	if result.Title == "" {
		return "", fmt.Errorf("summarize returned no title")
	}
	return result.Title, nil
}

// Transcribe runs Whisper on the given audio bytes.
func (s *Driver) Transcribe(ctx context.Context, filename string, audio []byte) (string, error) {
	slog.Debug("Transcribe", slog.String("driver", NAME), slog.Int("bytes", len(audio)))

	resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    s.transcribeModel,
		FilePath: filename,
		Reader:   bytes.NewReader(audio),
	})
	if err != nil {
		return "", fmt.Errorf("Transcription error: %w", err)
	}

	return resp.Text, nil
}
