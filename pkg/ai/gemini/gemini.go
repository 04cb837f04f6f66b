package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/reverie-ai/reverie/pkg/ai"
)

const (
	NAME = "gemini"
)

type Driver struct {
	client *genai.Client
	model  string
}

func New(token, model string) *Driver {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(token))
	if err != nil {
		panic(err)
	}

	if model == "" {
		model = "gemini-1.5-flash-latest"
	}

	return &Driver{
		client: client,
		model:  model,
	}
}

func (s *Driver) Name() string {
	return NAME
}

func (s *Driver) Respond(ctx context.Context, prompt []ai.Message) (string, error) {
	slog.Debug("Respond", slog.String("driver", NAME), slog.String("model", s.model))

	model := s.client.GenerativeModel(s.model)

	system, history, last := splitChat(prompt)
	if system != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}

	session := model.StartChat()
	session.History = history

	resp, err := session.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return "", err
	}

	return flatten(resp), nil
}

// splitChat 拆分会话，最后一条用户消息作为本轮输入，其余进入history。
// 会话以assistant结尾时history保持完整，改用固定提示语驱动下一轮。
func splitChat(prompt []ai.Message) (system string, history []*genai.Content, last string) {
	for _, msg := range prompt {
		switch msg.Role {
		case ai.ROLE_SYSTEM:
			system = msg.Content
		case ai.ROLE_ASSISTANT:
			history = append(history, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(msg.Content)}})
		default:
			history = append(history, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(msg.Content)}})
		}
	}

	last = "Please continue."
	if n := len(history); n > 0 && history[n-1].Role == "user" {
		if text, ok := history[n-1].Parts[0].(genai.Text); ok {
			last = string(text)
		}
		history = history[:n-1]
	}

	return system, history, last
}

func (s *Driver) Summarize(ctx context.Context, conversationText string) (string, error) {
	slog.Debug("Summarize", slog.String("driver", NAME))

	model := s.client.GenerativeModel(s.model)
	model.SystemInstruction = genai.NewUserContent(genai.Text(ai.PROMPT_TITLE_EN + "\nRespond with the title only, no quotes, no punctuation around it."))

	resp, err := model.GenerateContent(ctx, genai.Text(conversationText))
	if err != nil {
		return "", err
	}

	title := strings.TrimSpace(flatten(resp))
	if title == "" {
		return "", fmt.Errorf("summarize returned no title")
	}
	return title, nil
}

func flatten(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return b.String()
}
