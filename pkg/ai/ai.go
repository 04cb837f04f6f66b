package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"
	openai "github.com/sashabaranov/go-openai"

	"github.com/reverie-ai/reverie/pkg/types"
	"github.com/reverie-ai/reverie/pkg/utils"
)

const (
	ROLE_SYSTEM    = "system"
	ROLE_USER      = "user"
	ROLE_ASSISTANT = "assistant"
)

// Message is one role-tagged line of a reflection prompt. Drivers convert
// it to their own wire shape.
type Message struct {
	Role    string
	Content string
}

// ReflectDriver produces the assistant side of a journal conversation.
// Single attempt, no retry; callers decide the fallback.
type ReflectDriver interface {
	Name() string
	Respond(ctx context.Context, prompt []Message) (string, error)
	Summarize(ctx context.Context, conversationText string) (string, error)
}

// TranscribeDriver turns captured audio into text.
type TranscribeDriver interface {
	Name() string
	Transcribe(ctx context.Context, filename string, audio []byte) (string, error)
}

// BuildReflectionPrompt renders the conversation as role-tagged messages
// behind a system prompt that pins the reply language to the language of
// the latest user turn.
func BuildReflectionPrompt(base string, conversation []types.Turn) []Message {
	if base == "" {
		base = PROMPT_REFLECTION_EN
	}

	lang := "English"
	for i := len(conversation) - 1; i >= 0; i-- {
		if conversation[i].Sender == types.TURN_SENDER_USER {
			lang = utils.WhatLang(conversation[i].Text)
			break
		}
	}

	messages := []Message{{Role: ROLE_SYSTEM, Content: strings.ReplaceAll(base, "${lang}", lang)}}
	for _, turn := range conversation {
		role := ROLE_USER
		if turn.Sender == types.TURN_SENDER_ASSISTANT {
			role = ROLE_ASSISTANT
		}
		messages = append(messages, Message{Role: role, Content: turn.Text})
	}
	return messages
}

// BoundConversation drops the oldest turns until the rendered prompt fits
// maxTokens. The latest turn always survives, over budget or not.
func BoundConversation(conversation []types.Turn, model string, maxTokens int) []types.Turn {
	if maxTokens <= 0 || len(conversation) <= 1 {
		return conversation
	}

	for len(conversation) > 1 {
		n, err := NumTokens(turnsAsMessages(conversation), model)
		if err != nil || n <= maxTokens {
			return conversation
		}
		conversation = conversation[1:]
	}
	return conversation
}

func turnsAsMessages(conversation []types.Turn) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(conversation))
	for _, turn := range conversation {
		out = append(out, openai.ChatCompletionMessage{
			Role:    string(turn.Sender),
			Content: turn.Text,
		})
	}
	return out
}

// RenderConversationText flattens a conversation for the title/summary
// call, one "role: text" line per turn.
func RenderConversationText(conversation []types.Turn) string {
	var b strings.Builder
	for _, turn := range conversation {
		b.WriteString(string(turn.Sender))
		b.WriteString(": ")
		b.WriteString(turn.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// AudioFilename names an uploaded capture chunk for drivers that sniff
// the format from the extension.
func AudioFilename(sessionID string) string {
	return fmt.Sprintf("%s-%d.webm", sessionID, time.Now().Unix())
}

// NumTokens counts prompt tokens the way the OpenAI cookbook does.
func NumTokens(messages []openai.ChatCompletionMessage, model string) (numTokens int, err error) {
	var tokensPerMessage, tokensPerName int
	switch model {
	case "gpt-3.5-turbo-0613",
		"gpt-3.5-turbo-16k-0613",
		"gpt-4-0314",
		"gpt-4-32k-0314",
		"gpt-4-0613",
		"gpt-4-32k-0613":
		tokensPerMessage = 3
		tokensPerName = 1
	case "gpt-3.5-turbo-0301":
		tokensPerMessage = 4 // every message follows <|start|>{role/name}\n{content}<|end|>\n
		tokensPerName = -1   // if there's a name, the role is omitted
	default:
		if strings.Contains(model, "gpt-4") {
			return NumTokens(messages, "gpt-4-0613")
		} else {
			return NumTokens(messages, "gpt-3.5-turbo-0613")
		}
	}

	tkm, err := tiktoken.EncodingForModel(model)
	if err != nil {
		err = fmt.Errorf("encoding for model: %v", err)
		return
	}

	for _, message := range messages {
		numTokens += tokensPerMessage
		numTokens += len(tkm.Encode(message.Content, nil, nil))
		numTokens += len(tkm.Encode(message.Role, nil, nil))
		numTokens += len(tkm.Encode(message.Name, nil, nil))
		if message.Name != "" {
			numTokens += tokensPerName
		}
	}
	numTokens += 3 // every reply is primed with <|start|>assistant<|message|>
	return numTokens, nil
}
