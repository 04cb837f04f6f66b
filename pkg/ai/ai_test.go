package ai_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reverie-ai/reverie/pkg/ai"
	"github.com/reverie-ai/reverie/pkg/types"
)

func TestBuildReflectionPrompt(t *testing.T) {
	conversation := []types.Turn{
		{Sender: types.TURN_SENDER_USER, Text: "Today was a long day at work."},
		{Sender: types.TURN_SENDER_ASSISTANT, Text: "That sounds exhausting."},
		{Sender: types.TURN_SENDER_USER, Text: "Yeah, but I got through it."},
	}

	messages := ai.BuildReflectionPrompt("", conversation)
	assert.Len(t, messages, 4)
	assert.Equal(t, ai.ROLE_SYSTEM, messages[0].Role)
	assert.NotContains(t, messages[0].Content, "${lang}")
	assert.Contains(t, messages[0].Content, "English")

	assert.Equal(t, ai.ROLE_USER, messages[1].Role)
	assert.Equal(t, ai.ROLE_ASSISTANT, messages[2].Role)
	assert.Equal(t, "Yeah, but I got through it.", messages[3].Content)
}

func TestBuildReflectionPromptCustomBase(t *testing.T) {
	conversation := []types.Turn{
		{Sender: types.TURN_SENDER_USER, Text: "hello"},
	}

	messages := ai.BuildReflectionPrompt("Custom prompt. Reply in ${lang}.", conversation)
	assert.Equal(t, "Custom prompt. Reply in English.", messages[0].Content)
}

func TestBuildReflectionPromptDetectsChinese(t *testing.T) {
	conversation := []types.Turn{
		{Sender: types.TURN_SENDER_USER, Text: "今天工作特别忙，不过总算是都处理完了。"},
	}

	messages := ai.BuildReflectionPrompt("Reply in ${lang}.", conversation)
	assert.NotContains(t, messages[0].Content, "${lang}")
	assert.NotEqual(t, "Reply in English.", messages[0].Content)
}

func TestBoundConversationNoBudget(t *testing.T) {
	conversation := []types.Turn{
		{Sender: types.TURN_SENDER_USER, Text: "one"},
		{Sender: types.TURN_SENDER_ASSISTANT, Text: "two"},
	}

	assert.Equal(t, conversation, ai.BoundConversation(conversation, "gpt-4", 0))

	single := conversation[:1]
	assert.Equal(t, single, ai.BoundConversation(single, "gpt-4", 10))
}

func TestRenderConversationText(t *testing.T) {
	conversation := []types.Turn{
		{Sender: types.TURN_SENDER_USER, Text: "I slept badly"},
		{Sender: types.TURN_SENDER_ASSISTANT, Text: "What kept you up?"},
	}

	text := ai.RenderConversationText(conversation)
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, "user: I slept badly", lines[0])
	assert.Equal(t, "assistant: What kept you up?", lines[1])
}

func TestAudioFilename(t *testing.T) {
	name := ai.AudioFilename("c123")
	assert.True(t, strings.HasPrefix(name, "c123-"))
	assert.True(t, strings.HasSuffix(name, ".webm"))
}
