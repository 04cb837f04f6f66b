package gemini

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reverie-ai/reverie/pkg/ai"
)

func contentText(t *testing.T, c *genai.Content) string {
	t.Helper()
	require.Len(t, c.Parts, 1)
	text, ok := c.Parts[0].(genai.Text)
	require.True(t, ok)
	return string(text)
}

func TestSplitChatEndsWithUser(t *testing.T) {
	system, history, last := splitChat([]ai.Message{
		{Role: ai.ROLE_SYSTEM, Content: "be gentle"},
		{Role: ai.ROLE_USER, Content: "hello"},
		{Role: ai.ROLE_ASSISTANT, Content: "hi there"},
		{Role: ai.ROLE_USER, Content: "today was rough"},
	})

	assert.Equal(t, "be gentle", system)
	assert.Equal(t, "today was rough", last)

	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "hello", contentText(t, history[0]))
	assert.Equal(t, "model", history[1].Role)
	assert.Equal(t, "hi there", contentText(t, history[1]))
}

// 会话以assistant结尾时不能丢掉它，也不能把旧的用户消息再发一遍
func TestSplitChatEndsWithAssistant(t *testing.T) {
	_, history, last := splitChat([]ai.Message{
		{Role: ai.ROLE_USER, Content: "hello"},
		{Role: ai.ROLE_ASSISTANT, Content: "hi there"},
	})

	assert.Equal(t, "Please continue.", last)

	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "model", history[1].Role)
	assert.Equal(t, "hi there", contentText(t, history[1]))
}

func TestSplitChatNoUserTurns(t *testing.T) {
	_, history, last := splitChat([]ai.Message{
		{Role: ai.ROLE_SYSTEM, Content: "be gentle"},
		{Role: ai.ROLE_ASSISTANT, Content: "welcome back"},
	})

	assert.NotEmpty(t, last)
	require.Len(t, history, 1)
	assert.Equal(t, "model", history[0].Role)
}

func TestSplitChatEmpty(t *testing.T) {
	system, history, last := splitChat(nil)

	assert.Empty(t, system)
	assert.Empty(t, history)
	assert.NotEmpty(t, last)
}
