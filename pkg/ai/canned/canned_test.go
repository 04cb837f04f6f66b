package canned

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reverie-ai/reverie/pkg/ai"
)

func userMsg(text string) ai.Message {
	return ai.Message{Role: ai.ROLE_USER, Content: text}
}

func TestRespondKeywordMatch(t *testing.T) {
	ctx := context.Background()
	d := New()

	reply, err := d.Respond(ctx, []ai.Message{userMsg("I'm so TIRED today")})
	require.NoError(t, err)
	assert.Contains(t, reply, "energy")

	// the latest user turn decides, not earlier ones
	reply, err = d.Respond(ctx, []ai.Message{
		userMsg("I'm so tired"),
		{Role: ai.ROLE_ASSISTANT, Content: "Tell me more"},
		userMsg("mostly it's my job"),
	})
	require.NoError(t, err)
	assert.Contains(t, reply, "Work")
}

func TestRespondDefaultsRotate(t *testing.T) {
	ctx := context.Background()
	d := New()

	first, err := d.Respond(ctx, []ai.Message{userMsg("xyzzy")})
	require.NoError(t, err)
	second, err := d.Respond(ctx, []ai.Message{userMsg("xyzzy")})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	// two fresh drivers produce the same sequence
	other := New()
	again, err := other.Respond(ctx, []ai.Message{userMsg("xyzzy")})
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()
	d := New()

	title, err := d.Summarize(ctx, "user: today was a very long day at the office\nassistant: tell me more\n")
	require.NoError(t, err)
	assert.Equal(t, "today was a very long", title)

	title, err = d.Summarize(ctx, "assistant: how was your day?\n")
	require.NoError(t, err)
	assert.Equal(t, "Journal Entry", title)
}

func TestTranscribeDeterministic(t *testing.T) {
	ctx := context.Background()
	d := New()

	text, err := d.Transcribe(ctx, "s1-1.webm", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, "transcript of s1-1.webm", text)

	empty, err := d.Transcribe(ctx, "s1-2.webm", nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
