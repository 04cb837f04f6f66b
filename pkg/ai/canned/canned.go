// Package canned is the offline reflection backend. Responses come from a
// static keyword table with a rotating set of defaults, so replies are
// deterministic for a given sequence of calls. It is the driver of last
// resort when no provider token is configured, and the test backend.
package canned

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/reverie-ai/reverie/pkg/ai"
	"github.com/reverie-ai/reverie/pkg/types"
)

const (
	NAME = "canned"
)

type rule struct {
	keywords []string
	reply    string
}

// Keyword rules are checked in order against the latest user message;
// first hit wins.
var rules = []rule{
	{
		keywords: []string{"tired", "exhaust", "sleep"},
		reply:    "It sounds like you're running low on energy. What do you think has been draining you the most lately?",
	},
	{
		keywords: []string{"work", "job", "boss", "deadline"},
		reply:    "Work has been taking up a lot of space for you. How did it leave you feeling by the end of the day?",
	},
	{
		keywords: []string{"happy", "great", "good day", "excited"},
		reply:    "That sounds like a bright spot. What made this moment stand out for you?",
	},
	{
		keywords: []string{"sad", "down", "lonely", "cry"},
		reply:    "Thank you for sharing something that heavy. What would feel supportive for you right now?",
	},
	{
		keywords: []string{"anxious", "worried", "stress", "nervous"},
		reply:    "It sounds like there's a lot on your mind. If you named the one worry underneath it all, what would it be?",
	},
	{
		keywords: []string{"family", "friend", "partner"},
		reply:    "Relationships can stir up a lot. How did that interaction sit with you afterwards?",
	},
}

var defaults = []string{
	"Thank you for sharing that. What else is on your mind about it?",
	"I hear you. How did that make you feel in the moment?",
	"That sounds meaningful. What do you want to remember about today?",
	"Take your time. Is there a part of this you'd like to sit with a little longer?",
}

type Driver struct {
	next atomic.Uint64
}

func New() *Driver {
	return &Driver{}
}

func (s *Driver) Name() string {
	return NAME
}

// Respond matches the latest user message against the keyword table and
// falls back to the rotating defaults.
func (s *Driver) Respond(ctx context.Context, prompt []ai.Message) (string, error) {
	var latest string
	for i := len(prompt) - 1; i >= 0; i-- {
		if prompt[i].Role == ai.ROLE_USER {
			latest = prompt[i].Content
			break
		}
	}

	lowered := strings.ToLower(latest)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lowered, kw) {
				return r.reply, nil
			}
		}
	}

	n := s.next.Add(1) - 1
	return defaults[n%uint64(len(defaults))], nil
}

// Summarize keeps the leading words of the first user line, the same rule
// the journal store applies when no title call is available.
func (s *Driver) Summarize(ctx context.Context, conversationText string) (string, error) {
	for _, line := range strings.Split(conversationText, "\n") {
		text, ok := strings.CutPrefix(line, string(types.TURN_SENDER_USER)+": ")
		if !ok {
			continue
		}
		words := strings.Fields(text)
		if len(words) == 0 {
			continue
		}
		if len(words) > 5 {
			words = words[:5]
		}
		return strings.Join(words, " "), nil
	}
	return "Journal Entry", nil
}

// Transcribe is deterministic on input size so capture tests can assert
// exact transcripts without audio fixtures.
func (s *Driver) Transcribe(ctx context.Context, filename string, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", nil
	}
	return "transcript of " + filename, nil
}
