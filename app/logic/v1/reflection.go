package v1

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/reverie-ai/reverie/app/core"
	"github.com/reverie-ai/reverie/pkg/ai"
	"github.com/reverie-ai/reverie/pkg/errors"
	"github.com/reverie-ai/reverie/pkg/i18n"
	"github.com/reverie-ai/reverie/pkg/types"
)

// Driver failures never propagate to the conversation: the entry always
// advances with a fixed fallback turn instead.
const (
	REFLECTION_FALLBACK_EN = "Thank you for sharing. I couldn't gather my thoughts just now, but I'm still here with you."
	REFLECTION_FALLBACK_CN = "谢谢你的分享。我刚才有些走神了，不过我还在听。"

	TITLE_FALLBACK = "Journal Entry"
)

const DEFAULT_MAX_PROMPT_TOKENS = 3000

type ReflectionLogic struct {
	UserInfo
	ctx  context.Context
	core *core.Core
}

func NewReflectionLogic(ctx context.Context, core *core.Core) *ReflectionLogic {
	l := &ReflectionLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}

	return l
}

// RespondToEntry generates the next assistant turn for the entry and
// appends it through the journal store.
func (l *ReflectionLogic) RespondToEntry(entryID string) (types.JournalEntry, error) {
	journalLogic := NewJournalLogic(l.ctx, l.core)
	entry, err := journalLogic.Get(entryID)
	if err != nil {
		return types.JournalEntry{}, errors.Trace("ReflectionLogic.RespondToEntry.Get", err)
	}

	sem := l.core.Semaphore().Reflect()
	if !sem.TryAcquire() {
		return types.JournalEntry{}, errors.New("ReflectionLogic.RespondToEntry.semaphore", i18n.ERROR_TOO_MANY_REQUESTS, nil).Code(http.StatusTooManyRequests)
	}
	defer sem.Release()

	text := l.respond(entry.Conversation)

	updated, err := journalLogic.Continue(entryID, []types.Turn{{
		Sender: types.TURN_SENDER_ASSISTANT,
		Text:   text,
	}})
	if err != nil {
		return types.JournalEntry{}, errors.Trace("ReflectionLogic.RespondToEntry.Continue", err)
	}

	return updated, nil
}

func (l *ReflectionLogic) respond(conversation []types.Turn) string {
	driver := l.core.Srv().Reflect()
	cfg := l.core.Srv().ReflectConfig()

	maxTokens := cfg.MaxPromptTokens
	if maxTokens <= 0 {
		maxTokens = DEFAULT_MAX_PROMPT_TOKENS
	}

	bound := ai.BoundConversation(conversation, cfg.Model, maxTokens)
	prompt := ai.BuildReflectionPrompt(cfg.Prompt, bound)

	timer := l.core.Metrics().ReflectResponseTimer(driver.Name())
	text, err := driver.Respond(l.ctx, prompt)
	timer.ObserveDuration()

	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			slog.Error("reflection driver failed, using fallback",
				slog.String("driver", driver.Name()), slog.String("error", err.Error()))
		}
		l.core.Metrics().ReflectFallbackInc("respond")
		return GetContentByClientLanguage(l.ctx, REFLECTION_FALLBACK_EN, REFLECTION_FALLBACK_CN)
	}

	return text
}

// GenerateTitle summarizes the conversation into a short title and renames
// the entry. The fallback title still lands, naming never blocks on the
// driver.
func (l *ReflectionLogic) GenerateTitle(entryID string) (string, error) {
	journalLogic := NewJournalLogic(l.ctx, l.core)
	entry, err := journalLogic.Get(entryID)
	if err != nil {
		return "", errors.Trace("ReflectionLogic.GenerateTitle.Get", err)
	}

	driver := l.core.Srv().Reflect()

	timer := l.core.Metrics().ReflectResponseTimer(driver.Name())
	title, derr := driver.Summarize(l.ctx, ai.RenderConversationText(entry.Conversation))
	timer.ObserveDuration()

	if derr != nil || strings.TrimSpace(title) == "" {
		if derr != nil {
			slog.Error("summarize driver failed, using fallback title",
				slog.String("driver", driver.Name()), slog.String("error", derr.Error()))
		}
		l.core.Metrics().ReflectFallbackInc("summarize")
		title = TITLE_FALLBACK
	}

	if err := journalLogic.Rename(entryID, title); err != nil {
		return "", errors.Trace("ReflectionLogic.GenerateTitle.Rename", err)
	}

	return title, nil
}
