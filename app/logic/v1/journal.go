package v1

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/reverie-ai/reverie/app/core"
	"github.com/reverie-ai/reverie/pkg/errors"
	"github.com/reverie-ai/reverie/pkg/i18n"
	"github.com/reverie-ai/reverie/pkg/journal"
	"github.com/reverie-ai/reverie/pkg/safe"
	"github.com/reverie-ai/reverie/pkg/types"
)

const (
	JOURNAL_ACTION_CREATED   = "created"
	JOURNAL_ACTION_CONTINUED = "continued"
	JOURNAL_ACTION_RENAMED   = "renamed"
	JOURNAL_ACTION_DELETED   = "deleted"
)

type JournalLogic struct {
	UserInfo
	ctx  context.Context
	core *core.Core
}

func NewJournalLogic(ctx context.Context, core *core.Core) *JournalLogic {
	l := &JournalLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}

	return l
}

// partition derives storage from the authenticated identity, the identity
// change re-key happens here for free.
func (l *JournalLogic) partition() *journal.Partition {
	return l.core.Journal().Partition(l.ctx, l.GetUserInfo().User)
}

// List searches the collection; empty keywords return everything in
// creation order.
func (l *JournalLogic) List(keywords string) types.JournalCollection {
	return l.partition().Search(keywords)
}

func (l *JournalLogic) Create(conversation []types.Turn, audioRef string) (types.JournalEntry, error) {
	entry, err := l.partition().Create(l.ctx, conversation, audioRef)
	if err != nil {
		return types.JournalEntry{}, l.wrapJournalError("JournalLogic.Create", err)
	}

	l.notifyChanged(entry.ID, JOURNAL_ACTION_CREATED)
	return entry, nil
}

func (l *JournalLogic) Get(entryID string) (types.JournalEntry, error) {
	entry, found := l.partition().Get(entryID)
	if !found {
		return types.JournalEntry{}, errors.New("JournalLogic.Get.notfound", i18n.ERROR_ENTRY_NOT_FOUND, journal.ErrEntryNotFound).Code(http.StatusNotFound)
	}
	return entry, nil
}

func (l *JournalLogic) Continue(entryID string, turns []types.Turn) (types.JournalEntry, error) {
	p := l.partition()
	if err := p.Continue(l.ctx, entryID, turns); err != nil {
		return types.JournalEntry{}, l.wrapJournalError("JournalLogic.Continue", err)
	}

	entry, _ := p.Get(entryID)
	l.notifyChanged(entryID, JOURNAL_ACTION_CONTINUED)
	return entry, nil
}

func (l *JournalLogic) Rename(entryID, title string) error {
	if err := l.partition().Rename(l.ctx, entryID, title); err != nil {
		return l.wrapJournalError("JournalLogic.Rename", err)
	}

	l.notifyChanged(entryID, JOURNAL_ACTION_RENAMED)
	return nil
}

func (l *JournalLogic) Delete(entryID string) error {
	if err := l.partition().Delete(l.ctx, entryID); err != nil {
		return l.wrapJournalError("JournalLogic.Delete", err)
	}

	l.notifyChanged(entryID, JOURNAL_ACTION_DELETED)
	return nil
}

func (l *JournalLogic) wrapJournalError(trace string, err error) error {
	switch {
	case stderrors.Is(err, journal.ErrEntryNotFound):
		return errors.New(trace, i18n.ERROR_ENTRY_NOT_FOUND, err).Code(http.StatusNotFound)
	case stderrors.Is(err, journal.ErrEmptyConversation):
		return errors.New(trace, i18n.ERROR_EMPTY_CONVERSATION, err).Code(http.StatusBadRequest)
	default:
		return errors.New(trace, i18n.ERROR_INTERNAL, err)
	}
}

func (l *JournalLogic) notifyChanged(entryID, action string) {
	tower := l.core.Srv().Tower()
	if tower == nil {
		return
	}

	topic := types.UserJournalTopic(l.GetUserInfo().User)
	safe.Run(func() {
		_ = tower.PublishJournalChanged(topic, types.JournalChangedEvent{
			EntryID: entryID,
			Action:  action,
		})
	})
}
