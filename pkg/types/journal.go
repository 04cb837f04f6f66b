package types

import (
	"time"
)

type TurnSender string

const (
	TURN_SENDER_USER      TurnSender = "user"
	TURN_SENDER_ASSISTANT TurnSender = "assistant"
)

// Turn is a single message inside a journal entry. Immutable once created,
// ordering is append-only within an entry.
type Turn struct {
	ID        string     `json:"id"`
	Sender    TurnSender `json:"sender"`
	Text      string     `json:"text"`
	Timestamp time.Time  `json:"timestamp"`
}

// JournalEntry is one saved journal conversation. Title and
// LastMessagePreview are derived fields, Date is fixed at creation.
type JournalEntry struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Date               time.Time `json:"date"`
	Conversation       []Turn    `json:"conversation"`
	AudioRecordingRef  string    `json:"audio_recording_ref,omitempty"`
	LastMessagePreview string    `json:"last_message_preview"`
}

// LastTurn returns the final turn of the conversation.
func (e JournalEntry) LastTurn() (Turn, bool) {
	if len(e.Conversation) == 0 {
		return Turn{}, false
	}
	return e.Conversation[len(e.Conversation)-1], true
}

// JournalCollection is every entry owned by one identity, ordered by
// creation. It is serialized wholesale as a single JSON document.
type JournalCollection []JournalEntry

// CollectionKey addresses one identity's archived collection. The namespace
// stays fixed per storage concern so drivers never concatenate strings to
// build their addressing.
type CollectionKey struct {
	Identity  string
	Namespace string
}

const JOURNAL_NAMESPACE = "journal_entries"

func JournalKey(identity string) CollectionKey {
	return CollectionKey{
		Identity:  identity,
		Namespace: JOURNAL_NAMESPACE,
	}
}

// JournalArchive is the relational row shape of an archived collection.
type JournalArchive struct {
	ID        int64  `json:"id" db:"id"`
	Namespace string `json:"namespace" db:"namespace"`
	Identity  string `json:"identity" db:"identity"`
	Data      []byte `json:"data" db:"data"`
	UpdatedAt int64  `json:"updated_at" db:"updated_at"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
}
