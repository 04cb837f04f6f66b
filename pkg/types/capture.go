package types

type CaptureState string

const (
	CAPTURE_STATE_IDLE   CaptureState = "idle"
	CAPTURE_STATE_ACTIVE CaptureState = "active"
)

type CaptureKind string

const (
	CAPTURE_KIND_RECORDING     CaptureKind = "recording"
	CAPTURE_KIND_TRANSCRIPTION CaptureKind = "transcription"
)

// CaptureSessionMeta is the wire shape of a capture session.
type CaptureSessionMeta struct {
	SessionID string       `json:"session_id"`
	Kind      CaptureKind  `json:"kind"`
	State     CaptureState `json:"state"`
	StartedAt int64        `json:"started_at"`
}

// TranscriptEvent is published over the realtime channel while a
// transcription session is active, and once more on stop with Committed set.
type TranscriptEvent struct {
	SessionID string `json:"session_id"`
	Seq       int64  `json:"seq"`
	Text      string `json:"text"`
	Committed bool   `json:"committed"`
}

// RecordingResult is what a finalized recording session hands back, the
// object key doubling as the entry's audio reference.
type RecordingResult struct {
	ObjectKey   string `json:"object_key"`
	PlaybackURL string `json:"playback_url"`
	SizeBytes   int64  `json:"size_bytes"`
}

// JournalChangedEvent notifies subscribers that an identity's collection
// changed and lists should refresh.
type JournalChangedEvent struct {
	EntryID string `json:"entry_id"`
	Action  string `json:"action"` // created / continued / renamed / deleted
}
