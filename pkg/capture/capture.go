// Package capture owns the audio recording and live transcription session
// state machines. A session is idle until started, active while chunks are
// appended, and idle again after stop or reset. Sessions live in memory
// only; the durable artifacts are the uploaded recording object and the
// committed transcript text handed back to the caller.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/reverie-ai/reverie/pkg/ai"
	"github.com/reverie-ai/reverie/pkg/types"
	"github.com/reverie-ai/reverie/pkg/utils"
)

var (
	ErrSessionNotFound = errors.New("capture session not found")
	ErrNotConfigured   = errors.New("capture backend not configured")
)

// Uploader stores finalized recordings. Satisfied by the s3 client.
type Uploader interface {
	Upload(fullPath string, body io.Reader) error
	GenGetObjectPreSignURL(fullPath string) (string, error)
}

// Publisher fans out transcript events to live subscribers. A nil publisher
// simply drops the partials, callers still get the committed text on stop.
type Publisher interface {
	PublishTranscript(topic string, event types.TranscriptEvent) error
}

type Options struct {
	Uploader    Uploader
	Transcriber ai.TranscribeDriver
	Publisher   Publisher
	Clock       func() time.Time
	IDGenerator func() string
}

// Registry holds every live capture session. One active session of each
// kind per owner; a second start of the same kind resets the first.
type Registry struct {
	sessions cmap.ConcurrentMap[string, *Session]
	active   cmap.ConcurrentMap[string, string] // owner/kind -> session id

	uploader    Uploader
	transcriber ai.TranscribeDriver
	publisher   Publisher
	now         func() time.Time
	genID       func() string
}

func NewRegistry(opts Options) *Registry {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.IDGenerator == nil {
		opts.IDGenerator = utils.GenUniqIDStr
	}
	return &Registry{
		sessions:    cmap.New[*Session](),
		active:      cmap.New[string](),
		uploader:    opts.Uploader,
		transcriber: opts.Transcriber,
		publisher:   opts.Publisher,
		now:         opts.Clock,
		genID:       opts.IDGenerator,
	}
}

// Session is a single capture in flight. All mutation goes through the
// registry so ownership is checked in one place.
type Session struct {
	mu sync.Mutex

	id    string
	owner string
	kind  types.CaptureKind
	state types.CaptureState

	chunks   [][]byte
	partials []string
	seq      int64

	startedAt    time.Time
	lastActivity time.Time
}

func (s *Session) Meta() types.CaptureSessionMeta {
	s.mu.Lock()
	defer s.mu.Unlock()
	return types.CaptureSessionMeta{
		SessionID: s.id,
		Kind:      s.kind,
		State:     s.state,
		StartedAt: s.startedAt.Unix(),
	}
}

func activeKey(owner string, kind types.CaptureKind) string {
	return fmt.Sprintf("%s/%s", owner, kind)
}

// StartRecording opens a recording session for owner. An already-active
// recording is discarded first; the platform can throw on double-start, so
// a repeated start means the old session is stale.
func (r *Registry) StartRecording(ctx context.Context, owner string) (types.CaptureSessionMeta, error) {
	if r.uploader == nil {
		return types.CaptureSessionMeta{}, ErrNotConfigured
	}
	return r.start(owner, types.CAPTURE_KIND_RECORDING), nil
}

// StartTranscription opens a live transcription session for owner, with the
// same double-start tolerance as recording.
func (r *Registry) StartTranscription(ctx context.Context, owner string) (types.CaptureSessionMeta, error) {
	if r.transcriber == nil {
		return types.CaptureSessionMeta{}, ErrNotConfigured
	}
	return r.start(owner, types.CAPTURE_KIND_TRANSCRIPTION), nil
}

func (r *Registry) start(owner string, kind types.CaptureKind) types.CaptureSessionMeta {
	key := activeKey(owner, kind)
	if oldID, ok := r.active.Get(key); ok {
		if old, exist := r.sessions.Get(oldID); exist {
			old.release()
			r.sessions.Remove(oldID)
			slog.Debug("capture session restarted",
				slog.String("owner", owner), slog.String("kind", string(kind)), slog.String("old_session", oldID))
		}
	}

	now := r.now()
	session := &Session{
		id:           "c" + r.genID(),
		owner:        owner,
		kind:         kind,
		state:        types.CAPTURE_STATE_ACTIVE,
		startedAt:    now,
		lastActivity: now,
	}
	r.sessions.Set(session.id, session)
	r.active.Set(key, session.id)
	return session.Meta()
}

func (r *Registry) get(sessionID, owner string) (*Session, error) {
	session, ok := r.sessions.Get(sessionID)
	if !ok || session.owner != owner {
		// 他人会话对请求方不可见
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Get returns the session meta, owner-scoped.
func (r *Registry) Get(sessionID, owner string) (types.CaptureSessionMeta, error) {
	session, err := r.get(sessionID, owner)
	if err != nil {
		return types.CaptureSessionMeta{}, err
	}
	return session.Meta(), nil
}

// AppendRecording buffers an audio chunk.
func (r *Registry) AppendRecording(ctx context.Context, sessionID, owner string, chunk []byte) error {
	session, err := r.get(sessionID, owner)
	if err != nil {
		return err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.state != types.CAPTURE_STATE_ACTIVE {
		return ErrSessionNotFound
	}
	session.chunks = append(session.chunks, chunk)
	session.lastActivity = r.now()
	return nil
}

// AppendTranscription transcribes one chunk and publishes the partial. A
// driver failure on a single chunk is reported but leaves the session
// active, the next chunk may still transcribe.
func (r *Registry) AppendTranscription(ctx context.Context, sessionID, owner string, chunk []byte) (string, error) {
	session, err := r.get(sessionID, owner)
	if err != nil {
		return "", err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.state != types.CAPTURE_STATE_ACTIVE {
		return "", ErrSessionNotFound
	}

	session.chunks = append(session.chunks, chunk)
	session.lastActivity = r.now()
	session.seq++

	text, err := r.transcriber.Transcribe(ctx, ai.AudioFilename(session.id), chunk)
	if err != nil {
		slog.Warn("chunk transcription failed",
			slog.String("session", session.id), slog.String("error", err.Error()))
		return "", err
	}

	session.partials = append(session.partials, text)
	r.publishLocked(session, text, false)
	return text, nil
}

// StopRecording finalizes the session: chunks are concatenated, uploaded
// under audio/{owner}/{session}.webm and a short-lived playback URL is
// returned. Buffers are released whether or not the upload succeeds.
func (r *Registry) StopRecording(ctx context.Context, sessionID, owner string) (types.RecordingResult, error) {
	session, err := r.get(sessionID, owner)
	if err != nil {
		return types.RecordingResult{}, err
	}

	session.mu.Lock()
	var body bytes.Buffer
	for _, chunk := range session.chunks {
		body.Write(chunk)
	}
	session.mu.Unlock()

	defer r.remove(session)

	objectKey := fmt.Sprintf("audio/%s/%s.webm", owner, session.id)
	if err := r.uploader.Upload(objectKey, bytes.NewReader(body.Bytes())); err != nil {
		return types.RecordingResult{}, fmt.Errorf("upload recording %s: %w", objectKey, err)
	}

	playbackURL, err := r.uploader.GenGetObjectPreSignURL(objectKey)
	if err != nil {
		// 对象已经存在，播放地址可以后续再签
		slog.Warn("presign playback url failed", slog.String("key", objectKey), slog.String("error", err.Error()))
	}

	return types.RecordingResult{
		ObjectKey:   objectKey,
		PlaybackURL: playbackURL,
		SizeBytes:   int64(body.Len()),
	}, nil
}

// StopTranscription commits the transcript. The whole buffered audio gets
// one final transcription pass; if that fails the accumulated partials
// become the committed text, the caller never loses what was already heard.
func (r *Registry) StopTranscription(ctx context.Context, sessionID, owner string) (string, error) {
	session, err := r.get(sessionID, owner)
	if err != nil {
		return "", err
	}

	session.mu.Lock()
	var body bytes.Buffer
	for _, chunk := range session.chunks {
		body.Write(chunk)
	}
	partials := strings.Join(session.partials, " ")
	session.mu.Unlock()

	defer r.remove(session)

	text := partials
	if body.Len() > 0 {
		final, err := r.transcriber.Transcribe(ctx, ai.AudioFilename(session.id), body.Bytes())
		if err != nil {
			slog.Warn("final transcription failed, committing partials",
				slog.String("session", session.id), slog.String("error", err.Error()))
		} else {
			text = final
		}
	}

	session.mu.Lock()
	session.seq++
	r.publishLocked(session, text, true)
	session.mu.Unlock()

	return text, nil
}

// Reset discards the session without producing anything.
func (r *Registry) Reset(ctx context.Context, sessionID, owner string) error {
	session, err := r.get(sessionID, owner)
	if err != nil {
		return err
	}
	r.remove(session)
	return nil
}

func (r *Registry) remove(session *Session) {
	session.release()
	r.sessions.Remove(session.id)
	key := activeKey(session.owner, session.kind)
	if current, ok := r.active.Get(key); ok && current == session.id {
		r.active.Remove(key)
	}
}

func (s *Session) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = types.CAPTURE_STATE_IDLE
	s.chunks = nil
	s.partials = nil
}

func (r *Registry) publishLocked(session *Session, text string, committed bool) {
	if r.publisher == nil {
		return
	}
	event := types.TranscriptEvent{
		SessionID: session.id,
		Seq:       session.seq,
		Text:      text,
		Committed: committed,
	}
	if err := r.publisher.PublishTranscript(types.CaptureSessionTopic(session.id), event); err != nil {
		slog.Warn("transcript publish failed", slog.String("session", session.id), slog.String("error", err.Error()))
	}
}

// Sweep drops sessions idle longer than maxIdle. Run from the cron janitor.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	deadline := r.now().Add(-maxIdle)
	var stale []*Session
	r.sessions.IterCb(func(id string, session *Session) {
		session.mu.Lock()
		idle := session.lastActivity.Before(deadline)
		session.mu.Unlock()
		if idle {
			stale = append(stale, session)
		}
	})

	for _, session := range stale {
		slog.Info("sweeping idle capture session",
			slog.String("session", session.id), slog.String("owner", session.owner))
		r.remove(session)
	}
	return len(stale)
}

func (r *Registry) SessionCount() int {
	return r.sessions.Count()
}
