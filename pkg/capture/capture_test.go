package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reverie-ai/reverie/pkg/types"
)

type fakeUploader struct {
	uploads map[string][]byte
	failing bool
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{uploads: make(map[string][]byte)}
}

func (u *fakeUploader) Upload(fullPath string, body io.Reader) error {
	if u.failing {
		return errors.New("bucket unreachable")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	u.uploads[fullPath] = data
	return nil
}

func (u *fakeUploader) GenGetObjectPreSignURL(fullPath string) (string, error) {
	return "https://storage.example/" + fullPath, nil
}

type fakeTranscriber struct {
	failing bool
	calls   int
}

func (d *fakeTranscriber) Name() string { return "fake" }

func (d *fakeTranscriber) Transcribe(ctx context.Context, filename string, audio []byte) (string, error) {
	d.calls++
	if d.failing {
		return "", errors.New("model offline")
	}
	return fmt.Sprintf("heard %d bytes", len(audio)), nil
}

type recordingPublisher struct {
	events []types.TranscriptEvent
}

func (p *recordingPublisher) PublishTranscript(topic string, event types.TranscriptEvent) error {
	p.events = append(p.events, event)
	return nil
}

func newTestRegistry(uploader Uploader, transcriber *fakeTranscriber, publisher Publisher) *Registry {
	var seq int
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	return NewRegistry(Options{
		Uploader:    uploader,
		Transcriber: transcriber,
		Publisher:   publisher,
		Clock:       func() time.Time { return now },
		IDGenerator: func() string {
			seq++
			return fmt.Sprintf("%04d", seq)
		},
	})
}

func TestRecordingLifecycle(t *testing.T) {
	ctx := context.Background()
	uploader := newFakeUploader()
	r := newTestRegistry(uploader, &fakeTranscriber{}, nil)

	meta, err := r.StartRecording(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, types.CAPTURE_STATE_ACTIVE, meta.State)
	assert.Equal(t, types.CAPTURE_KIND_RECORDING, meta.Kind)

	require.NoError(t, r.AppendRecording(ctx, meta.SessionID, "alice", []byte("abc")))
	require.NoError(t, r.AppendRecording(ctx, meta.SessionID, "alice", []byte("def")))

	result, err := r.StopRecording(ctx, meta.SessionID, "alice")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("audio/alice/%s.webm", meta.SessionID), result.ObjectKey)
	assert.Equal(t, "https://storage.example/"+result.ObjectKey, result.PlaybackURL)
	assert.Equal(t, int64(6), result.SizeBytes)
	assert.Equal(t, []byte("abcdef"), uploader.uploads[result.ObjectKey])

	// stop releases the session
	_, err = r.Get(meta.SessionID, "alice")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 0, r.SessionCount())
}

func TestRecordingUploadFailureStillReleases(t *testing.T) {
	ctx := context.Background()
	uploader := newFakeUploader()
	uploader.failing = true
	r := newTestRegistry(uploader, &fakeTranscriber{}, nil)

	meta, err := r.StartRecording(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, r.AppendRecording(ctx, meta.SessionID, "alice", []byte("abc")))

	_, err = r.StopRecording(ctx, meta.SessionID, "alice")
	require.Error(t, err)
	assert.Equal(t, 0, r.SessionCount())
}

func TestDoubleStartRestartsSession(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(newFakeUploader(), &fakeTranscriber{}, nil)

	first, err := r.StartTranscription(ctx, "alice")
	require.NoError(t, err)
	second, err := r.StartTranscription(ctx, "alice")
	require.NoError(t, err)

	assert.NotEqual(t, first.SessionID, second.SessionID)
	_, err = r.Get(first.SessionID, "alice")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 1, r.SessionCount())

	// different kinds may run concurrently for the same owner
	_, err = r.StartRecording(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, r.SessionCount())
}

func TestTranscriptionPartialsAndCommit(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	r := newTestRegistry(newFakeUploader(), &fakeTranscriber{}, pub)

	meta, err := r.StartTranscription(ctx, "alice")
	require.NoError(t, err)

	partial, err := r.AppendTranscription(ctx, meta.SessionID, "alice", []byte("ab"))
	require.NoError(t, err)
	assert.Equal(t, "heard 2 bytes", partial)

	_, err = r.AppendTranscription(ctx, meta.SessionID, "alice", []byte("cde"))
	require.NoError(t, err)

	final, err := r.StopTranscription(ctx, meta.SessionID, "alice")
	require.NoError(t, err)
	assert.Equal(t, "heard 5 bytes", final)

	require.Len(t, pub.events, 3)
	assert.False(t, pub.events[0].Committed)
	assert.False(t, pub.events[1].Committed)
	assert.True(t, pub.events[2].Committed)
	assert.Equal(t, "heard 5 bytes", pub.events[2].Text)
	assert.Greater(t, pub.events[1].Seq, pub.events[0].Seq)
}

func TestStopTranscriptionFallsBackToPartials(t *testing.T) {
	ctx := context.Background()
	driver := &fakeTranscriber{}
	r := newTestRegistry(newFakeUploader(), driver, nil)

	meta, err := r.StartTranscription(ctx, "alice")
	require.NoError(t, err)

	_, err = r.AppendTranscription(ctx, meta.SessionID, "alice", []byte("ab"))
	require.NoError(t, err)
	_, err = r.AppendTranscription(ctx, meta.SessionID, "alice", []byte("cd"))
	require.NoError(t, err)

	// the final pass fails, accumulated partials become the commit
	driver.failing = true
	final, err := r.StopTranscription(ctx, meta.SessionID, "alice")
	require.NoError(t, err)
	assert.Equal(t, "heard 2 bytes heard 2 bytes", final)
}

func TestOwnershipIsolation(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(newFakeUploader(), &fakeTranscriber{}, nil)

	meta, err := r.StartRecording(ctx, "alice")
	require.NoError(t, err)

	assert.ErrorIs(t, r.AppendRecording(ctx, meta.SessionID, "bob", []byte("x")), ErrSessionNotFound)
	_, err = r.StopRecording(ctx, meta.SessionID, "bob")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, r.Reset(ctx, meta.SessionID, "bob"), ErrSessionNotFound)

	// owner can still finish
	_, err = r.StopRecording(ctx, meta.SessionID, "alice")
	require.NoError(t, err)
}

func TestResetReleasesWithoutArtifacts(t *testing.T) {
	ctx := context.Background()
	uploader := newFakeUploader()
	r := newTestRegistry(uploader, &fakeTranscriber{}, nil)

	meta, err := r.StartRecording(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, r.AppendRecording(ctx, meta.SessionID, "alice", []byte("abc")))

	require.NoError(t, r.Reset(ctx, meta.SessionID, "alice"))
	assert.Empty(t, uploader.uploads)
	assert.Equal(t, 0, r.SessionCount())
}

func TestNotConfigured(t *testing.T) {
	ctx := context.Background()

	noUpload := NewRegistry(Options{Transcriber: &fakeTranscriber{}})
	_, err := noUpload.StartRecording(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotConfigured)

	noTranscribe := NewRegistry(Options{Uploader: newFakeUploader()})
	_, err = noTranscribe.StartTranscription(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	r := NewRegistry(Options{
		Uploader:    newFakeUploader(),
		Transcriber: &fakeTranscriber{},
		Clock:       func() time.Time { return now },
	})

	stale, err := r.StartRecording(ctx, "alice")
	require.NoError(t, err)
	_ = stale

	now = now.Add(20 * time.Minute)
	fresh, err := r.StartTranscription(ctx, "alice")
	require.NoError(t, err)

	swept := r.Sweep(10 * time.Minute)
	assert.Equal(t, 1, swept)
	assert.Equal(t, 1, r.SessionCount())
	_, err = r.Get(fresh.SessionID, "alice")
	assert.NoError(t, err)
}
