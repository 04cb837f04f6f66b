package v1

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/reverie-ai/reverie/app/core"
	"github.com/reverie-ai/reverie/pkg/capture"
	"github.com/reverie-ai/reverie/pkg/errors"
	"github.com/reverie-ai/reverie/pkg/i18n"
	"github.com/reverie-ai/reverie/pkg/types"
)

type CaptureLogic struct {
	UserInfo
	ctx  context.Context
	core *core.Core
}

func NewCaptureLogic(ctx context.Context, core *core.Core) *CaptureLogic {
	l := &CaptureLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}

	return l
}

func (l *CaptureLogic) owner() string {
	return l.GetUserInfo().User
}

func (l *CaptureLogic) StartRecording() (types.CaptureSessionMeta, error) {
	meta, err := l.core.Capture().StartRecording(l.ctx, l.owner())
	if err != nil {
		return types.CaptureSessionMeta{}, l.wrapCaptureError("CaptureLogic.StartRecording", err)
	}
	return meta, nil
}

func (l *CaptureLogic) StartTranscription() (types.CaptureSessionMeta, error) {
	meta, err := l.core.Capture().StartTranscription(l.ctx, l.owner())
	if err != nil {
		return types.CaptureSessionMeta{}, l.wrapCaptureError("CaptureLogic.StartTranscription", err)
	}
	return meta, nil
}

func (l *CaptureLogic) GetSession(sessionID string) (types.CaptureSessionMeta, error) {
	meta, err := l.core.Capture().Get(sessionID, l.owner())
	if err != nil {
		return types.CaptureSessionMeta{}, l.wrapCaptureError("CaptureLogic.GetSession", err)
	}
	return meta, nil
}

func (l *CaptureLogic) AppendRecording(sessionID string, chunk []byte) error {
	if err := l.core.Capture().AppendRecording(l.ctx, sessionID, l.owner(), chunk); err != nil {
		return l.wrapCaptureError("CaptureLogic.AppendRecording", err)
	}
	return nil
}

func (l *CaptureLogic) AppendTranscription(sessionID string, chunk []byte) (string, error) {
	text, err := l.core.Capture().AppendTranscription(l.ctx, sessionID, l.owner(), chunk)
	if err != nil {
		return "", l.wrapCaptureError("CaptureLogic.AppendTranscription", err)
	}
	return text, nil
}

func (l *CaptureLogic) StopRecording(sessionID string) (types.RecordingResult, error) {
	result, err := l.core.Capture().StopRecording(l.ctx, sessionID, l.owner())
	if err != nil {
		if stderrors.Is(err, capture.ErrSessionNotFound) || stderrors.Is(err, capture.ErrNotConfigured) {
			return types.RecordingResult{}, l.wrapCaptureError("CaptureLogic.StopRecording", err)
		}
		// 上传失败，对象存储暂不可用
		return types.RecordingResult{}, errors.New("CaptureLogic.StopRecording.Upload", i18n.ERROR_OBJECT_STORAGE_UNUSABLE, err).Code(http.StatusBadGateway)
	}
	return result, nil
}

func (l *CaptureLogic) StopTranscription(sessionID string) (string, error) {
	text, err := l.core.Capture().StopTranscription(l.ctx, sessionID, l.owner())
	if err != nil {
		return "", l.wrapCaptureError("CaptureLogic.StopTranscription", err)
	}
	return text, nil
}

func (l *CaptureLogic) Reset(sessionID string) error {
	if err := l.core.Capture().Reset(l.ctx, sessionID, l.owner()); err != nil {
		return l.wrapCaptureError("CaptureLogic.Reset", err)
	}
	return nil
}

func (l *CaptureLogic) wrapCaptureError(trace string, err error) error {
	switch {
	case stderrors.Is(err, capture.ErrSessionNotFound):
		return errors.New(trace, i18n.ERROR_CAPTURE_SESSION_NOT_FOUND, err).Code(http.StatusNotFound)
	case stderrors.Is(err, capture.ErrNotConfigured):
		return errors.New(trace, i18n.ERROR_CAPTURE_NOT_CONFIGURED, err).Code(http.StatusServiceUnavailable)
	default:
		return errors.New(trace, i18n.ERROR_INTERNAL, err)
	}
}
