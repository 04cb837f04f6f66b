package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/reverie-ai/reverie/app/logic/v1"
	"github.com/reverie-ai/reverie/app/response"
	"github.com/reverie-ai/reverie/pkg/errors"
	"github.com/reverie-ai/reverie/pkg/i18n"
)

func (s *HttpSrv) StartRecording(c *gin.Context) {
	meta, err := v1.NewCaptureLogic(c, s.Core).StartRecording()
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, meta)
}

// AppendRecordingChunk takes the raw chunk bytes as the request body, the
// browser streams MediaRecorder blobs without any envelope.
func (s *HttpSrv) AppendRecordingChunk(c *gin.Context) {
	chunk, err := c.GetRawData()
	if err != nil {
		response.APIError(c, errors.New("handler.AppendRecordingChunk.GetRawData", i18n.ERROR_INVALIDARGUMENT, err))
		return
	}

	sessionID, _ := c.Params.Get("sessionID")
	if err := v1.NewCaptureLogic(c, s.Core).AppendRecording(sessionID, chunk); err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, nil)
}

func (s *HttpSrv) StopRecording(c *gin.Context) {
	sessionID, _ := c.Params.Get("sessionID")

	result, err := v1.NewCaptureLogic(c, s.Core).StopRecording(sessionID)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, result)
}

func (s *HttpSrv) StartTranscription(c *gin.Context) {
	meta, err := v1.NewCaptureLogic(c, s.Core).StartTranscription()
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, meta)
}

type AppendTranscriptionChunkResponse struct {
	Partial string `json:"partial"`
}

func (s *HttpSrv) AppendTranscriptionChunk(c *gin.Context) {
	chunk, err := c.GetRawData()
	if err != nil {
		response.APIError(c, errors.New("handler.AppendTranscriptionChunk.GetRawData", i18n.ERROR_INVALIDARGUMENT, err))
		return
	}

	sessionID, _ := c.Params.Get("sessionID")
	partial, err := v1.NewCaptureLogic(c, s.Core).AppendTranscription(sessionID, chunk)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, AppendTranscriptionChunkResponse{Partial: partial})
}

type StopTranscriptionResponse struct {
	Text string `json:"text"`
}

func (s *HttpSrv) StopTranscription(c *gin.Context) {
	sessionID, _ := c.Params.Get("sessionID")

	text, err := v1.NewCaptureLogic(c, s.Core).StopTranscription(sessionID)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, StopTranscriptionResponse{Text: text})
}

// ResetCaptureSession discards the session's buffers unconditionally, both
// kinds share the same teardown.
func (s *HttpSrv) ResetCaptureSession(c *gin.Context) {
	sessionID, _ := c.Params.Get("sessionID")

	if err := v1.NewCaptureLogic(c, s.Core).Reset(sessionID); err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, nil)
}
