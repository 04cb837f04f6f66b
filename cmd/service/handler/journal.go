package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/reverie-ai/reverie/app/logic/v1"
	"github.com/reverie-ai/reverie/app/response"
	"github.com/reverie-ai/reverie/pkg/types"
	"github.com/reverie-ai/reverie/pkg/utils"
)

type ListJournalEntriesRequest struct {
	Keywords string `json:"keywords" form:"keywords"`
}

type ListJournalEntriesResponse struct {
	List  types.JournalCollection `json:"list"`
	Total int                     `json:"total"`
}

func (s *HttpSrv) ListJournalEntries(c *gin.Context) {
	var (
		err error
		req ListJournalEntriesRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	list := v1.NewJournalLogic(c, s.Core).List(req.Keywords)
	response.APISuccess(c, ListJournalEntriesResponse{
		List:  list,
		Total: len(list),
	})
}

type CreateJournalEntryRequest struct {
	Conversation []types.Turn `json:"conversation" binding:"required"`
	AudioRef     string       `json:"audio_ref"`
}

func (s *HttpSrv) CreateJournalEntry(c *gin.Context) {
	var (
		err error
		req CreateJournalEntryRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	entry, err := v1.NewJournalLogic(c, s.Core).Create(req.Conversation, req.AudioRef)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, entry)
}

func (s *HttpSrv) GetJournalEntry(c *gin.Context) {
	entryID, _ := c.Params.Get("entryID")

	entry, err := v1.NewJournalLogic(c, s.Core).Get(entryID)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, entry)
}

type ContinueJournalEntryRequest struct {
	Turns []types.Turn `json:"turns" binding:"required"`
}

func (s *HttpSrv) ContinueJournalEntry(c *gin.Context) {
	var (
		err error
		req ContinueJournalEntryRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	entryID, _ := c.Params.Get("entryID")
	entry, err := v1.NewJournalLogic(c, s.Core).Continue(entryID, req.Turns)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, entry)
}

func (s *HttpSrv) DeleteJournalEntry(c *gin.Context) {
	entryID, _ := c.Params.Get("entryID")

	if err := v1.NewJournalLogic(c, s.Core).Delete(entryID); err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, nil)
}

// ReflectJournalEntry appends the AI reflection turn and returns the
// updated entry.
func (s *HttpSrv) ReflectJournalEntry(c *gin.Context) {
	entryID, _ := c.Params.Get("entryID")

	entry, err := v1.NewReflectionLogic(c, s.Core).RespondToEntry(entryID)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, entry)
}

type GenerateJournalTitleResponse struct {
	Title string `json:"title"`
}

func (s *HttpSrv) GenerateJournalTitle(c *gin.Context) {
	entryID, _ := c.Params.Get("entryID")

	title, err := v1.NewReflectionLogic(c, s.Core).GenerateTitle(entryID)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, GenerateJournalTitleResponse{Title: title})
}
