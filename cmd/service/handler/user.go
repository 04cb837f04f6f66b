package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/reverie-ai/reverie/app/logic/v1"
	"github.com/reverie-ai/reverie/app/response"
	"github.com/reverie-ai/reverie/cmd/service/middleware"
	"github.com/reverie-ai/reverie/pkg/utils"
)

type RegisterRequest struct {
	UserName string `json:"user_name" form:"user_name" binding:"max=32"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=6"`
}

// Register creates the account and signs it in right away, the client never
// does a second round-trip.
func (s *HttpSrv) Register(c *gin.Context) {
	var (
		err error
		req RegisterRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	appid, _ := v1.InjectAppid(c)
	logic := v1.NewUserLogic(c, s.Core)

	name := req.UserName
	if name == "" {
		name = req.Email
	}

	if _, err = logic.Register(appid, name, req.Email, req.Password); err != nil {
		response.APIError(c, err)
		return
	}

	result, err := logic.Login(appid, req.Email, req.Password)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, result)
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

func (s *HttpSrv) Login(c *gin.Context) {
	var (
		err error
		req LoginRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	appid, _ := v1.InjectAppid(c)
	result, err := v1.NewUserLogic(c, s.Core).Login(appid, req.Email, req.Password)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, result)
}

type FederatedLoginRequest struct {
	IDToken string `json:"id_token" form:"id_token" binding:"required"`
}

func (s *HttpSrv) FederatedLogin(c *gin.Context) {
	var (
		err error
		req FederatedLoginRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	appid, _ := v1.InjectAppid(c)
	result, err := v1.NewUserLogic(c, s.Core).FederatedLogin(appid, req.IDToken)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, result)
}

func (s *HttpSrv) Logout(c *gin.Context) {
	tokenValue := c.GetHeader(middleware.AUTH_TOKEN_HEADER_KEY)

	if err := v1.NewAuthedUserLogic(c, s.Core).Logout(tokenValue); err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, nil)
}

func (s *HttpSrv) GetUser(c *gin.Context) {
	user, err := v1.NewAuthedUserLogic(c, s.Core).Me()
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, user)
}

type UpdateUserProfileRequest struct {
	UserName string `json:"user_name" form:"user_name" binding:"required,max=32"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Avatar   string `json:"avatar" form:"avatar"`
}

func (s *HttpSrv) UpdateUserProfile(c *gin.Context) {
	var (
		err error
		req UpdateUserProfileRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	err = v1.NewAuthedUserLogic(c, s.Core).UpdateUserProfile(req.UserName, req.Email, req.Avatar)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, nil)
}
