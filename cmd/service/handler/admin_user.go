package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/reverie-ai/reverie/app/logic/v1"
	"github.com/reverie-ai/reverie/app/response"
	"github.com/reverie-ai/reverie/pkg/types"
	"github.com/reverie-ai/reverie/pkg/utils"
)

type AdminListUsersRequest struct {
	Page     uint64 `json:"page" form:"page"`
	Pagesize uint64 `json:"pagesize" form:"pagesize"`
}

func (s *HttpSrv) AdminListUsers(c *gin.Context) {
	var (
		err error
		req AdminListUsersRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	if req.Page == 0 {
		req.Page = 1
	}
	if req.Pagesize == 0 || req.Pagesize > types.MAX_PAGE_SIZE {
		req.Pagesize = types.DEFAULT_PAGE_SIZE
	}

	result, err := v1.NewAdminUserLogic(c, s.Core).ListUsers(req.Page, req.Pagesize)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, result)
}

type AdminUpdateUserRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (s *HttpSrv) AdminUpdateUserRole(c *gin.Context) {
	var (
		err error
		req AdminUpdateUserRoleRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	userID, _ := c.Params.Get("userID")
	if err = v1.NewAdminUserLogic(c, s.Core).UpdateUserRole(userID, req.Role); err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, nil)
}

func (s *HttpSrv) AdminDeleteUser(c *gin.Context) {
	userID, _ := c.Params.Get("userID")

	if err := v1.NewAdminUserLogic(c, s.Core).DeleteUser(userID); err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, nil)
}
