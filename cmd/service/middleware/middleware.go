package middleware

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/reverie-ai/reverie/app/core"
	"github.com/reverie-ai/reverie/app/core/srv"
	v1 "github.com/reverie-ai/reverie/app/logic/v1"
	"github.com/reverie-ai/reverie/app/response"
	"github.com/reverie-ai/reverie/pkg/auth"
	"github.com/reverie-ai/reverie/pkg/errors"
	"github.com/reverie-ai/reverie/pkg/i18n"
	"github.com/reverie-ai/reverie/pkg/security"
	"github.com/reverie-ai/reverie/pkg/types"
	"github.com/reverie-ai/reverie/pkg/utils"
)

func I18n() gin.HandlerFunc {
	var allowList []string
	for k := range i18n.ALLOW_LANG {
		allowList = append(allowList, k)
	}
	l := i18n.NewLocalizer(allowList...)

	return response.ProvideResponseLocalizer(l)
}

// AcceptLanguage 目前服务端支持 en: English, zh-CN: 简体中文
func AcceptLanguage() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		lang := ctx.Request.Header.Get("Accept-Language")
		if lang == "" {
			ctx.Set(v1.LANGUAGE_KEY, types.LANGUAGE_EN_KEY)
			return
		}

		res := utils.ParseAcceptLanguage(lang)
		if len(res) == 0 {
			ctx.Set(v1.LANGUAGE_KEY, types.LANGUAGE_EN_KEY)
			return
		}

		ctx.Set(v1.LANGUAGE_KEY, lo.If(strings.Contains(res[0].Tag, "zh"), types.LANGUAGE_CN_KEY).Else(types.LANGUAGE_EN_KEY))
	}
}

const (
	AUTH_TOKEN_HEADER_KEY = "X-Authorization"
	APPID_HEADER          = "X-Appid"

	tokenRenewTTL = time.Hour * 24 * 7
)

func SetAppid(core *core.Core) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set(v1.APPID_KEY, core.DefaultAppid())
	}
}

func Authorization(core *core.Core) gin.HandlerFunc {
	tracePrefix := "middleware.Authorization"
	return func(ctx *gin.Context) {
		matched, err := checkAuthToken(ctx, core)
		if err != nil {
			response.APIError(ctx, errors.Trace(tracePrefix, err))
			return
		}

		if !matched {
			response.APIError(ctx, errors.New(tracePrefix, i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized))
		}
	}
}

// AuthorizationFromQuery 提供给websocket等无法设置header的场景
func AuthorizationFromQuery(core *core.Core) gin.HandlerFunc {
	return func(c *gin.Context) {
		passed, err := ParseAuthToken(c, c.Query("token"), core)
		if err != nil {
			response.APIError(c, err)
			return
		}

		if !passed {
			response.APIError(c, errors.New("middleware.AuthorizationFromQuery", i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized))
		}
	}
}

func checkAuthToken(c *gin.Context, core *core.Core) (bool, error) {
	tokenValue := c.GetHeader(AUTH_TOKEN_HEADER_KEY)
	if tokenValue == "" {
		return false, nil
	}

	return ParseAuthToken(c, tokenValue, core)
}

// ParseAuthToken resolves the presented token to claims. The redis cache is
// checked first; a miss falls back to the access token table and re-primes
// the cache, so a cold redis never signs everyone out.
func ParseAuthToken(c *gin.Context, tokenValue string, core *core.Core) (bool, error) {
	if tokenValue == "" {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	appid, exist := v1.InjectAppid(c)
	if !exist {
		appid = core.DefaultAppid()
	}

	tokenMeta, err := auth.ValidateTokenFromCache(ctx, tokenValue, core.Cache())
	if err != nil {
		token, serr := v1.NewAuthLogic(ctx, core).GetAccessTokenDetail(appid, tokenValue)
		if serr != nil {
			return false, errors.Trace("ParseAuthToken.GetAccessTokenDetail", serr)
		}

		if token == nil || token.ExpiresAt < time.Now().Unix() {
			return false, errors.New("ParseAuthToken.token.check", i18n.ERROR_UNAUTHORIZED, fmt.Errorf("nil token")).Code(http.StatusUnauthorized)
		}

		tokenMeta = &types.UserTokenMeta{
			Appid:    token.Appid,
			UserID:   token.UserID,
			ExpireAt: token.ExpiresAt,
		}
		_ = auth.SaveTokenToCache(ctx, tokenValue, *tokenMeta, core.Cache(), tokenRenewTTL)
	}

	user, err := core.Store().UserStore().GetUser(ctx, tokenMeta.Appid, tokenMeta.UserID)
	if err != nil {
		return false, errors.New("ParseAuthToken.UserStore.GetUser", i18n.ERROR_INTERNAL, err)
	}

	role, err := getUserGlobalRole(core, user)
	if err != nil {
		return false, errors.New("ParseAuthToken.getUserGlobalRole", i18n.ERROR_INTERNAL, err)
	}

	c.Set(v1.TOKEN_CONTEXT_KEY, security.NewTokenClaims(tokenMeta.Appid, core.DefaultAppid(), tokenMeta.UserID, role, tokenMeta.ExpireAt))

	// 滑动续期
	auth.RefreshTokenTTL(ctx, tokenValue, core.Cache(), tokenRenewTTL)

	return true, nil
}

func Cors(c *gin.Context) {
	method := c.Request.Method
	origin := c.Request.Header.Get("Origin")
	if origin != "" {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, UPDATE")
		c.Header("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization, X-Authorization, X-Appid")
		c.Header("Access-Control-Expose-Headers", "Content-Length, Access-Control-Allow-Origin, Access-Control-Allow-Headers, Cache-Control, Content-Language, Content-Type")
		c.Header("Access-Control-Allow-Credentials", "true")
	}
	if method == "OPTIONS" {
		c.AbortWithStatus(http.StatusNoContent)
	}
	c.Next()
}

type LimiterFunc func(key string, opts ...core.LimitOption) gin.HandlerFunc

func UseLimit(appCore *core.Core, operation string, genKeyFunc func(c *gin.Context) string, opts ...core.LimitOption) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !appCore.UseLimiter(c, genKeyFunc(c), operation, opts...).Allow() {
			response.APIError(c, errors.New("middleware.limiter", i18n.ERROR_TOO_MANY_REQUESTS, nil).Code(http.StatusTooManyRequests))
		}
	}
}

// VerifyPermission 通过RBAC校验权限，角色继承在这里生效
func VerifyPermission(core *core.Core, permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, exists := c.Get(v1.TOKEN_CONTEXT_KEY)
		if !exists {
			response.APIError(c, errors.New("middleware.VerifyPermission.GetToken", i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized))
			return
		}

		tokenClaims, ok := claims.(security.TokenClaims)
		if !ok {
			response.APIError(c, errors.New("middleware.VerifyPermission.TokenClaims", i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized))
			return
		}

		if !core.Srv().RBAC().CheckPermission(tokenClaims.GetRole(), permission) {
			response.APIError(c, errors.New("middleware.VerifyPermission.CheckPermission", i18n.ERROR_PERMISSION_DENIED, nil).Code(http.StatusForbidden))
			return
		}

		c.Next()
	}
}

// VerifyAdminPermission 验证管理员权限
func VerifyAdminPermission(core *core.Core) gin.HandlerFunc {
	return VerifyPermission(core, srv.PermissionAdmin)
}

func getUserGlobalRole(core *core.Core, user *types.User) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	globalRole, err := core.Store().UserGlobalRoleStore().GetUserRole(ctx, user.Appid, user.ID)
	if err != nil && err != sql.ErrNoRows {
		return "", err
	}

	if globalRole == nil {
		return types.GlobalRoleMember, nil
	}

	return globalRole.Role, nil
}
