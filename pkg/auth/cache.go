package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/reverie-ai/reverie/pkg/errors"
	"github.com/reverie-ai/reverie/pkg/i18n"
	"github.com/reverie-ai/reverie/pkg/types"
	"github.com/reverie-ai/reverie/pkg/utils"
)

func tokenCacheKey(tokenValue string) string {
	return fmt.Sprintf("user:token:%s", utils.MD5(tokenValue))
}

// ValidateTokenFromCache 从缓存中验证 auth token
func ValidateTokenFromCache(ctx context.Context, tokenValue string, cache types.Cache) (*types.UserTokenMeta, error) {
	if tokenValue == "" {
		return nil, errors.New("auth.ValidateTokenFromCache.empty_token", i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized)
	}

	tokenMetaStr, err := cache.Get(ctx, tokenCacheKey(tokenValue))
	if err != nil && err != redis.Nil {
		return nil, errors.New("auth.ValidateTokenFromCache.cache_get", i18n.ERROR_INTERNAL, err)
	}

	if tokenMetaStr == "" {
		return nil, errors.New("auth.ValidateTokenFromCache.token_not_found", i18n.ERROR_UNAUTHORIZED, fmt.Errorf("nil token")).Code(http.StatusUnauthorized)
	}

	var meta types.UserTokenMeta
	if err := json.Unmarshal([]byte(tokenMetaStr), &meta); err != nil {
		return nil, errors.New("auth.ValidateTokenFromCache.unmarshal", i18n.ERROR_INTERNAL, err).Code(http.StatusUnauthorized)
	}

	return &meta, nil
}

// SaveTokenToCache 登录成功后写入token缓存
func SaveTokenToCache(ctx context.Context, tokenValue string, meta types.UserTokenMeta, cache types.Cache, ttl time.Duration) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return errors.New("auth.SaveTokenToCache.marshal", i18n.ERROR_INTERNAL, err)
	}

	if err := cache.SetEx(ctx, tokenCacheKey(tokenValue), string(raw), ttl); err != nil {
		return errors.New("auth.SaveTokenToCache.cache_set", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

// RefreshTokenTTL 滑动续期
func RefreshTokenTTL(ctx context.Context, tokenValue string, cache types.Cache, ttl time.Duration) {
	_ = cache.Expire(ctx, tokenCacheKey(tokenValue), ttl)
}

// DeleteTokenFromCache 注销时删除token缓存
func DeleteTokenFromCache(ctx context.Context, tokenValue string, cache types.Cache) error {
	return cache.Del(ctx, tokenCacheKey(tokenValue))
}
