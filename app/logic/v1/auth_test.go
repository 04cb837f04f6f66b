package v1_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/reverie-ai/reverie/app/logic/v1"
	"github.com/reverie-ai/reverie/pkg/utils"
)

func Test_GetAccessTokenDetail_Unknown(t *testing.T) {
	core := newTestCore(t)

	logic := v1.NewAuthLogic(context.Background(), core)
	token, err := logic.GetAccessTokenDetail(core.DefaultAppid(), utils.GenRandomID())
	require.NoError(t, err)
	assert.Nil(t, token)
}

func Test_RegisterLoginRoundtrip(t *testing.T) {
	core := newTestCore(t)

	email := fmt.Sprintf("it-%d@example.com", time.Now().UnixNano())
	logic := v1.NewUserLogic(context.Background(), core)

	userID, err := logic.Register(core.DefaultAppid(), "integration", email, "secret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, userID)

	result, err := logic.Login(core.DefaultAppid(), email, "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, userID, result.UserID)
	assert.NotEmpty(t, result.Token)

	_, err = logic.Login(core.DefaultAppid(), email, "wrong-pass")
	assert.Error(t, err)
}
