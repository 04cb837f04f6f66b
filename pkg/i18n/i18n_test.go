package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLang(t *testing.T) {
	l := NewLocalizer("zh-CN", "en")

	assert.Equal(t, "Journal entry not found", l.Get("en", ERROR_ENTRY_NOT_FOUND))
	assert.Equal(t, "日记不存在", l.Get("zh-CN", ERROR_ENTRY_NOT_FOUND))

	// unknown ids fall back to the id itself
	assert.Equal(t, "error.nope", l.Get("en", "error.nope"))
	assert.Equal(t, "error.internal", l.Get("fr", ERROR_INTERNAL))
}
