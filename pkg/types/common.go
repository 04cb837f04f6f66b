package types

import "fmt"

type WsEventType int32

const (
	WS_EVENT_UNKNOWN            WsEventType = 0
	WS_EVENT_TRANSCRIPT_PARTIAL WsEventType = 10  // 转写中间结果
	WS_EVENT_TRANSCRIPT_FINAL   WsEventType = 11  // 转写最终结果
	WS_EVENT_TRANSCRIPT_FAILED  WsEventType = 12  // 转写失败
	WS_EVENT_JOURNAL_CHANGED    WsEventType = 100 // 日记集合发生变化
	WS_EVENT_SYSTEM_ONSUBSCRIBE WsEventType = 300 // IMTopic 成功订阅
	WS_EVENT_SYSTEM_UNSUBSCRIBE WsEventType = 301 // IMTopic 取消订阅
	WS_EVENT_OTHERS             WsEventType = 400
)

// Topic layout mirrors the URL namespace so the websocket layer can apply the
// same ownership checks as the REST layer.
func UserJournalTopic(userID string) string {
	return fmt.Sprintf("/journal/%s", userID)
}

func CaptureSessionTopic(sessionID string) string {
	return fmt.Sprintf("/capture/session/%s", sessionID)
}

const (
	LANGUAGE_EN_KEY = "en"
	LANGUAGE_CN_KEY = "zh-CN"
)

const (
	NO_PAGINATION = 0

	DEFAULT_PAGE_SIZE = 20
	MAX_PAGE_SIZE     = 100
)
