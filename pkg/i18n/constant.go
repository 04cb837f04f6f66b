package i18n

var ALLOW_LANG = map[string]bool{
	"en":    true,
	"zh-CN": true,
}

const DEFAULT_LANG = "en"

const (
	ERROR_INTERNAL          = "error.internal"
	ERROR_NOT_FOUND         = "error.notfound"
	ERROR_INVALIDARGUMENT   = "error.invalidargument"
	ERROR_PERMISSION_DENIED = "error.permission.denied"
	ERROR_UNAUTHORIZED      = "error.unauthorized"
	ERROR_FORBIDDEN         = "error.forbidden"
	ERROR_TOO_MANY_REQUESTS = "error.tooManyRequests"
	ERROR_EXIST             = "error.exist"

	ERROR_LOGIN_ACCOUNT_INCORRECT  = "error.login.account.incorrect"
	ERROR_EMAIL_ALREADY_REGISTERED = "error.email_already_registered"
	ERROR_INVALID_TOKEN            = "error.invalid.token"
	ERROR_INVALID_ACCOUNT          = "error.invalid.account"
	ERROR_FEDERATED_TOKEN_INVALID  = "error.federated.token.invalid"

	ERROR_ENTRY_NOT_FOUND    = "error.journal.entry.notfound"
	ERROR_EMPTY_CONVERSATION = "error.journal.conversation.empty"

	ERROR_CAPTURE_SESSION_NOT_FOUND = "error.capture.session.notfound"
	ERROR_CAPTURE_NOT_CONFIGURED    = "error.capture.not.configured"
	ERROR_OBJECT_STORAGE_UNUSABLE   = "error.objectstorage.unusable"
)
