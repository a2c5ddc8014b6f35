package chat

// Error codes for notices surfaced to the user.
const (
	ErrCodeFetchFailed  = "fetch_failed"
	ErrCodeSendFailed   = "send_failed"
	ErrCodeAuthRequired = "auth_required"
)

// ChatError wraps a code and human-readable message. Every ChatError is
// recoverable: the engine keeps running and the user can retry.
type ChatError struct {
	Code    string
	Message string
}

func (e *ChatError) Error() string {
	return e.Message
}

func chatError(code, msg string) *ChatError {
	return &ChatError{Code: code, Message: msg}
}
