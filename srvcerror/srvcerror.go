package srvcerror

import "net/http"

// FieldError points at one invalid field of a request payload.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

type Error struct {
	errorCode  string
	msgToUser  string // public
	dbgInfoErr error  // private, for debugging
	fields     []FieldError

	httpStatus int // optional, for HTTP responses
}

func (e *Error) Error() string {
	return e.msgToUser
}

func (e *Error) ErrorCode() string {
	return e.errorCode
}

func (e *Error) DebugInfo() error {
	return e.dbgInfoErr
}

func (e *Error) SetDebug(err error) *Error {
	e.dbgInfoErr = err
	return e
}

func (e *Error) Fields() []FieldError {
	return e.fields
}

func (e *Error) SetFields(fields []FieldError) *Error {
	e.fields = fields
	return e
}

func (e *Error) HttpStatusCode() int {
	if e.httpStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.httpStatus
}

func (e *Error) SetHttpStatusCode(code int) *Error {
	e.httpStatus = code
	return e
}

func New(errorCode string, msgToUser string) *Error {
	return &Error{
		errorCode: errorCode,
		msgToUser: msgToUser,
	}
}

const (
	ErrCodeInternalServerError = "internal_server_error"
	ErrCodeInvalidRequest      = "invalid_request"
)

func ErrInternalSE() *Error {
	return New(
		ErrCodeInternalServerError,
		"internal server error",
	).SetHttpStatusCode(http.StatusInternalServerError)
}

func ErrInvalidRequest(msg string) *Error {
	return New(ErrCodeInvalidRequest, msg).SetHttpStatusCode(http.StatusBadRequest)
}
