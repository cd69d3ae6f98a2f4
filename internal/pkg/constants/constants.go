package constants

import "net/http"

// CodedError carries an HTTP status so the API error handler can surface it.
type CodedError struct {
	code int
	msg  string
}

func NewCodedError(code int, msg string) *CodedError {
	return &CodedError{code: code, msg: msg}
}

func (e *CodedError) Error() string {
	return e.msg
}

func (e *CodedError) Code() int {
	return e.code
}

var (
	ErrDBNotFound        = NewCodedError(http.StatusNotFound, "record not found")
	ErrUnauthorized      = NewCodedError(http.StatusUnauthorized, "unauthorized")
	ErrMissingAuthCookie = NewCodedError(http.StatusUnauthorized, "missing auth cookie")
	ErrBadRequest        = NewCodedError(http.StatusBadRequest, "bad request")
)

// Viper keys.
const (
	ViperDatabaseURL = "database_url"
	ViperListenAddr  = "listen_addr"
	ViperSourcesFile = "sources_file"
	ViperSecretKey   = "secret_key"
	ViperBoundaryAPI = "boundary_api"
	ViperOverlayAPI  = "overlay_api"
	ViperDebug       = "debug"
)

const CookieKeySecretToken = "secret_token"
