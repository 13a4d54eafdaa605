package transport

import "encoding/json"

// Reply is the JSON envelope answering an invoke request.
//
// A reply with OK set and no Result is "undefined": the host accepted the request
// but has nothing useful to say, which is how contained failures look to a renderer.
type Reply struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *ErrorDetail    `json:"error,omitempty"`
}

// ErrorDetail holds a failure the host chose to expose to the renderer.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Failure codes.
const (
	CodeHandlerRejected = "HANDLER_REJECTED"
	CodeHandlerFailed   = "HANDLER_FAILED"
)

// Undefined returns the reply sent when a request produced no result.
func Undefined() *Reply {
	return &Reply{OK: true}
}

// Success returns a reply carrying an encoded result.
func Success(result []byte) *Reply {
	return &Reply{OK: true, Result: result}
}

// Failure returns a reply carrying a structured error.
func Failure(code, message string) *Reply {
	return &Reply{OK: false, Error: &ErrorDetail{Code: code, Message: message}}
}

// IsUndefined reports whether r is an "undefined" reply.
func (r *Reply) IsUndefined() bool {
	return r.OK && len(r.Result) == 0
}
