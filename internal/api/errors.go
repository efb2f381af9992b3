package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	CodeUnknown      = "UNKNOWN_ERROR"
	CodeNetwork      = "NETWORK_ERROR"
	CodeTimeout      = "TIMEOUT"
	CodeInvalidShape = "INVALID_RESPONSE"

	msgUnexpected = "Unexpected error occurred"
	msgHTTP       = "Something went wrong. Please try again."
)

// Error is the normalized failure of a backend call.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

// Envelope is the body the backend sends on failure.
type Envelope struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// errorFromResponse builds an Error from a non-2xx response body.
func errorFromResponse(status int, body []byte) *Error {
	e := &Error{Status: status, Code: CodeUnknown, Message: msgHTTP}
	if !gjson.ValidBytes(body) {
		return e
	}
	parsed := gjson.ParseBytes(body)
	if code := parsed.Get("error.code"); code.Exists() && code.String() != "" {
		e.Code = code.String()
	}
	switch msg := parsed.Get("error.message"); {
	case msg.Exists() && strings.TrimSpace(msg.String()) != "":
		e.Message = msg.String()
	case parsed.Get("message").Type == gjson.String && parsed.Get("message").String() != "":
		e.Message = parsed.Get("message").String()
	case parsed.Get("error").Type == gjson.String && parsed.Get("error").String() != "":
		e.Message = parsed.Get("error").String()
	}
	return e
}

// Normalize maps any error into *Error. Errors that are already normalized
// pass through unchanged.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Status: http.StatusGatewayTimeout, Code: CodeTimeout, Message: "Request timed out", cause: err}
	case errors.Is(err, ErrNotArray):
		return &Error{Status: http.StatusInternalServerError, Code: CodeInvalidShape, Message: err.Error(), cause: err}
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		msg = msgUnexpected
	}
	return &Error{Status: http.StatusInternalServerError, Code: CodeUnknown, Message: msg, cause: err}
}

func networkError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return Normalize(err)
	}
	detail := err.Error()
	var uerr *url.Error
	if errors.As(err, &uerr) {
		if uerr.Timeout() {
			return &Error{Status: http.StatusGatewayTimeout, Code: CodeTimeout, Message: "Request timed out", cause: err}
		}
		if uerr.Err != nil {
			detail = uerr.Err.Error()
		}
	}
	return &Error{
		Status:  http.StatusInternalServerError,
		Code:    CodeNetwork,
		Message: fmt.Sprintf("Unable to reach server: %s", detail),
		cause:   err,
	}
}
