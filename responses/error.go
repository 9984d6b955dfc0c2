package responses

import (
	"fmt"
	"net/http"
)

// Error describes an error for humans and machines
type Error struct {
	Status  int    `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e Error) Error() string {
	return fmt.Sprintf("status:%d, code:%d, message:%q", e.Status, e.Code, e.Message)
}

// NewError - a brand new error
func NewError(code int, message string) *Error {
	return &Error{
		Status:  http.StatusInternalServerError,
		Code:    code,
		Message: message,
	}
}

// NewErrorf - a brand new error using fmt.Sprintf
func NewErrorf(code int, message string, args ...interface{}) *Error {
	return NewError(code, fmt.Sprintf(message, args...))
}

// NewNotFound - the addressed theme or asset does not exist
func NewNotFound(message string) *Error {
	return &Error{
		Status:  http.StatusNotFound,
		Code:    CodeNotFound,
		Message: message,
	}
}

// NewBadRequest - the request was understood but is not valid
func NewBadRequest(code int, message string) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Code:    code,
		Message: message,
	}
}
