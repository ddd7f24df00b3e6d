package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrEmptyCredentials  = fmt.Errorf("username and password can't be empty")
	ErrInvalidSession    = fmt.Errorf("session not found")
	ErrUserNotFound      = fmt.Errorf("user not found")
	ErrContactNotFound   = fmt.Errorf("contact not found")
	ErrChatNotFound      = fmt.Errorf("chat not found")
	ErrFileNotFound      = fmt.Errorf("file not found")
	ErrSelfContact       = fmt.Errorf("you can't add yourself as a contact")
	ErrDuplicateProperty = fmt.Errorf("property already registered")
	ErrUnknownProperty   = fmt.Errorf("property not registered")
	ErrEmptyAuthor       = fmt.Errorf("author of a message can't be empty")
	ErrEmptyContents     = fmt.Errorf("contents of a message can't be empty")
	ErrEmptyFilename     = fmt.Errorf("filename of a file message can't be empty")
	ErrZeroTimestamp     = fmt.Errorf("a given timestamp can't be zero")
)

// Is reports whether err matches target. Passthrough to the standard
// library so call sites importing this package don't need a second
// aliased errors import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// MapToHTTPStatus translates recoverable domain errors into transport
// status codes. Anything unrecognized is a server-side failure.
func MapToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidSession):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrContactNotFound),
		errors.Is(err, ErrChatNotFound),
		errors.Is(err, ErrFileNotFound),
		errors.Is(err, ErrUnknownProperty):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyCredentials),
		errors.Is(err, ErrSelfContact),
		errors.Is(err, ErrDuplicateProperty),
		errors.Is(err, ErrEmptyAuthor),
		errors.Is(err, ErrEmptyContents),
		errors.Is(err, ErrEmptyFilename),
		errors.Is(err, ErrZeroTimestamp):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
