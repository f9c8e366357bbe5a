/*
Package errs provides custom error types and application-level error code constants.

This file maps every error code to its CustomError template, standardizing
HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap holds the CustomError template for every application error code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format."},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format."},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data."},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Room and Upload Business Logic Errors
	ErrRoomNotFound:   {Code: ErrRoomNotFound, Message: "Room not found or inactive."},
	ErrUsernameTaken:  {Code: ErrUsernameTaken, Message: "Username is already taken in this room."},
	ErrUploadTooLarge: {Code: ErrUploadTooLarge, Message: "Upload is too large."},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
