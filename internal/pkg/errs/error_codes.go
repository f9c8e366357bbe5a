/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both internally
and in responses to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates an unsupported request Content-Type.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates a malformed request body.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates the request rate exceeded the set limit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Room and Upload Business Logic Errors
const (
	// ErrRoomNotFound indicates the requested room does not exist or is inactive.
	ErrRoomNotFound = 2101

	// ErrUsernameTaken indicates the display name is already in use in the room
	// by a different client.
	ErrUsernameTaken = 2102

	// ErrUploadTooLarge indicates an upload exceeded the accumulated size cap.
	ErrUploadTooLarge = 2201
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified server internal error.
	ErrUnknown = 5000
)
