package unb

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrInvalidToken indicates the API rejected the application token (HTTP 401).
	ErrInvalidToken = errors.New("invalid token")

	// ErrForbidden indicates the application is not allowed to access the
	// resource (HTTP 403). Check the app's permissions in the guild.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates the guild, user, or item does not exist (HTTP 404).
	ErrNotFound = errors.New("not found")

	// ErrAPI indicates any other non-success response from the API.
	ErrAPI = errors.New("api request failed")

	// ErrBadID indicates an identifier argument of an unsupported shape.
	ErrBadID = errors.New("invalid id")

	// ErrParse indicates malformed token, balance, or timestamp data.
	ErrParse = errors.New("malformed data")
)

// Default messages used when an error response carries no message body.
const (
	defaultInvalidTokenMessage = "Token is not valid"
	defaultForbiddenMessage    = "This App is not allowed to access this resource"
	defaultNotFoundMessage     = "Unknown Guild"
	defaultFailureMessage      = "HTTP request failed."
)

// APIError is an error response from the UnbelievaBoat API.
// It unwraps to one of ErrInvalidToken, ErrForbidden, ErrNotFound, or ErrAPI
// depending on the status code, so callers can use errors.Is().
type APIError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int

	// Message is the human-readable message from the response body, or the
	// documented default for the status code when the body carries none.
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("unbelievaboat: %d %s", e.StatusCode, e.Message)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrInvalidToken
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return ErrAPI
	}
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidToken reports whether err is an authentication failure.
func IsInvalidToken(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}

// IsForbidden reports whether err is a permission failure.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// wireMessage extracts the "message" field from an error response body.
// Returns "" when the body is empty or not JSON.
func wireMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	return payload.Message
}

// mapStatus maps a response status code and body to an API error.
// Returns nil for any 2xx status. The checks are ordered: 401, then 403,
// then 404, then any other non-success status.
func mapStatus(status int, body []byte) error {
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return nil
	}

	message := wireMessage(body)

	switch status {
	case http.StatusUnauthorized:
		if message == "" {
			message = defaultInvalidTokenMessage
		}
	case http.StatusForbidden:
		if message == "" {
			message = defaultForbiddenMessage
		}
	case http.StatusNotFound:
		if message == "" {
			message = defaultNotFoundMessage
		}
	default:
		if message == "" {
			message = defaultFailureMessage
		}
	}

	return &APIError{StatusCode: status, Message: message}
}
