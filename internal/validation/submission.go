package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"feedback-backend/internal/models"
)

// Payload is the raw submission body. Fields are left untyped so that a
// number or object sent in place of a string is reported per field instead
// of failing the whole decode.
type Payload struct {
	UserID  any `json:"userId"`
	Message any `json:"message"`
}

// Submission is a payload that passed validation.
type Submission struct {
	UserID  string
	Message string
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed.
type ValidationError struct {
	Details []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		parts = append(parts, d.Field+": "+d.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate checks a payload and returns the normalized submission.
// userId is trimmed of surrounding whitespace; message is kept verbatim.
// NUL is rejected in both fields since Postgres text cannot hold it.
func Validate(p Payload) (Submission, error) {
	var details []FieldError

	userID, ok := p.UserID.(string)
	userID = strings.TrimSpace(userID)
	switch {
	case p.UserID == nil:
		details = append(details, FieldError{Field: "userId", Message: "userId required"})
	case !ok:
		details = append(details, FieldError{Field: "userId", Message: "expected string"})
	case userID == "":
		details = append(details, FieldError{Field: "userId", Message: "userId required"})
	case strings.ContainsRune(userID, 0):
		details = append(details, FieldError{Field: "userId", Message: "userId must not contain NUL characters"})
	}

	message, ok := p.Message.(string)
	switch {
	case p.Message == nil:
		details = append(details, FieldError{Field: "message", Message: "message required"})
	case !ok:
		details = append(details, FieldError{Field: "message", Message: "expected string"})
	case message == "":
		details = append(details, FieldError{Field: "message", Message: "message must contain at least 1 character"})
	case utf8.RuneCountInString(message) > models.MaxMessageLength:
		details = append(details, FieldError{
			Field:   "message",
			Message: fmt.Sprintf("message must contain at most %d characters", models.MaxMessageLength),
		})
	case strings.ContainsRune(message, 0):
		details = append(details, FieldError{Field: "message", Message: "message must not contain NUL characters"})
	}

	if len(details) > 0 {
		return Submission{}, &ValidationError{Details: details}
	}
	return Submission{UserID: userID, Message: message}, nil
}

// Malformed reports a body that could not be decoded at all.
func Malformed(reason string) *ValidationError {
	return &ValidationError{Details: []FieldError{{Field: "body", Message: reason}}}
}
