package service

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/dtroode/themekeeper/internal/model"
)

// MinPasswordLength is the shortest password accepted for new users.
const MinPasswordLength = 6

// emailPattern is the common address pattern used by mobile platforms.
var emailPattern = regexp.MustCompile(
	`^[a-zA-Z0-9+._%\-]{1,256}@[a-zA-Z0-9][a-zA-Z0-9\-]{0,64}(\.[a-zA-Z0-9][a-zA-Z0-9\-]{0,25})+$`,
)

// Reason enumerates validation failures.
type Reason int

const (
	ReasonEmptyEmail Reason = iota + 1
	ReasonMalformedEmail
	ReasonEmptyFirstName
	ReasonEmptyLastName
	ReasonShortPassword
	ReasonUnknownRole
	ReasonEmptyTitle
	ReasonEmptyKey
)

var reasonMessages = map[Reason]string{
	ReasonEmptyEmail:     "Enter email",
	ReasonMalformedEmail: "Enter a valid email",
	ReasonEmptyFirstName: "Enter first name",
	ReasonEmptyLastName:  "Enter last name",
	ReasonShortPassword:  fmt.Sprintf("Password must be at least %d characters", MinPasswordLength),
	ReasonUnknownRole:    "Select a valid role",
	ReasonEmptyTitle:     "Enter theme title",
	ReasonEmptyKey:       "Theme is not saved yet",
}

// Message returns the user-facing text for the reason.
func (r Reason) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return "Invalid input"
}

// ValidationError reports a rejected input. No remote call was issued.
type ValidationError struct {
	Reason Reason
}

func (e *ValidationError) Error() string {
	return e.Reason.Message()
}

// Unwrap lets errors.Is match model.ErrValidationRejected.
func (e *ValidationError) Unwrap() error {
	return model.ErrValidationRejected
}

func reject(reason Reason) error {
	return &ValidationError{Reason: reason}
}

// ValidateNewUser checks the create-user input. Checks run in order and
// the first failure wins.
func ValidateNewUser(email, firstName, lastName, password string) error {
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		return reject(ReasonEmptyEmail)
	case !emailPattern.MatchString(email):
		return reject(ReasonMalformedEmail)
	case strings.TrimSpace(firstName) == "":
		return reject(ReasonEmptyFirstName)
	case strings.TrimSpace(lastName) == "":
		return reject(ReasonEmptyLastName)
	case utf8.RuneCountInString(strings.TrimSpace(password)) < MinPasswordLength:
		return reject(ReasonShortPassword)
	}
	return nil
}

func validateRole(role string, roles []string) error {
	if !slices.Contains(roles, role) {
		return reject(ReasonUnknownRole)
	}
	return nil
}

func normalizeNewUser(in model.NewUser) model.NewUser {
	out := model.NewUser{
		Email:     strings.TrimSpace(in.Email),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Password:  strings.TrimSpace(in.Password),
		Role:      strings.TrimSpace(in.Role),
	}
	if out.Role == "" {
		out.Role = model.DefaultRole
	}
	return out
}
