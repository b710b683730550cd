package adminapi

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInResponse struct {
	AccessToken string `json:"access_token"`
}

// ThemeQuery selects themes by a case-insensitive title substring.
type ThemeQuery struct {
	Query string `json:"query"`
}

// Theme is a theme on the wire. Absent fields are omitted.
type Theme struct {
	Key      string  `json:"key"`
	Title    *string `json:"title,omitempty"`
	Theory   *string `json:"theory,omitempty"`
	Examples *string `json:"examples,omitempty"`
}

// ThemeList is one rendered state of the theme list.
type ThemeList struct {
	Query     string  `json:"query"`
	Themes    []Theme `json:"themes"`
	Loaded    bool    `json:"loaded"`
	NoResults bool    `json:"no_results"`
	Revision  int64   `json:"revision"`
	Notice    string  `json:"notice,omitempty"`
}

// ThemeWrite creates a theme when Key is empty and updates it otherwise.
type ThemeWrite struct {
	Key      string `json:"key,omitempty"`
	Title    string `json:"title"`
	Theory   string `json:"theory"`
	Examples string `json:"examples"`
}

type ThemeKey struct {
	Key string `json:"key"`
}

// Ack carries the notice shown after a successful mutation.
type Ack struct {
	Message string `json:"message"`
}

type UserQuery struct {
	Reload bool `json:"reload"`
}

// User is an account row. DisplayName is "last first".
type User struct {
	UID         string  `json:"uid"`
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	Email       *string `json:"email,omitempty"`
	Role        string  `json:"role"`
	DisplayName string  `json:"display_name"`
}

type UserList struct {
	Users  []User   `json:"users"`
	Loaded bool     `json:"loaded"`
	Roles  []string `json:"roles"`
}

type UserRef struct {
	UID string `json:"uid"`
}

type UserCard struct {
	UID          string `json:"uid"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	PasswordNote string `json:"password_note"`
	DeletionNote string `json:"deletion_note"`
}

type NewUser struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
	Role      string `json:"role,omitempty"`
}

// CreatedUser is returned once per created account and is the only place
// the plaintext password is echoed back.
type CreatedUser struct {
	UID      string `json:"uid"`
	Email    string `json:"email"`
	Password string `json:"password"`
	State    string `json:"state"`
	Message  string `json:"message"`
}

// Encode converts a message into its Struct form.
func Encode(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", v, err)
	}
	s := new(structpb.Struct)
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to convert %T to struct: %w", v, err)
	}
	return s, nil
}

// Decode fills v from a Struct. A nil Struct leaves v untouched.
func Decode(s *structpb.Struct, v any) error {
	if s == nil {
		return nil
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to convert struct: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %T: %w", v, err)
	}
	return nil
}
