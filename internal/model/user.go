package model

// DefaultRole is assumed when a profile carries no role.
const DefaultRole = "user"

// AdminRole grants access to the admin API.
const AdminRole = "admin"

// UserAccount is a profile record stored under users/{uid}.
type UserAccount struct {
	UID       string
	FirstName *string
	LastName  *string
	Email     *string
	Role      *string
}

// RoleOrDefault returns the role, or DefaultRole when absent.
func (u UserAccount) RoleOrDefault() string {
	if u.Role == nil || *u.Role == "" {
		return DefaultRole
	}
	return *u.Role
}

// UserFromDocument decodes a document. Missing fields map to nil.
func UserFromDocument(doc Document) UserAccount {
	return UserAccount{
		UID:       doc.Key,
		FirstName: StringField(doc.Fields, "firstName"),
		LastName:  StringField(doc.Fields, "lastName"),
		Email:     StringField(doc.Fields, "email"),
		Role:      StringField(doc.Fields, "role"),
	}
}

// NewUser carries the input of the create-user operation.
type NewUser struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
	Role      string
}

// ProfileFields returns the users/{uid} representation of the new user.
func (u NewUser) ProfileFields() map[string]any {
	return map[string]any{
		"firstName": u.FirstName,
		"lastName":  u.LastName,
		"email":     u.Email,
		"role":      u.Role,
	}
}
