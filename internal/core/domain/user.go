package domain

import "time"

// Role is the authorization level carried by a user and by their tokens.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the public projection of a row in the users table. The password
// hash lives only in Credentials and never leaves the auth flow.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UserSummary is what a delete returns: identifying fields only.
type UserSummary struct {
	ID    int64  `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
	Role  Role   `json:"role" db:"role"`
}

// Credentials pairs a user with its stored bcrypt hash.
type Credentials struct {
	User
	PasswordHash string `db:"password_hash"`
}

// Identity is the caller as established by a verified token.
type Identity struct {
	ID   int64
	Role Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Updatable field names, in the order they are reported.
const (
	FieldName  = "name"
	FieldEmail = "email"
	FieldRole  = "role"
)

// UserChanges is a partial update. A nil field is left untouched.
type UserChanges struct {
	Name  *string
	Email *string
	Role  *Role
}

// Fields lists the names of the supplied fields.
func (c UserChanges) Fields() []string {
	fields := make([]string, 0, 3)
	if c.Name != nil {
		fields = append(fields, FieldName)
	}
	if c.Email != nil {
		fields = append(fields, FieldEmail)
	}
	if c.Role != nil {
		fields = append(fields, FieldRole)
	}
	return fields
}

func (c UserChanges) Empty() bool {
	return c.Name == nil && c.Email == nil && c.Role == nil
}

// Demotes reports whether the change sets a non-admin role.
func (c UserChanges) Demotes() bool {
	return c.Role != nil && *c.Role != RoleAdmin
}
