package domain

import "time"

// Role defines the access level of an authenticated identity.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"

	// RoleNone is the resolved role when no role record exists for an
	// identity. It is an access-denied state, not an error.
	RoleNone Role = "none"
)

// User represents a stored credential. The password hash never leaves the
// server. SignupRole duplicates the role chosen at signup so a missing
// role record can be repaired at the next login.
type User struct {
	UID          string    `json:"uid" bson:"_id"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"passwordHash"`
	SignupRole   Role      `json:"-" bson:"signupRole"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// RoleRecord is the persisted mapping from an identity to exactly one
// access role, stored separately from the credential.
type RoleRecord struct {
	UID       string    `json:"uid" bson:"_id"`
	Email     string    `json:"email" bson:"email"`
	Role      Role      `json:"role" bson:"role"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Session is the resolved identity attached to a request once the token
// has been validated and the role looked up. It is owned by the request
// context, never by package-level state.
type Session struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
