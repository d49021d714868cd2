package model

import "time"

// Role is an application-wide or per-association role. Roles are totally
// ordered; see Rank.
type Role string

const (
	RoleGuest       Role = "guest"
	RoleMember      Role = "member"
	RoleManager     Role = "manager"
	RoleAdmin       Role = "admin"
	RoleSystemAdmin Role = "system_admin"
	RoleSuperAdmin  Role = "super_admin"
)

// Roles lists every role from least to most privileged.  The order is part
// of the persisted contract (it mirrors the user_role enum) and must not be
// rearranged.
var Roles = []Role{RoleGuest, RoleMember, RoleManager, RoleAdmin, RoleSystemAdmin, RoleSuperAdmin}

// Rank returns the position of r in Roles, or -1 for an unknown role.
func (r Role) Rank() int {
	for i, known := range Roles {
		if known == r {
			return i
		}
	}
	return -1
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool { return r.Rank() >= 0 }

// User represents an authentication identity as stored in the `users`
// table.  Email is unique case-insensitively; repositories normalise it to
// lower case before writing.
//
// Fields:
//
//	ID           – uuid (relational) or "user_<ts>_<rand>" (key-value).
//	Email        – unique login address.
//	PasswordHash – bcrypt hash; nil for accounts that sign in externally.
//	Role         – global role.
//	CreatedAt    – creation timestamp.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash *string   `json:"password_hash,omitempty" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Profile is the display identity of a User.  It shares the user's ID, so
// a profile id can be used wherever a user id is expected.  Deleting the
// user deletes the profile.
type Profile struct {
	ID               string    `json:"id" db:"id"`
	FirstName        *string   `json:"first_name,omitempty" db:"first_name"`
	LastName         *string   `json:"last_name,omitempty" db:"last_name"`
	DisplayName      *string   `json:"display_name,omitempty" db:"display_name"`
	TwoFactorEnabled bool      `json:"two_factor_enabled" db:"two_factor_enabled"`
	TOTPSecret       *string   `json:"totp_secret,omitempty" db:"totp_secret"`
	RecoveryKeys     []string  `json:"recovery_keys" db:"recovery_keys"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}
