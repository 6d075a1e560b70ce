package models

// UserRole represents the account roles known to the portal.
type UserRole string

const (
	RoleSuperAdmin UserRole = "super_admin"
	RoleAdmin      UserRole = "admin"
	RoleEditor     UserRole = "editor"
	RoleStudent    UserRole = "student"
)

// IsStaff reports whether the role may use the administration area.
func (r UserRole) IsStaff() bool {
	return r != "" && r != RoleStudent
}

// User is a portal account. Password is kept in plaintext.
type User struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	Password  string   `json:"password,omitempty"`
	Role      UserRole `json:"role"`
	FullName  string   `json:"fullName,omitempty"`
	CreatedAt string   `json:"createdAt,omitempty"`
}

// Public returns a copy safe to hand to API clients.
func (u User) Public() User {
	u.Password = ""
	return u
}
