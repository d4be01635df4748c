package domain

import "time"

// Role names used by the backend for authorization decisions.
// The client only uses them to decide what to render; the server
// re-checks every request.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// ValidRoles lists the roles a user form may assign.
var ValidRoles = []string{RoleAdmin, RoleStaff}

// User mirrors the backend user resource.
type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin reports whether the user may reach admin-only screens.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// ValidRole returns true if role is a known role name.
func ValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
