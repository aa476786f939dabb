package model

// Role is the access level stored in users.role. It is an open string
// enumeration: rows may carry values other than the ones declared here
// (a bootstrap seed once used ROOT) and those values grant nothing extra.
type Role string

const (
	RoleUser  Role = "USER"  // default for every signup
	RoleAdmin Role = "ADMIN" // may manage other users
)

// IsAdmin reports whether r is exactly ADMIN. There is no hierarchy: any
// other value, including ROOT, is not an admin.
func (r Role) IsAdmin() bool { return r == RoleAdmin }

// Known reports whether r is one of the roles an admin may assign.
func (r Role) Known() bool { return r == RoleUser || r == RoleAdmin }
