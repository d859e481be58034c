package domain

import "strconv"

// Role is the role of a caller as resolved by the identity provider.
type Role string

// Roles
const (
	RoleDriver Role = "driver"
	RoleAdmin  Role = "admin"
)

// Valid checks if the Role is valid
func (r Role) Valid() bool {
	return r == RoleDriver || r == RoleAdmin
}

// Actor is the caller of an operation. DriverID is set for drivers only.
type Actor struct {
	ID       string
	Role     Role
	DriverID int64
}

// IsAdmin reports whether the actor has admin rights.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// IsDriver reports whether the actor is the driver with the given id.
func (a Actor) IsDriver(id int64) bool {
	return a.Role == RoleDriver && a.DriverID == id
}

// AdminActor returns an admin actor with the given id.
func AdminActor(id string) Actor {
	return Actor{ID: id, Role: RoleAdmin}
}

// DriverActor returns the actor for driver id.
func DriverActor(id int64) Actor {
	return Actor{ID: "driver-" + strconv.FormatInt(id, 10), Role: RoleDriver, DriverID: id}
}
