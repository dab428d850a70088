package model

import "time"

// Role is an employee's permission level.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool { return r == RoleAdmin || r == RoleStaff }

// Employee represents a staff member as stored in the `employees` table.
// The PIN is never stored in clear text; PinHash holds its bcrypt hash and
// is never serialized.
//
// Fields:
//
//	ID        – primary key identifier of the employee.
//	Name      – unique login name shown on the terminal.
//	Role      – admin or staff.
//	PinHash   – bcrypt hash of the PIN.
//	CreatedAt – timestamp of creation.
type Employee struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	PinHash   string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
