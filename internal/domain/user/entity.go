package user

// User represents a user entity in the system.
type User struct {
	ID           int64  // ID is assigned by the store on creation and never changes
	Name         string // Name is the display name of the user
	Email        string // Email is the login identifier
	PasswordHash string // PasswordHash is the bcrypt digest; never exposed in responses
}

// Changes describes a partial update. Empty fields are left untouched.
type Changes struct {
	Name         string
	Email        string
	PasswordHash string
}

// IsEmpty reports whether no field would be modified.
func (c Changes) IsEmpty() bool {
	return c.Name == "" && c.Email == "" && c.PasswordHash == ""
}
