package user

// RegisterUserRequest represents the request payload for registering a new user.
type RegisterUserRequest struct {
	Name     string `validate:"required"`
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// RegisterUserResponse carries the id assigned by the store.
type RegisterUserResponse struct {
	ID int64
}

// LoginRequest represents the credentials submitted on login.
type LoginRequest struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// LoginResponse carries the identity of the authenticated user.
// No bearer token is issued here.
type LoginResponse struct {
	User User
}

// UpdateUserRequest represents a partial update. Empty fields are left unchanged.
type UpdateUserRequest struct {
	ID       int64
	Name     string
	Email    string
	Password string
}

// DeleteUserRequest represents the request payload for deleting a user.
type DeleteUserRequest struct {
	ID int64
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID int64
}

// GetUserResponse represents the response payload for user details.
type GetUserResponse struct {
	User User
}

// ListUsersResponse represents the response payload for user listing.
type ListUsersResponse struct {
	Users []User
}

// User is the public view of a user; it never carries the password hash.
type User struct {
	ID    int64
	Name  string
	Email string
}
