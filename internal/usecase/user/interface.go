package user

import "context"

// UserUsecase defines the user business operations consumed by transports.
type UserUsecase interface {
	ListUsers(ctx context.Context) (*ListUsersResponse, error)
	GetUser(ctx context.Context, in GetUserRequest) (*GetUserResponse, error)
	RegisterUser(ctx context.Context, in RegisterUserRequest) (*RegisterUserResponse, error)
	Login(ctx context.Context, in LoginRequest) (*LoginResponse, error)
	UpdateUser(ctx context.Context, in UpdateUserRequest) error
	DeleteUser(ctx context.Context, in DeleteUserRequest) error
}

var _ UserUsecase = (*Usecase)(nil)
