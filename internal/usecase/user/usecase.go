package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	domain "user-api-service/internal/domain/user"
	apperrors "user-api-service/pkg/errors"
	"user-api-service/pkg/logger"

	"github.com/go-playground/validator/v10"
)

// Repository defines the interface for user data access operations.
// Every failure of the underlying database is reported as *errors.StoreError.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (int64, error)          // Create a new user, returning its id
	GetByID(ctx context.Context, id int64) (*domain.User, error)        // Retrieve user by ID (NotFoundError when absent)
	GetByEmail(ctx context.Context, email string) (*domain.User, error) // Retrieve user by email (nil when absent)
	Update(ctx context.Context, id int64, changes domain.Changes) error // Apply non-empty fields; missing id is a no-op
	Delete(ctx context.Context, id int64) error                         // Delete user by ID; missing id is a no-op
	List(ctx context.Context) ([]domain.User, error)                    // List all users
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) (bool, error)
}

// Usecase implements the business logic for user management operations.
// It provides a clean separation between the transport layer and data layer.
type Usecase struct {
	repo     Repository          // Repository for data access
	hasher   PasswordHasher      // Credential hasher
	log      *zap.Logger         // Logger for structured logging
	validate *validator.Validate // Validator for request validation
}

// New creates a new instance of Usecase.
func New(r Repository, h PasswordHasher, log *zap.Logger) *Usecase {
	return &Usecase{repo: r, hasher: h, log: log, validate: validator.New()}
}

// formatValidationError converts validator.ValidationErrors into a *errors.ValidationError.
func formatValidationError(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var fields, messages []string
		for _, e := range validationErrors {
			fields = append(fields, e.Field())
			switch e.Tag() {
			case "required":
				messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
			default:
				messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
			}
		}
		return apperrors.NewValidationError(strings.Join(fields, ","), strings.Join(messages, ", "))
	}
	return err
}

// ListUsers returns every user without password hashes.
func (uc *Usecase) ListUsers(ctx context.Context) (*ListUsersResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Debug("listing users")

	domainUsers, err := uc.repo.List(ctx)
	if err != nil {
		log.Error("failed to list users", zap.Error(err))
		return nil, err
	}

	users := make([]User, len(domainUsers))
	for i, du := range domainUsers {
		users[i] = toPublic(du)
	}

	return &ListUsersResponse{Users: users}, nil
}

// GetUser retrieves a single user by ID.
func (uc *Usecase) GetUser(ctx context.Context, in GetUserRequest) (*GetUserResponse, error) {
	log := logger.WithContext(ctx, uc.log)

	u, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		var notFound *apperrors.NotFoundError
		if errors.As(err, &notFound) {
			log.Debug("user not found", zap.Int64("id", in.ID))
		} else {
			log.Error("failed to get user", zap.Int64("id", in.ID), zap.Error(err))
		}
		return nil, err
	}

	return &GetUserResponse{User: toPublic(*u)}, nil
}

// RegisterUser validates the request, hashes the password and stores the new user.
// Nothing is written when validation or hashing fails.
func (uc *Usecase) RegisterUser(ctx context.Context, in RegisterUserRequest) (*RegisterUserResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("registering user", zap.String("name", in.Name), zap.String("email", in.Email))

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	digest, err := uc.hasher.Hash(in.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, apperrors.NewInternalError("hash password", err)
	}

	id, err := uc.repo.Create(ctx, &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: digest,
	})
	if err != nil {
		log.Error("failed to create user", zap.Error(err))
		return nil, err
	}

	return &RegisterUserResponse{ID: id}, nil
}

// Login checks the submitted credentials and returns the matching identity.
// Unknown email and wrong password are indistinguishable to the caller.
func (uc *Usecase) Login(ctx context.Context, in LoginRequest) (*LoginResponse, error) {
	log := logger.WithContext(ctx, uc.log)

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	u, err := uc.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		log.Error("failed to look up user by email", zap.String("email", in.Email), zap.Error(err))
		return nil, err
	}
	if u == nil {
		log.Info("login rejected", zap.String("email", in.Email), zap.String("reason", "unknown email"))
		return nil, apperrors.NewUnauthorizedError("invalid credentials")
	}

	ok, err := uc.hasher.Verify(in.Password, u.PasswordHash)
	if err != nil {
		log.Error("stored password digest is unusable", zap.Int64("id", u.ID), zap.Error(err))
		return nil, apperrors.NewInternalError("verify password", err)
	}
	if !ok {
		log.Info("login rejected", zap.Int64("id", u.ID), zap.String("reason", "password mismatch"))
		return nil, apperrors.NewUnauthorizedError("invalid credentials")
	}

	log.Info("login succeeded", zap.Int64("id", u.ID))
	return &LoginResponse{User: toPublic(*u)}, nil
}

// UpdateUser applies the supplied fields. The password is re-hashed only when present.
// Updating an id that does not exist succeeds without effect.
func (uc *Usecase) UpdateUser(ctx context.Context, in UpdateUserRequest) error {
	log := logger.WithContext(ctx, uc.log)
	log.Info("updating user", zap.Int64("id", in.ID), zap.String("name", in.Name), zap.String("email", in.Email))

	changes := domain.Changes{
		Name:  in.Name,
		Email: in.Email,
	}

	if in.Password != "" {
		digest, err := uc.hasher.Hash(in.Password)
		if err != nil {
			log.Error("failed to hash password", zap.Int64("id", in.ID), zap.Error(err))
			return apperrors.NewInternalError("hash password", err)
		}
		changes.PasswordHash = digest
	}

	if err := uc.repo.Update(ctx, in.ID, changes); err != nil {
		log.Error("failed to update user", zap.Int64("id", in.ID), zap.Error(err))
		return err
	}
	return nil
}

// DeleteUser removes a user. Deleting an id that does not exist succeeds without effect.
func (uc *Usecase) DeleteUser(ctx context.Context, in DeleteUserRequest) error {
	log := logger.WithContext(ctx, uc.log)
	log.Info("deleting user", zap.Int64("id", in.ID))

	if err := uc.repo.Delete(ctx, in.ID); err != nil {
		log.Error("failed to delete user", zap.Int64("id", in.ID), zap.Error(err))
		return err
	}
	return nil
}

func toPublic(u domain.User) User {
	return User{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}
