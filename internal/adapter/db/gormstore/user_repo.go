package gormstore

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-api-service/internal/domain/user"
	apperrors "user-api-service/pkg/errors"
)

// UserRepo implements the user Repository interface on top of GORM.
// It works with any GORM dialector (PostgreSQL in production, SQLite for
// embedded deployments and tests).
type UserRepo struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepo creates a new instance of UserRepo.
func NewUserRepo(db *gorm.DB, log *zap.Logger) *UserRepo {
	return &UserRepo{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`      // Store-assigned identifier
	Name         string `gorm:"not null"`                      // Display name
	Email        string `gorm:"not null;uniqueIndex"`          // Login identifier, unique
	PasswordHash string `gorm:"column:password_hash;not null"` // bcrypt digest
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// EnsureSchema creates the users table when it does not exist yet.
func EnsureSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(&UserSchema{}); err != nil {
		return apperrors.NewStoreError("ensure schema", err)
	}
	return nil
}

// Create inserts a new user and returns the assigned id.
func (r *UserRepo) Create(ctx context.Context, u *user.User) (int64, error) {
	if u == nil {
		return 0, errors.New("user cannot be nil")
	}

	model := UserSchema{
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return 0, apperrors.NewStoreError("create user", err)
	}

	r.log.Info("user created in db", zap.Int64("id", model.ID))
	return model.ID, nil
}

// Update applies the non-empty fields of changes to the user with the given id.
// An id that matches no row is not an error.
func (r *UserRepo) Update(ctx context.Context, id int64, changes user.Changes) error {
	if changes.IsEmpty() {
		r.log.Debug("nothing to update", zap.Int64("id", id))
		return nil
	}

	columns := make(map[string]any, 3)
	if changes.Name != "" {
		columns["name"] = changes.Name
	}
	if changes.Email != "" {
		columns["email"] = changes.Email
	}
	if changes.PasswordHash != "" {
		columns["password_hash"] = changes.PasswordHash
	}

	result := r.db.WithContext(ctx).Model(&UserSchema{}).Where("id = ?", id).Updates(columns)
	if result.Error != nil {
		r.log.Error("failed to update user in db", zap.Error(result.Error), zap.Int64("id", id))
		return apperrors.NewStoreError("update user", result.Error)
	}

	r.log.Info("user updated in db", zap.Int64("id", id), zap.Int64("rows", result.RowsAffected))
	return nil
}

// Delete removes a user by id. An id that matches no row is not an error.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&UserSchema{}, id)
	if result.Error != nil {
		r.log.Error("failed to delete user in db", zap.Error(result.Error), zap.Int64("id", id))
		return apperrors.NewStoreError("delete user", result.Error)
	}

	r.log.Info("user deleted in db", zap.Int64("id", id), zap.Int64("rows", result.RowsAffected))
	return nil
}

// GetByID retrieves a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found", zap.Int64("id", id))
			return nil, apperrors.NewNotFoundError("user", "user not found")
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, apperrors.NewStoreError("get user", err)
	}

	return toDomain(model), nil
}

// GetByEmail retrieves a user by email. It returns nil, nil when no user matches.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found by email", zap.String("email", email))
			return nil, nil
		}
		r.log.Error("failed to get user by email from db", zap.Error(err), zap.String("email", email))
		return nil, apperrors.NewStoreError("get user by email", err)
	}

	return toDomain(model), nil
}

// List returns every user ordered by id. Password hashes are not loaded.
func (r *UserRepo) List(ctx context.Context) ([]user.User, error) {
	var models []UserSchema
	if err := r.db.WithContext(ctx).Select("id", "name", "email").Order("id").Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err))
		return nil, apperrors.NewStoreError("list users", err)
	}

	users := make([]user.User, len(models))
	for i, model := range models {
		users[i] = *toDomain(model)
	}
	return users, nil
}

func toDomain(model UserSchema) *user.User {
	return &user.User{
		ID:           model.ID,
		Name:         model.Name,
		Email:        model.Email,
		PasswordHash: model.PasswordHash,
	}
}
