// Package auth registers and authenticates users and decides who may mutate what.
package auth

import (
	"errors"
	"exam_system/internal/domain"
	"exam_system/internal/repository"
	"exam_system/internal/utils"

	"gorm.io/gorm"
)

// ErrRoleNotAllowed is returned when an actor assigns a role it may not grant
var ErrRoleNotAllowed = errors.New("role not allowed")

// Credentials is what a caller submits to register or to replace a user
type Credentials struct {
	Username string
	Email    string
	Password string
	Name     string
	Surname  string
	Role     string
}

// Register hashes the password and stores a new user. Self-registration cannot claim the admin role.
func Register(tx *gorm.DB, in Credentials) (*domain.User, error) {
	if !CanAssignRole("", in.Role) { // Anonymous caller
		return nil, ErrRoleNotAllowed
	}
	user, err := toUser(in)
	if err != nil {
		return nil, err
	}
	return repository.CreateUser(tx, user)
}

// ReplaceUser performs a full update of a user on behalf of actorRole. It returns nil when the user is absent.
func ReplaceUser(tx *gorm.DB, actorRole string, id uint, in Credentials) (*domain.User, error) {
	if !CanAssignRole(actorRole, in.Role) {
		return nil, ErrRoleNotAllowed
	}
	user, err := toUser(in)
	if err != nil {
		return nil, err
	}
	return repository.UpdateUser(tx, id, user)
}

// Authenticate returns the user when the password matches, and nil for an unknown user or a wrong password
func Authenticate(tx *gorm.DB, username, password string) (*domain.User, error) {
	user, err := repository.GetUserByUsername(tx, username)
	if err != nil || user == nil {
		return nil, err
	}
	if !utils.CheckPassword(user.HashedPassword, password) {
		return nil, nil // Same outcome as an unknown user
	}
	return user, nil
}

// ClaimsFor builds the token claims identifying user
func ClaimsFor(user *domain.User) utils.Claims {
	return utils.Claims{UserID: user.ID, Username: user.Username, Role: user.Role}
}

func toUser(in Credentials) (domain.User, error) {
	if in.Password == "" {
		return domain.User{}, &repository.ValidationError{Field: "password", Reason: "must not be empty"}
	}
	hash, err := utils.HashPassword(in.Password) // Plain passwords are never stored
	if err != nil {
		return domain.User{}, err
	}
	return domain.User{
		Username:       in.Username,
		Email:          in.Email,
		HashedPassword: hash,
		Name:           in.Name,
		Surname:        in.Surname,
		Role:           in.Role,
	}, nil
}
