package repository

import (
	"errors"
	"exam_system/internal/domain"
	"strings"

	"gorm.io/gorm"
)

// CreateUser stores a user whose password has already been hashed
func CreateUser(tx *gorm.DB, user domain.User) (*domain.User, error) {
	if err := validateUser(&user); err != nil {
		return nil, err
	}
	taken, err := identityTaken(tx, user.Username, user.Email, 0) // Friendly error before the unique index fires
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateUser
	}
	user.ID = 0 // Always insert
	if err := tx.Create(&user).Error; err != nil {
		return nil, translateUserError(err) // Lost a race on the unique index
	}
	return &user, nil
}

// GetUserByID returns the user or nil when absent
func GetUserByID(tx *gorm.DB, id uint) (*domain.User, error) {
	var user domain.User
	return first(tx.Where("id = ?", id), &user)
}

// GetUserByUsername returns the user or nil when absent. Usernames are matched lower-case.
func GetUserByUsername(tx *gorm.DB, username string) (*domain.User, error) {
	var user domain.User
	return first(tx.Where("username = ?", NormalizeUsername(username)), &user)
}

// ListUsers returns every user ordered by id
func ListUsers(tx *gorm.DB) ([]domain.User, error) {
	users := []domain.User{}
	if err := tx.Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser replaces every mutable field of the user. It returns nil when the user does not exist.
func UpdateUser(tx *gorm.DB, id uint, in domain.User) (*domain.User, error) {
	if err := validateUser(&in); err != nil {
		return nil, err
	}
	user, err := GetUserByID(tx, id)
	if err != nil || user == nil {
		return nil, err
	}
	taken, err := identityTaken(tx, in.Username, in.Email, id) // Keeping its own name is fine
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateUser
	}
	user.Username = in.Username
	user.Email = in.Email
	user.HashedPassword = in.HashedPassword
	user.Name = in.Name
	user.Surname = in.Surname
	user.Role = in.Role
	if err := tx.Save(user).Error; err != nil {
		return nil, translateUserError(err)
	}
	return user, nil
}

// DeleteUser removes the user together with its exams, their questions and choices.
// It returns the removed exam ids, and false when the user does not exist.
func DeleteUser(tx *gorm.DB, id uint) ([]uint, bool, error) {
	user, err := GetUserByID(tx, id)
	if err != nil || user == nil {
		return nil, false, err
	}
	plan, err := PlanUserCascade(tx, id) // Owned exams, their questions and choices
	if err != nil {
		return nil, false, err
	}
	if err := plan.Execute(tx); err != nil {
		return nil, false, err
	}
	return plan.ExamIDs, true, nil
}

// NormalizeUsername is the stored form of a username
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func validateUser(user *domain.User) error {
	user.Username = NormalizeUsername(user.Username)
	user.Email = strings.TrimSpace(user.Email)
	if err := required("username", user.Username); err != nil {
		return err
	}
	if err := required("email", user.Email); err != nil {
		return err
	}
	if user.HashedPassword == "" {
		return &ValidationError{Field: "password", Reason: "must not be empty"}
	}
	if user.Role == "" {
		user.Role = domain.RoleUser // Default role
	}
	return nil
}

// identityTaken reports whether another user than exceptID holds the username or email
func identityTaken(tx *gorm.DB, username, email string, exceptID uint) (bool, error) {
	var n int64
	err := tx.Model(&domain.User{}).
		Where("(username = ? OR email = ?) AND id <> ?", username, email, exceptID).
		Count(&n).Error
	return n > 0, err
}

func translateUserError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateUser
	}
	return err
}

// first runs q.First into dest, mapping gorm.ErrRecordNotFound to a nil result
func first[T any](q *gorm.DB, dest *T) (*T, error) {
	err := q.First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return dest, nil
}
