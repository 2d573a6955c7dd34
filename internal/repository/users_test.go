package repository

import (
	"exam_system/internal/domain"
	"exam_system/internal/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(username, email string) domain.User {
	return domain.User{Username: username, Email: email, HashedPassword: "hash", Name: "Ada", Surname: "Lovelace"}
}

func TestCreateUser(t *testing.T) {
	gdb := testutil.SetupTestDB(t)

	user, err := CreateUser(gdb, newUser("  Ada ", "ada@example.com"))
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "ada", user.Username)
	assert.Equal(t, domain.RoleUser, user.Role)

	found, err := GetUserByUsername(gdb, "ADA")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)
}

func TestCreateUserDuplicate(t *testing.T) {
	gdb := testutil.SetupTestDB(t)

	_, err := CreateUser(gdb, newUser("ada", "ada@example.com"))
	require.NoError(t, err)

	_, err = CreateUser(gdb, newUser("ada", "other@example.com"))
	assert.ErrorIs(t, err, ErrDuplicateUser)

	_, err = CreateUser(gdb, newUser("grace", "ada@example.com"))
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func TestCreateUserValidation(t *testing.T) {
	gdb := testutil.SetupTestDB(t)

	_, err := CreateUser(gdb, newUser(" ", "x@example.com"))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "username", verr.Field)
}

func TestGetUserAbsent(t *testing.T) {
	gdb := testutil.SetupTestDB(t)

	user, err := GetUserByID(gdb, 42)
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestUpdateUser(t *testing.T) {
	gdb := testutil.SetupTestDB(t)
	ada, err := CreateUser(gdb, newUser("ada", "ada@example.com"))
	require.NoError(t, err)
	_, err = CreateUser(gdb, newUser("grace", "grace@example.com"))
	require.NoError(t, err)

	in := newUser("countess", "countess@example.com")
	in.Role = domain.RoleTeacher
	updated, err := UpdateUser(gdb, ada.ID, in)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "countess", updated.Username)
	assert.Equal(t, domain.RoleTeacher, updated.Role)

	_, err = UpdateUser(gdb, ada.ID, newUser("grace", "new@example.com"))
	assert.ErrorIs(t, err, ErrDuplicateUser)

	missing, err := UpdateUser(gdb, 999, newUser("nobody", "nobody@example.com"))
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDeleteUserCascades(t *testing.T) {
	gdb := testutil.SetupTestDB(t)
	owner := testutil.CreateUser(t, gdb, "owner", domain.RoleTeacher, "password123")
	other := testutil.CreateUser(t, gdb, "other", domain.RoleTeacher, "password123")
	exam := testutil.CreateExam(t, gdb, owner.ID, "Mine", 2, 3)
	kept := testutil.CreateExam(t, gdb, other.ID, "Theirs", 1, 2)

	examIDs, ok, err := DeleteUser(gdb, owner.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []uint{exam.ID}, examIDs)

	assert.Zero(t, testutil.Count(t, gdb, &domain.User{}, "id = ?", owner.ID))
	assert.Zero(t, testutil.Count(t, gdb, &domain.Exam{}, "owner_id = ?", owner.ID))
	assert.Zero(t, testutil.Count(t, gdb, &domain.Question{}, "exam_id = ?", exam.ID))
	assert.Equal(t, int64(2), testutil.Count(t, gdb, &domain.Choice{}))
	assert.Equal(t, int64(1), testutil.Count(t, gdb, &domain.Question{}, "exam_id = ?", kept.ID))

	_, ok, err = DeleteUser(gdb, owner.ID)
	assert.NoError(t, err)
	assert.False(t, ok)
}
