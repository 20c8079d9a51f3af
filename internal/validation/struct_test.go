package validation

import (
	"errors"
	"testing"

	"devhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupInput struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,password"`
	Website  string `json:"website" validate:"omitempty,url"`
}

type resolveInput struct {
	Status models.ModerationStatus `json:"status" validate:"required,status"`
	Type   models.ContentKind      `json:"type" validate:"omitempty,kind"`
}

func TestStruct_Valid(t *testing.T) {
	t.Parallel()
	err := Struct(signupInput{
		Username: "ada_lovelace",
		Email:    "ada@example.com",
		Password: "SecurePass12!@",
	})
	assert.NoError(t, err)

	assert.NoError(t, Struct(resolveInput{Status: models.StatusApproved, Type: models.KindGame}))
}

func TestStruct_EnumeratesFields(t *testing.T) {
	t.Parallel()
	err := Struct(signupInput{
		Username: "-x",
		Email:    "not-an-email",
		Password: "short",
		Website:  "nope",
	})
	require.Error(t, err)

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeValidation, appErr.Code)
	assert.Equal(t, 400, appErr.Status())

	byField := map[string]string{}
	for _, f := range appErr.Fields {
		byField[f.Field] = f.Message
	}
	assert.Len(t, byField, 4)
	assert.Equal(t, ErrUsernameLength.Error(), byField["username"])
	assert.Equal(t, "must be a valid email address", byField["email"])
	assert.Equal(t, "password must be at least 12 characters long", byField["password"])
	assert.Equal(t, "must be a valid URL", byField["website"])
}

func TestStruct_RequiredAndEnums(t *testing.T) {
	t.Parallel()
	err := Struct(resolveInput{Status: "archived", Type: "video"})

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	require.Len(t, appErr.Fields, 2)
	assert.Equal(t, "status", appErr.Fields[0].Field)
	assert.Equal(t, "must be one of [pending approved rejected]", appErr.Fields[0].Message)
	assert.Equal(t, "type", appErr.Fields[1].Field)

	err = Struct(resolveInput{})
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "is required", appErr.Fields[0].Message)
}
