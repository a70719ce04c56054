package validation_test

import (
	"testing"

	"github.com/coachhub/backend/srvcerror"
	"github.com/coachhub/backend/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email string `json:"email" validate:"required,email"`
	Title string `json:"title" validate:"max=5"`
}

func TestStruct(t *testing.T) {
	require.NoError(t, validation.Struct(sample{Email: "a@b.lv", Title: "ok"}))

	err := validation.Struct(sample{Title: "ok"})
	require.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeInvalidRequest))
	assert.Equal(t, "email is required", err.Error())

	err = validation.Struct(sample{Email: "a@b.lv", Title: "too long"})
	assert.Equal(t, "title must be at most 5 characters", err.Error())
}
