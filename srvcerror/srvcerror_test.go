package srvcerror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/coachhub/backend/srvcerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCodeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("claiming: %w", srvcerror.ErrForbidden("not yours"))
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeForbidden))
	assert.False(t, srvcerror.HasCode(err, srvcerror.ErrCodeNotFound))
	assert.Equal(t, srvcerror.ErrCodeForbidden, srvcerror.Code(err))
	assert.Equal(t, "", srvcerror.Code(errors.New("plain")))
}

func TestDefaultStatusIsInternal(t *testing.T) {
	e := srvcerror.New("x", "y")
	assert.Equal(t, http.StatusInternalServerError, e.HttpStatusCode())
	assert.Equal(t, http.StatusUnauthorized, srvcerror.ErrUnauthenticated().HttpStatusCode())
}

func TestDebugCauseIsUnwrapped(t *testing.T) {
	cause := errors.New("db down")
	err := srvcerror.ErrInternalSE().SetDebug(cause)
	require.ErrorIs(t, err, cause)
	assert.Equal(t, "internal server error", err.Error())
}
