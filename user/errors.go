package user

import (
	"net/http"

	"github.com/coachhub/backend/srvcerror"
)

const ErrCodeUsernameAlreadyExists = "username_exists"

func newErrUsernameExists() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeUsernameAlreadyExists,
		"username already exists",
	).SetHttpStatusCode(http.StatusConflict)
}

const ErrCodeEmailAlreadyExists = "email_exists"

func newErrEmailExists() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeEmailAlreadyExists,
		"email already exists",
	).SetHttpStatusCode(http.StatusConflict)
}

const ErrCodeUsernameOrPasswordIncorrect = "username_or_password_incorrect"

func newErrUsernameOrPasswordIncorrect() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeUsernameOrPasswordIncorrect,
		"username or password is incorrect",
	).SetHttpStatusCode(http.StatusUnauthorized)
}

const ErrCodeRoleNotAllowed = "role_not_allowed"

func newErrRoleNotAllowed() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeRoleNotAllowed,
		"only athlete and coach accounts can be registered",
	).SetHttpStatusCode(http.StatusBadRequest)
}

func newErrUserNotFound() *srvcerror.Error {
	return srvcerror.ErrNotFound("user not found")
}

func newErrInternalSE() *srvcerror.Error {
	return srvcerror.ErrInternalSE()
}
