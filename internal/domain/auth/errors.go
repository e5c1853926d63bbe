package auth

import (
	"errors"

	apperrors "github.com/yanqian/lifeboard/pkg/errors"
)

// ErrEmailExists indicates a duplicate email address.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned by repositories when an update targets a missing row.
var ErrUserNotFound = errors.New("user not found")

const invalidCredentialsMessage = "Invalid email or password"

func errInvalidCredentials() error {
	return apperrors.Wrap(apperrors.CodeInvalidCredentials, invalidCredentialsMessage, nil)
}

func errInternal(message string, err error) error {
	return apperrors.Wrap(apperrors.CodeInternal, message, err)
}
