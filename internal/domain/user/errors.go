package user

import (
	appErrors "warehouse-manager/pkg/errors"
)

// Aliases so repositories and handlers agree on one sentinel per failure.
var (
	ErrUserNotFound      = appErrors.ErrUserNotFound
	ErrUserAlreadyExists = appErrors.ErrUserAlreadyExists
)
