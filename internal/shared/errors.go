package shared

import "errors"

// ErrInvalidCredentials is the single error every login failure collapses to.
var ErrInvalidCredentials = errors.New("invalid credentials")
