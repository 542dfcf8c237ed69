package session

import "errors"

var (
	ErrRoleMissing      = errors.New("account has no role assigned")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidRole      = errors.New("invalid role")
)
