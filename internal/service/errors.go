package service

import "errors"

var (
	ErrAccessDenied       = errors.New("access denied")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrEmailTaken         = errors.New("email already registered")
	ErrDuplicateStudent   = errors.New("a student with the same name already exists")
	ErrNameRequired       = errors.New("name is required")
)
