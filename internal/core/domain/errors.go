package domain

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserExists         = errors.New("username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("admin access required")
	ErrSweetNotFound      = errors.New("sweet not found")
	ErrSweetExists        = errors.New("sweet with this name already exists")
	ErrInsufficientStock  = errors.New("insufficient quantity in stock")
)
