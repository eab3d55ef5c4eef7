package domain

import "errors"

// Authentication and authorization.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("access forbidden")
)

// Token verification failures. All of them collapse to ErrUnauthenticated at
// the HTTP boundary.
var (
	ErrTokenMalformed        = errors.New("token is malformed")
	ErrTokenExpired          = errors.New("token is expired")
	ErrTokenInvalidSignature = errors.New("token signature is invalid")
)

// Users.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
	ErrInvalidRole  = errors.New(`role must be either "admin" or "user"`)
)

// Products.
var ErrProductNotFound = errors.New("product not found")
