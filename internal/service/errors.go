package service

import "errors"

// Domain sentinels. Services wrap these with context via fmt.Errorf("%w: ...")
// and handlers translate them to HTTP status codes with errors.Is, so the
// transport layer never string-matches error text.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidState       = errors.New("job already resolved")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrOutOfStock         = errors.New("reward out of stock")
	ErrValidation         = errors.New("invalid input")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
