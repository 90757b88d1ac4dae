package auth

import "errors"

var (
	// ErrInvalidToken is returned when the bearer token fails validation.
	ErrInvalidToken = errors.New("invalid token")
	// ErrNoAccount is returned when no account address can be resolved
	// for the request.
	ErrNoAccount = errors.New("no account address for request")
	// ErrAccountNotInToken is returned when the requested account is not
	// one of the wallets in the token.
	ErrAccountNotInToken = errors.New("account not associated with token")
	// ErrNoKeySource is returned when neither a JWKS endpoint nor a shared
	// secret is configured.
	ErrNoKeySource = errors.New("no JWT key source configured")
)
