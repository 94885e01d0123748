package models

import "errors"

// Sentinel errors classifying every failure the domain operations can
// produce. Handlers map these onto HTTP statuses; anything else is treated
// as an internal error.
var (
	// ErrUnauthenticated means no actor identity was supplied with the request.
	ErrUnauthenticated = errors.New("user not authenticated")

	// ErrMissingField means a required input field was empty or absent.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidRole means a role value outside {admin, member} was supplied.
	ErrInvalidRole = errors.New("invalid role")

	// ErrForbidden means the actor lacks the role an operation requires.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the entity doesn't exist or isn't owned by the actor.
	ErrNotFound = errors.New("not found")

	// ErrUpstream means a call to the identity provider failed.
	ErrUpstream = errors.New("identity provider request failed")
)
