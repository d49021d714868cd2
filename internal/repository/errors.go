// Package repository is the data access layer.  DataAccess presents one
// set of entity operations; PostgresRepo and RedisRepo implement it over
// the relational and key-value backends.
//
// The sentinel errors below are the only errors this layer invents.
// Anything else (connectivity failures, Postgres constraint violations as
// *pgconn.PgError) is passed through untouched for callers to interpret.
package repository

import "errors"

// ErrForbidden is returned by access checks when the caller is not a
// member of the association, or not senior enough.  Handlers should
// translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned by the key-value backend when a write would
// break a uniqueness rule the relational schema enforces with a UNIQUE
// constraint (duplicate email, duplicate membership).
var ErrConflict = errors.New("conflict")

// ErrUnsupported is returned when an operation exists only on one backend,
// such as raw SQL against the key-value store.
var ErrUnsupported = errors.New("operation not supported by this backend")

// ErrInvalid wraps input validation failures.
var ErrInvalid = errors.New("invalid input")
