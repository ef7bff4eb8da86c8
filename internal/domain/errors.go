// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrUnavailable indicates the store could not be reached within the retry
// budget, or the statement failed after a connection was obtained.
var ErrUnavailable = errors.New("store unavailable")
