package repository

import "errors"

// ErrNotFound is returned when no stored message has the requested id.
var ErrNotFound = errors.New("message not found")
