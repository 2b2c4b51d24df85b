package database

import "errors"

// ErrNotFound is returned by repositories when the addressed document or
// embedded item does not exist.
var ErrNotFound = errors.New("not found")
