package database

import "errors"

// ErrDatabaseNotFound is returned by Open when the database file is
// missing and creation was not requested.
var ErrDatabaseNotFound = errors.New("history database not found")
