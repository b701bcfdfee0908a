package repo

import "errors"

// ErrNotFound is returned when a lookup or a guarded update matches no row.
// Callers translate it into their own taxonomy; the repos never distinguish
// "never existed" from "already consumed".
var ErrNotFound = errors.New("record not found")
