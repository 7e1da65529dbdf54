package model

import "errors"

// ErrNotFound is returned when an operation by id (Complete) finds no
// matching row in the active table.
var ErrNotFound = errors.New("event not found")

// ErrUnavailable wraps a storage-layer failure. Callers never retry it
// internally; for a worker it ends the current batch (the lease will
// expire and the row becomes claimable again), for the ingress adapter it
// means the mention is not acknowledged so the platform redelivers it.
var ErrUnavailable = errors.New("store unavailable")
