// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// booking service and handlers to distinguish between different failure
// scenarios without inspecting driver-specific errors. For example,
// ErrEventNotFound maps to an HTTP 404, while ErrVersionConflict signals
// that a conditional update lost a race and the caller's view of the
// event record is stale.
package repository

import "errors"

// ErrEventNotFound indicates that an event was not located in the store.
var ErrEventNotFound = errors.New("event not found")

// ErrVersionConflict is returned by conditional updates when the stored
// event version no longer matches the expected one, meaning another
// writer committed first. Callers must not retry blindly: the decision
// that motivated the write may no longer hold.
var ErrVersionConflict = errors.New("version conflict")

// ErrEmailExists is returned when creating a staff account with an email
// address that is already registered.
var ErrEmailExists = errors.New("email already exists")

// ErrBanNotFound indicates that a ban record was not located in the store.
var ErrBanNotFound = errors.New("ban not found")

// ErrConflict is returned when an update cannot be performed because of
// conflicting state. Handlers should translate this into an HTTP 409
// response.
var ErrConflict = errors.New("conflict")
