// Package repository defines the error taxonomy shared by every store
// implementation and the Store/Tx contracts the services run on.  These
// sentinel values allow higher layers such as handlers to distinguish
// between failure scenarios.  For example, ErrConflict signals that an
// active order already occupies a table, while ErrInvalidState indicates
// that the requested transition does not exist from the order's current
// status.
package repository

import "errors"

// ErrNotFound is returned for an unknown order, menu item, table or
// employee.  Handlers translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write would violate a uniqueness rule,
// such as opening a second active order on a table or reusing an
// employee name.  Handlers translate it into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrInvalidState is returned when an operation is not valid for the
// order's current status, e.g. adding a line to a confirmed order or
// paying an order twice.
var ErrInvalidState = errors.New("invalid state")

// ErrInvalidAmount is returned when a payment does not match the total
// recomputed from the order's lines, or a refund exceeds what was paid.
var ErrInvalidAmount = errors.New("invalid amount")
