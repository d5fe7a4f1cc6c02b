package menu

import "errors"

var (
	ErrMenuItemNotFound = errors.New("menu item not found")

	// ErrMenuItemInUse is returned when a delete is rejected because order
	// items still reference the row.
	ErrMenuItemInUse = errors.New("menu item is referenced by existing orders")

	// -- Constants (External Systems) --
	PgFKViolation = "23503"
)
