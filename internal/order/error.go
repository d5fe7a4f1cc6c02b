package order

import "errors"

var (
	ErrOrderNotFound = errors.New("order not found")

	// ErrMenuItemUnknown is returned when an order line references a menu
	// item id that does not exist.
	ErrMenuItemUnknown = errors.New("order references unknown menu item")
)
