package order

import (
	"fmt"
	"strings"

	"resto-pos/internal/validation"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// transition defines a valid lifecycle change.
type transition struct {
	From OrderStatus
	To   OrderStatus
}

// validTransitions is the authoritative lifecycle definition: the happy path
// is linear, cancellation is only possible before the food is ready, and
// delivered/cancelled are terminal.
var validTransitions = []transition{
	{From: StatusPending, To: StatusPreparing},
	{From: StatusPending, To: StatusCancelled},
	{From: StatusPreparing, To: StatusReady},
	{From: StatusPreparing, To: StatusCancelled},
	{From: StatusReady, To: StatusDelivered},
}

var transitionSet = func() map[transition]bool {
	m := make(map[transition]bool)
	for _, t := range validTransitions {
		m[t] = true
	}
	return m
}()

// StatusError reports an illegal lifecycle transition.
type StatusError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *StatusError) Error() string {
	nexts := NextStatuses(e.From)
	if len(nexts) == 0 {
		return fmt.Sprintf("invalid status transition: %s is a terminal status", e.From)
	}
	labels := make([]string, 0, len(nexts))
	for _, s := range nexts {
		labels = append(labels, string(s))
	}
	return fmt.Sprintf("invalid status transition: %s cannot move to %s (valid: %s)",
		e.From, e.To, strings.Join(labels, ", "))
}

// ParseStatus validates a status label from the wire.
func ParseStatus(raw string) (OrderStatus, error) {
	switch OrderStatus(raw) {
	case StatusPending, StatusPreparing, StatusReady, StatusDelivered, StatusCancelled:
		return OrderStatus(raw), nil
	default:
		return "", validation.ValidationError{
			Field:   "status",
			Message: "status must be one of: pending, preparing, ready, delivered, cancelled",
		}
	}
}

// CanTransition checks whether an order may move between two statuses.
// Re-submitting the current status is a no-op and always allowed, since the
// full-order update sends the status back unchanged.
func CanTransition(from, to OrderStatus) error {
	if from == to {
		return nil
	}
	if transitionSet[transition{From: from, To: to}] {
		return nil
	}
	return &StatusError{From: from, To: to}
}

// NextStatuses returns all valid next statuses from a given one.
func NextStatuses(from OrderStatus) []OrderStatus {
	var nexts []OrderStatus
	for _, t := range validTransitions {
		if t.From == from {
			nexts = append(nexts, t.To)
		}
	}
	return nexts
}
