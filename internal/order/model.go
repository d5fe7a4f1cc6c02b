package order

import "time"

type Order struct {
	ID          int         `json:"id"`
	TableNumber int         `json:"table_number"`
	Status      OrderStatus `json:"status"`
	TotalAmount float64     `json:"total_amount"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Items       []OrderItem `json:"items"`
}

// OrderItem carries the menu price captured at order time, not a live
// reference, so historical orders stay accurate after menu edits.
type OrderItem struct {
	ID         int     `json:"id"`
	MenuItemID int     `json:"menu_item_id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
}

type ItemInput struct {
	MenuItemID int `json:"menu_item_id"`
	Quantity   int `json:"quantity"`
}

type CreateOrderInput struct {
	TableNumber int         `json:"table_number"`
	Items       []ItemInput `json:"items"`
}

// UpdateOrderInput replaces the whole order: header fields plus the full
// item set. There is no incremental patch.
type UpdateOrderInput struct {
	TableNumber int         `json:"table_number"`
	Status      string      `json:"status"`
	Items       []ItemInput `json:"items"`
}
