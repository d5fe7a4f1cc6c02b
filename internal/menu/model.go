package menu

import "time"

type MenuItem struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MenuItemInput carries the client-settable fields. IsAvailable is a pointer
// so an absent flag defaults to available.
type MenuItemInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	IsAvailable *bool   `json:"is_available"`
}

func (in *MenuItemInput) Available() bool {
	if in.IsAvailable == nil {
		return true
	}
	return *in.IsAvailable
}
