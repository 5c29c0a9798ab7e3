package inventory

// CreateItemRequest is the inventory create payload.
type CreateItemRequest struct {
	Name              string  `json:"name" validate:"required,max=255"`
	Description       string  `json:"description"`
	Category          string  `json:"category" validate:"required,max=100"`
	Location          string  `json:"location"`
	ImageURL          string  `json:"image_url"`
	Consumable        bool    `json:"consumable"`
	QuantityAvailable *int    `json:"quantity_available" validate:"required,gte=0"`
	QuantityTotal     *int    `json:"quantity_total" validate:"required,gte=0"`
	LastUsedDate      *string `json:"last_used_date"`
}

// UpdateItemRequest is the inventory partial-update payload.
type UpdateItemRequest struct {
	Name              *string `json:"name" validate:"omitempty,max=255"`
	Description       *string `json:"description"`
	Category          *string `json:"category" validate:"omitempty,max=100"`
	Location          *string `json:"location"`
	ImageURL          *string `json:"image_url"`
	Consumable        *bool   `json:"consumable"`
	QuantityAvailable *int    `json:"quantity_available" validate:"omitempty,gte=0"`
	QuantityTotal     *int    `json:"quantity_total" validate:"omitempty,gte=0"`
}
