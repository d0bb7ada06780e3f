package model

// ConcessionItem is a food or drink add-on offered on the concessions step.
// Price is in whole currency units.
type ConcessionItem struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// FoodItem is a concession line of a booking: only items with a positive
// quantity become food items.
type FoodItem struct {
	ItemID    string `json:"food_id"`
	ItemName  string `json:"food_name"`
	UnitPrice int64  `json:"food_price"`
	Quantity  int    `json:"quantity"`
}

// Totals is the price breakdown of a draft.
type Totals struct {
	TicketTotal      int64 `json:"ticket_total"`
	ConcessionsTotal int64 `json:"concessions_total"`
	Total            int64 `json:"total"`
}
