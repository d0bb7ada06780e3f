package booking

import (
	"github.com/iliyamo/cinema-booking-wizard/internal/backend"
	"github.com/iliyamo/cinema-booking-wizard/internal/model"
)

// BuildFoodItems lists the concessions with a positive quantity in menu
// order.  Zero quantity items are left out.
func BuildFoodItems(concessions map[string]int, menu []model.ConcessionItem) []model.FoodItem {
	items := make([]model.FoodItem, 0, len(menu))
	for _, it := range menu {
		qty := concessions[it.Key]
		if qty <= 0 {
			continue
		}
		items = append(items, model.FoodItem{
			ItemID:    it.Key,
			ItemName:  it.Name,
			UnitPrice: it.Price,
			Quantity:  qty,
		})
	}
	return items
}

func foodLines(items []model.FoodItem) []backend.FoodLine {
	lines := make([]backend.FoodLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, backend.FoodLine{
			FoodID:    it.ItemID,
			FoodName:  it.ItemName,
			FoodPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		})
	}
	return lines
}
