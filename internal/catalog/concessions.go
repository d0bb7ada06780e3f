package catalog

import "github.com/iliyamo/cinema-booking-wizard/internal/model"

// Concession keys.
const (
	Popcorn = "popcorn"
	Pepsi   = "pepsi"
	Combo1  = "combo1"
	Combo2  = "combo2"
)

var menu = []model.ConcessionItem{
	{Key: Popcorn, Name: "Popcorn", Price: 70000},
	{Key: Pepsi, Name: "Pepsi", Price: 30000},
	{Key: Combo1, Name: "Combo 1", Price: 150000},
	{Key: Combo2, Name: "Combo 2", Price: 300000},
}

// Concessions returns the concession menu in display order.
func Concessions() []model.ConcessionItem {
	out := make([]model.ConcessionItem, len(menu))
	copy(out, menu)
	return out
}

// ConcessionPrices maps every concession key to its unit price.
func ConcessionPrices() map[string]int64 {
	m := make(map[string]int64, len(menu))
	for _, it := range menu {
		m[it.Key] = it.Price
	}
	return m
}

// EmptyConcessions returns a quantity map with every known key set to zero.
func EmptyConcessions() map[string]int {
	m := make(map[string]int, len(menu))
	for _, it := range menu {
		m[it.Key] = 0
	}
	return m
}

// IsConcession reports whether key is on the menu.
func IsConcession(key string) bool {
	for _, it := range menu {
		if it.Key == key {
			return true
		}
	}
	return false
}

// Payment methods accepted on the payment step.  Only the choice is
// recorded; no payment is processed.
const (
	PaymentATM     = "atm"
	PaymentMomo    = "momo"
	PaymentZaloPay = "zalopay"
	PaymentVNPay   = "vnpay"
)

// PaymentMethods returns the selectable payment methods in display order.
func PaymentMethods() []string {
	return []string{PaymentATM, PaymentMomo, PaymentZaloPay, PaymentVNPay}
}

// IsPaymentMethod reports whether m is an accepted payment method.
func IsPaymentMethod(m string) bool {
	for _, p := range PaymentMethods() {
		if p == m {
			return true
		}
	}
	return false
}
