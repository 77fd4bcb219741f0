package domain

import "github.com/shopspring/decimal"

// Product is the catalog record served by the stock service.
type Product struct {
	ID    int64           `json:"id"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
}

// Stock is the available quantity of a product as tracked by the stock service.
type Stock struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}

func (p Product) LineItem(amount int) LineItem {
	return LineItem{
		ID:     p.ID,
		Title:  p.Title,
		Price:  p.Price,
		Image:  p.Image,
		Amount: amount,
	}
}
