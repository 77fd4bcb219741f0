package domain

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var (
	ErrItemNotFound  = errors.New("item not found")
	ErrItemExists    = errors.New("item already in cart")
	ErrInvalidAmount = errors.New("amount must be positive")
)

type Cart struct {
	Items []LineItem
}

// LineItem is one entry of the persisted snapshot. Price is written as a JSON number,
// the way the storefront stores it, and read back from a number or a string.
type LineItem struct {
	ID     int64           `json:"id"`
	Title  string          `json:"title"`
	Price  decimal.Decimal `json:"price"`
	Image  string          `json:"image"`
	Amount int             `json:"amount"`
}

func (li LineItem) MarshalJSON() ([]byte, error) {
	type plain LineItem

	return json.Marshal(struct {
		plain
		Price json.Number `json:"price"`
	}{
		plain: plain(li),
		Price: json.Number(li.Price.String()),
	})
}

func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Amount)))
}

// Find returns the line item with the given product id.
func (c Cart) Find(productID int64) (LineItem, bool) {
	for _, item := range c.Items {
		if item.ID == productID {
			return item, true
		}
	}

	return LineItem{}, false
}

func (c Cart) Clone() Cart {
	if c.Items == nil {
		return Cart{Items: []LineItem{}}
	}

	items := make([]LineItem, len(c.Items))
	copy(items, c.Items)

	return Cart{Items: items}
}

func (c Cart) Total(unit currency.Unit) Money {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}

	return Money{Amount: total, Currency: unit}
}

// Validate rejects snapshots that carry duplicate ids or non-positive amounts.
func (c Cart) Validate() error {
	seen := make(map[int64]struct{}, len(c.Items))

	for _, item := range c.Items {
		if item.Amount <= 0 {
			return fmt.Errorf("item[%d]: %w", item.ID, ErrInvalidAmount)
		}
		if _, ok := seen[item.ID]; ok {
			return fmt.Errorf("item[%d]: duplicate id", item.ID)
		}
		seen[item.ID] = struct{}{}
	}

	return nil
}
