package domain

import "fmt"

// StockPolicy decides whether a cart mutation is allowed by the current stock level and
// how much the remote stock has to move once the mutation is persisted.
// Negative deltas debit stock, positive deltas restore it.
type StockPolicy interface {
	CanAdd(stock Stock, inCart int) bool
	CanSetAmount(stock Stock, inCart, requested int) bool

	AddDelta() int
	RemoveDelta(removed int) int
	SetAmountDelta(inCart, requested int) int
}

// CeilingPolicy treats the remote stock level as a ceiling for the line quantity.
// Adds debit one unit and removals restore the whole line, but amount updates leave
// remote stock untouched, so stock drifts whenever quantities are edited directly.
type CeilingPolicy struct{}

func (CeilingPolicy) CanAdd(stock Stock, inCart int) bool {
	if inCart > 0 {
		return stock.Amount > inCart
	}
	return stock.Amount >= 1
}

func (CeilingPolicy) CanSetAmount(stock Stock, _, requested int) bool {
	return stock.Amount >= requested
}

func (CeilingPolicy) AddDelta() int               { return -1 }
func (CeilingPolicy) RemoveDelta(removed int) int { return removed }
func (CeilingPolicy) SetAmountDelta(_, _ int) int { return 0 }
func (CeilingPolicy) String() string              { return "ceiling" }

// ReservePolicy treats the remote stock level as what is still available after the units
// already held by this cart, and keeps it in step on every mutation.
type ReservePolicy struct{}

func (ReservePolicy) CanAdd(stock Stock, _ int) bool {
	return stock.Amount >= 1
}

func (ReservePolicy) CanSetAmount(stock Stock, inCart, requested int) bool {
	return stock.Amount >= requested-inCart
}

func (ReservePolicy) AddDelta() int               { return -1 }
func (ReservePolicy) RemoveDelta(removed int) int { return removed }

func (ReservePolicy) SetAmountDelta(inCart, requested int) int {
	return inCart - requested
}

func (ReservePolicy) String() string { return "reserve" }

func ParseStockPolicy(name string) (StockPolicy, error) {
	switch name {
	case "", "ceiling":
		return CeilingPolicy{}, nil
	case "reserve":
		return ReservePolicy{}, nil
	default:
		return nil, fmt.Errorf("stock policy[%s] is not valid", name)
	}
}
