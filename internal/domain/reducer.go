package domain

import "fmt"

// Action is a cart transition understood by Reduce.
type Action interface {
	apply(c Cart) (Cart, error)
}

type AddLine struct {
	Product Product
}

type IncrementLine struct {
	ProductID int64
}

type RemoveLine struct {
	ProductID int64
}

type SetLineAmount struct {
	ProductID int64
	Amount    int
}

// Reduce applies the action to a copy of the cart. The input cart is never modified.
func Reduce(c Cart, a Action) (Cart, error) {
	if a == nil {
		return Cart{}, fmt.Errorf("action is nil")
	}

	return a.apply(c.Clone())
}

func (a AddLine) apply(c Cart) (Cart, error) {
	if _, ok := c.Find(a.Product.ID); ok {
		return Cart{}, fmt.Errorf("product[%d]: %w", a.Product.ID, ErrItemExists)
	}

	c.Items = append(c.Items, a.Product.LineItem(1))

	return c, nil
}

func (a IncrementLine) apply(c Cart) (Cart, error) {
	i := c.index(a.ProductID)
	if i < 0 {
		return Cart{}, fmt.Errorf("product[%d]: %w", a.ProductID, ErrItemNotFound)
	}

	c.Items[i].Amount++

	return c, nil
}

func (a RemoveLine) apply(c Cart) (Cart, error) {
	i := c.index(a.ProductID)
	if i < 0 {
		return Cart{}, fmt.Errorf("product[%d]: %w", a.ProductID, ErrItemNotFound)
	}

	c.Items = append(c.Items[:i], c.Items[i+1:]...)

	return c, nil
}

func (a SetLineAmount) apply(c Cart) (Cart, error) {
	if a.Amount <= 0 {
		return Cart{}, fmt.Errorf("product[%d]: %w", a.ProductID, ErrInvalidAmount)
	}

	i := c.index(a.ProductID)
	if i < 0 {
		return Cart{}, fmt.Errorf("product[%d]: %w", a.ProductID, ErrItemNotFound)
	}

	c.Items[i].Amount = a.Amount

	return c, nil
}

func (c Cart) index(productID int64) int {
	for i, item := range c.Items {
		if item.ID == productID {
			return i
		}
	}

	return -1
}
