package stockserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/nikolayk812/rocketcart/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrNegativeStock   = errors.New("stock amount is negative")
)

// Seed is the fixture layout of the development stock API, one list per resource.
type Seed struct {
	Products []domain.Product `json:"products"`
	Stock    []domain.Stock   `json:"stock"`
}

// Catalog is an in-memory product and stock store.
type Catalog struct {
	mu       sync.RWMutex
	products map[int64]domain.Product
	stock    map[int64]int
}

func NewCatalog(seed Seed) (*Catalog, error) {
	c := &Catalog{
		products: make(map[int64]domain.Product, len(seed.Products)),
		stock:    make(map[int64]int, len(seed.Stock)),
	}

	for _, p := range seed.Products {
		c.products[p.ID] = p
	}

	for _, s := range seed.Stock {
		if _, ok := c.products[s.ID]; !ok {
			return nil, fmt.Errorf("stock[%d]: %w", s.ID, ErrProductNotFound)
		}
		if s.Amount < 0 {
			return nil, fmt.Errorf("stock[%d]: %w", s.ID, ErrNegativeStock)
		}
		c.stock[s.ID] = s.Amount
	}

	return c, nil
}

func LoadSeed(r io.Reader) (Seed, error) {
	var seed Seed
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return Seed{}, fmt.Errorf("json.Decode: %w", err)
	}

	return seed, nil
}

func (c *Catalog) Products() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	products := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		products = append(products, p)
	}

	slices.SortFunc(products, func(a, b domain.Product) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})

	return products
}

func (c *Catalog) Product(id int64) (domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.products[id]
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}

	return p, nil
}

// Stock returns zero stock for products that have no stock record.
func (c *Catalog) Stock(id int64) (domain.Stock, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.products[id]; !ok {
		return domain.Stock{}, ErrProductNotFound
	}

	return domain.Stock{ID: id, Amount: c.stock[id]}, nil
}

func (c *Catalog) SetStock(id int64, amount int) (domain.Stock, error) {
	if amount < 0 {
		return domain.Stock{}, ErrNegativeStock
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.products[id]; !ok {
		return domain.Stock{}, ErrProductNotFound
	}

	c.stock[id] = amount

	return domain.Stock{ID: id, Amount: amount}, nil
}
