package port

import (
	"context"

	"github.com/nikolayk812/rocketcart/internal/domain"
)

// CartRepository stores the whole cart snapshot under the key it was created with.
type CartRepository interface {
	Load(ctx context.Context) ([]domain.LineItem, error)
	Save(ctx context.Context, items []domain.LineItem) error
}

type StockService interface {
	GetStock(ctx context.Context, productID int64) (domain.Stock, error)
	GetProduct(ctx context.Context, productID int64) (domain.Product, error)
	SetStock(ctx context.Context, productID int64, amount int) error
}

type Notifier interface {
	Notify(ctx context.Context, notice domain.Notice)
}
