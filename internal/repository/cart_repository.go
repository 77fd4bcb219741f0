package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/rocketcart/internal/domain"
	"github.com/nikolayk812/rocketcart/internal/port"
	"github.com/shopspring/decimal"
)

const (
	selectLineItems = `SELECT product_id, title, price, image, amount
FROM cart_line_items
WHERE storage_key = $1
ORDER BY position`

	deleteLineItems = `DELETE FROM cart_line_items WHERE storage_key = $1`

	insertLineItem = `INSERT INTO cart_line_items (storage_key, position, product_id, title, price, image, amount)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
)

type cartRepository struct {
	pool *pgxpool.Pool
	key  string
}

type lineItemRow struct {
	ProductID int64           `db:"product_id"`
	Title     string          `db:"title"`
	Price     decimal.Decimal `db:"price"`
	Image     string          `db:"image"`
	Amount    int             `db:"amount"`
}

func NewPostgres(pool *pgxpool.Pool, key string) (port.CartRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	return &cartRepository{
		pool: pool,
		key:  key,
	}, nil
}

func (r *cartRepository) Load(ctx context.Context) ([]domain.LineItem, error) {
	rows, err := r.pool.Query(ctx, selectLineItems, r.key)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}

	dbRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[lineItemRow])
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows: %w", err)
	}

	items := mapRowsToDomain(dbRows)

	if err := (domain.Cart{Items: items}).Validate(); err != nil {
		return nil, fmt.Errorf("cart[%s] is not valid: %w", r.key, err)
	}

	return items, nil
}

func (r *cartRepository) Save(ctx context.Context, items []domain.LineItem) error {
	if err := (domain.Cart{Items: items}).Validate(); err != nil {
		return fmt.Errorf("cart[%s] is not valid: %w", r.key, err)
	}

	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deleteLineItems, r.key); err != nil {
			return fmt.Errorf("tx.Exec delete: %w", err)
		}

		if len(items) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for i, item := range items {
			batch.Queue(insertLineItem, r.key, i, item.ID, item.Title, item.Price, item.Image, item.Amount)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("tx.SendBatch: %w", err)
		}

		return nil
	})
}

func mapRowToDomain(row lineItemRow) domain.LineItem {
	return domain.LineItem{
		ID:     row.ProductID,
		Title:  row.Title,
		Price:  row.Price,
		Image:  row.Image,
		Amount: row.Amount,
	}
}

func mapRowsToDomain(rows []lineItemRow) []domain.LineItem {
	items := make([]domain.LineItem, 0, len(rows))

	for _, row := range rows {
		items = append(items, mapRowToDomain(row))
	}

	return items
}
