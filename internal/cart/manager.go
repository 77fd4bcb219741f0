package cart

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nikolayk812/rocketcart/internal/domain"
	"github.com/nikolayk812/rocketcart/internal/port"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/currency"
)

// Result is what a cart operation hands back to the presentation layer.
// Notice is nil when the operation went through without anything to report.
type Result struct {
	Cart   domain.Cart
	Total  domain.Money
	Notice *domain.Notice
}

type Option func(*Manager)

func WithPolicy(policy domain.StockPolicy) Option {
	return func(m *Manager) {
		if policy != nil {
			m.policy = policy
		}
	}
}

func WithCurrency(unit currency.Unit) Option {
	return func(m *Manager) {
		m.currency = unit
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Manager owns the cart state. Every mutation validates against the stock service,
// persists the whole snapshot and only then replaces the in-memory cart.
// Operations never return errors: failures become notices.
type Manager struct {
	mu   sync.Mutex
	cart domain.Cart

	repo     port.CartRepository
	stock    port.StockService
	notifier port.Notifier

	policy   domain.StockPolicy
	currency currency.Unit
	logger   *slog.Logger
}

// New reads the persisted snapshot once. Later mutations only write it.
func New(ctx context.Context, repo port.CartRepository, stock port.StockService, notifier port.Notifier, opts ...Option) (*Manager, error) {
	if repo == nil {
		return nil, fmt.Errorf("repo is nil")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock is nil")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is nil")
	}

	m := &Manager{
		repo:     repo,
		stock:    stock,
		notifier: notifier,
		policy:   domain.CeilingPolicy{},
		currency: currency.USD,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(m)
	}

	items, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("repo.Load: %w", err)
	}

	m.cart = domain.Cart{Items: items}.Clone()

	return m, nil
}

func (m *Manager) Cart() domain.Cart {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.cart.Clone()
}

func (m *Manager) Total() domain.Money {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.cart.Total(m.currency)
}

// Snapshot returns the cart and its total read under the same lock.
func (m *Manager) Snapshot() Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.result(nil)
}

func (m *Manager) AddProduct(ctx context.Context, productID int64) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, notice := m.add(ctx, productID)
	if notice != nil {
		return m.result(notice)
	}

	if err := m.commit(ctx, next); err != nil {
		return m.fail(ctx, domain.NoticeAddFailed, productID, err)
	}

	if err := m.adjustStock(ctx, productID, m.policy.AddDelta()); err != nil {
		return m.fail(ctx, domain.NoticeStockAdjustFailed, productID, err)
	}

	return m.result(nil)
}

func (m *Manager) add(ctx context.Context, productID int64) (domain.Cart, *domain.Notice) {
	if item, ok := m.cart.Find(productID); ok {
		stock, err := m.stock.GetStock(ctx, productID)
		if err != nil {
			return domain.Cart{}, m.notify(ctx, domain.NoticeAddFailed, productID, fmt.Errorf("stock.GetStock: %w", err))
		}

		if !m.policy.CanAdd(stock, item.Amount) {
			return domain.Cart{}, m.notify(ctx, domain.NoticeOutOfStock, productID, nil)
		}

		next, err := domain.Reduce(m.cart, domain.IncrementLine{ProductID: productID})
		if err != nil {
			return domain.Cart{}, m.notify(ctx, domain.NoticeAddFailed, productID, err)
		}

		return next, nil
	}

	var (
		stock      domain.Stock
		product    domain.Product
		productErr error
	)

	// The product lookup error is held back: an empty stock wins over it.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if stock, err = m.stock.GetStock(gctx, productID); err != nil {
			return fmt.Errorf("stock.GetStock: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		product, productErr = m.stock.GetProduct(gctx, productID)
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.Cart{}, m.notify(ctx, domain.NoticeAddFailed, productID, err)
	}

	if !m.policy.CanAdd(stock, 0) {
		return domain.Cart{}, m.notify(ctx, domain.NoticeOutOfStock, productID, nil)
	}

	if productErr != nil {
		return domain.Cart{}, m.notify(ctx, domain.NoticeAddFailed, productID, fmt.Errorf("stock.GetProduct: %w", productErr))
	}

	product.ID = productID

	next, err := domain.Reduce(m.cart, domain.AddLine{Product: product})
	if err != nil {
		return domain.Cart{}, m.notify(ctx, domain.NoticeAddFailed, productID, err)
	}

	return next, nil
}

func (m *Manager) RemoveProduct(ctx context.Context, productID int64) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.cart.Find(productID)
	if !ok {
		return m.fail(ctx, domain.NoticeRemoveFailed, productID, domain.ErrItemNotFound)
	}

	next, err := domain.Reduce(m.cart, domain.RemoveLine{ProductID: productID})
	if err != nil {
		return m.fail(ctx, domain.NoticeRemoveFailed, productID, err)
	}

	if err := m.commit(ctx, next); err != nil {
		return m.fail(ctx, domain.NoticeRemoveFailed, productID, err)
	}

	if err := m.adjustStock(ctx, productID, m.policy.RemoveDelta(item.Amount)); err != nil {
		return m.fail(ctx, domain.NoticeStockAdjustFailed, productID, err)
	}

	return m.result(nil)
}

// UpdateProductAmount ignores non-positive amounts; removing a line is RemoveProduct's job.
func (m *Manager) UpdateProductAmount(ctx context.Context, productID int64, amount int) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	if amount <= 0 {
		return m.result(nil)
	}

	item, ok := m.cart.Find(productID)
	if !ok {
		return m.fail(ctx, domain.NoticeUpdateFailed, productID, domain.ErrItemNotFound)
	}

	stock, err := m.stock.GetStock(ctx, productID)
	if err != nil {
		return m.fail(ctx, domain.NoticeUpdateFailed, productID, fmt.Errorf("stock.GetStock: %w", err))
	}

	if !m.policy.CanSetAmount(stock, item.Amount, amount) {
		return m.fail(ctx, domain.NoticeOutOfStock, productID, nil)
	}

	next, err := domain.Reduce(m.cart, domain.SetLineAmount{ProductID: productID, Amount: amount})
	if err != nil {
		return m.fail(ctx, domain.NoticeUpdateFailed, productID, err)
	}

	if err := m.commit(ctx, next); err != nil {
		return m.fail(ctx, domain.NoticeUpdateFailed, productID, err)
	}

	if err := m.adjustStock(ctx, productID, m.policy.SetAmountDelta(item.Amount, amount)); err != nil {
		return m.fail(ctx, domain.NoticeStockAdjustFailed, productID, err)
	}

	return m.result(nil)
}

// adjustStock re-reads the remote level and pushes it moved by delta.
func (m *Manager) adjustStock(ctx context.Context, productID int64, delta int) error {
	if delta == 0 {
		return nil
	}

	stock, err := m.stock.GetStock(ctx, productID)
	if err != nil {
		return fmt.Errorf("stock.GetStock: %w", err)
	}

	amount := stock.Amount + delta
	if amount < 0 {
		return fmt.Errorf("product[%d]: stock %d cannot move by %d", productID, stock.Amount, delta)
	}

	if err := m.stock.SetStock(ctx, productID, amount); err != nil {
		return fmt.Errorf("stock.SetStock: %w", err)
	}

	return nil
}

// commit writes the snapshot first so that a failed write leaves the cart untouched.
func (m *Manager) commit(ctx context.Context, next domain.Cart) error {
	if err := m.repo.Save(ctx, next.Items); err != nil {
		return fmt.Errorf("repo.Save: %w", err)
	}

	m.cart = next

	return nil
}

func (m *Manager) fail(ctx context.Context, kind domain.NoticeKind, productID int64, cause error) Result {
	return m.result(m.notify(ctx, kind, productID, cause))
}

func (m *Manager) notify(ctx context.Context, kind domain.NoticeKind, productID int64, cause error) *domain.Notice {
	notice := domain.NewNotice(kind, productID)

	if cause != nil {
		m.logger.DebugContext(ctx, "cart operation failed",
			"kind", string(kind),
			"product_id", productID,
			"error", cause,
		)
	}

	m.notifier.Notify(ctx, notice)

	return &notice
}

func (m *Manager) result(notice *domain.Notice) Result {
	return Result{
		Cart:   m.cart.Clone(),
		Total:  m.cart.Total(m.currency),
		Notice: notice,
	}
}
