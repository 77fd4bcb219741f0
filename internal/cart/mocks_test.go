package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nikolayk812/rocketcart/internal/domain"
)

var errBoom = errors.New("boom")

type stockCall struct {
	ProductID int64
	Amount    int
}

type mockStockService struct {
	mu       sync.Mutex
	stock    map[int64]int
	products map[int64]domain.Product

	getStockErr   error
	getProductErr error
	setStockErr   error

	getStockCalls int
	setStockCalls []stockCall
}

func newMockStockService(products ...domain.Product) *mockStockService {
	s := &mockStockService{
		stock:    make(map[int64]int),
		products: make(map[int64]domain.Product),
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *mockStockService) GetStock(_ context.Context, productID int64) (domain.Stock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.getStockCalls++
	if s.getStockErr != nil {
		return domain.Stock{}, s.getStockErr
	}

	amount, ok := s.stock[productID]
	if !ok {
		return domain.Stock{}, fmt.Errorf("stock[%d]: not found", productID)
	}

	return domain.Stock{ID: productID, Amount: amount}, nil
}

func (s *mockStockService) GetProduct(_ context.Context, productID int64) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.getProductErr != nil {
		return domain.Product{}, s.getProductErr
	}

	p, ok := s.products[productID]
	if !ok {
		return domain.Product{}, fmt.Errorf("product[%d]: not found", productID)
	}

	return p, nil
}

func (s *mockStockService) SetStock(_ context.Context, productID int64, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.setStockErr != nil {
		return s.setStockErr
	}

	s.setStockCalls = append(s.setStockCalls, stockCall{ProductID: productID, Amount: amount})
	s.stock[productID] = amount

	return nil
}

func (s *mockStockService) stockOf(productID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stock[productID]
}

type mockRepository struct {
	mu      sync.Mutex
	items   []domain.LineItem
	saves   int
	loadErr error
	saveErr error
}

func (r *mockRepository) Load(context.Context) ([]domain.LineItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loadErr != nil {
		return nil, r.loadErr
	}

	return domain.Cart{Items: r.items}.Clone().Items, nil
}

func (r *mockRepository) Save(_ context.Context, items []domain.LineItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saveErr != nil {
		return r.saveErr
	}

	r.saves++
	r.items = domain.Cart{Items: items}.Clone().Items

	return nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []domain.Notice
}

func (n *recordingNotifier) Notify(_ context.Context, notice domain.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.notices = append(n.notices, notice)
}

func (n *recordingNotifier) kinds() []domain.NoticeKind {
	n.mu.Lock()
	defer n.mu.Unlock()

	kinds := make([]domain.NoticeKind, 0, len(n.notices))
	for _, notice := range n.notices {
		kinds = append(kinds, notice.Kind)
	}
	return kinds
}
