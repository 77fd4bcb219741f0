package cart

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/nikolayk812/rocketcart/internal/domain"
	"github.com/nikolayk812/rocketcart/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/text/currency"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	manager  *Manager
	stock    *mockStockService
	repo     *mockRepository
	notifier *recordingNotifier
}

func setup(t *testing.T, products []domain.Product, stock map[int64]int, items []domain.LineItem, opts ...Option) fixture {
	t.Helper()

	svc := newMockStockService(products...)
	for id, amount := range stock {
		svc.stock[id] = amount
	}

	repo := &mockRepository{items: items}
	notifier := &recordingNotifier{}

	m, err := New(t.Context(), repo, svc, notifier, opts...)
	require.NoError(t, err)

	return fixture{manager: m, stock: svc, repo: repo, notifier: notifier}
}

func randomProduct(id int64) domain.Product {
	return domain.Product{
		ID:    id,
		Title: gofakeit.ProductName(),
		Price: decimal.NewFromFloat(gofakeit.Price(10, 500)),
		Image: gofakeit.URL(),
	}
}

func assertCart(t *testing.T, expected []domain.LineItem, actual domain.Cart) {
	t.Helper()

	decimalComparer := cmp.Comparer(func(x, y decimal.Decimal) bool {
		return x.Equal(y)
	})

	if expected == nil {
		expected = []domain.LineItem{}
	}

	diff := cmp.Diff(expected, actual.Items, decimalComparer)
	assert.Empty(t, diff)
}

func TestManager_AddProduct(t *testing.T) {
	sneaker := randomProduct(1)

	tests := []struct {
		name        string
		items       []domain.LineItem
		stock       map[int64]int
		wantItems   []domain.LineItem
		wantStock   int
		wantNotices []domain.NoticeKind
	}{
		{
			name:      "absent product with stock: inserted with amount 1",
			stock:     map[int64]int{1: 3},
			wantItems: []domain.LineItem{sneaker.LineItem(1)},
			wantStock: 2,
		},
		{
			name:        "absent product without stock: out of stock",
			stock:       map[int64]int{1: 0},
			wantStock:   0,
			wantNotices: []domain.NoticeKind{domain.NoticeOutOfStock},
		},
		{
			name:      "present product with stock above amount: incremented",
			items:     []domain.LineItem{sneaker.LineItem(2)},
			stock:     map[int64]int{1: 3},
			wantItems: []domain.LineItem{sneaker.LineItem(3)},
			wantStock: 2,
		},
		{
			name:        "present product with stock equal to amount: out of stock",
			items:       []domain.LineItem{sneaker.LineItem(2)},
			stock:       map[int64]int{1: 2},
			wantItems:   []domain.LineItem{sneaker.LineItem(2)},
			wantStock:   2,
			wantNotices: []domain.NoticeKind{domain.NoticeOutOfStock},
		},
		{
			name:        "unknown product: add failed",
			stock:       map[int64]int{},
			wantNotices: []domain.NoticeKind{domain.NoticeAddFailed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, []domain.Product{sneaker}, tt.stock, tt.items)

			res := f.manager.AddProduct(t.Context(), sneaker.ID)

			assertCart(t, tt.wantItems, res.Cart)
			assertCart(t, tt.wantItems, f.manager.Cart())
			assert.Equal(t, tt.wantStock, f.stock.stockOf(sneaker.ID))
			assert.Equal(t, tt.wantNotices, nilIfEmpty(f.notifier.kinds()))

			if len(tt.wantNotices) > 0 {
				require.NotNil(t, res.Notice)
				assert.Equal(t, tt.wantNotices[0], res.Notice.Kind)
				assert.Zero(t, f.repo.saves)
				return
			}

			assert.Nil(t, res.Notice)
			assert.Equal(t, 1, f.repo.saves)
			assertCart(t, tt.wantItems, domain.Cart{Items: f.repo.items})
		})
	}
}

func TestManager_AddProduct_KeepsInsertionOrder(t *testing.T) {
	first, second, third := randomProduct(3), randomProduct(1), randomProduct(2)

	f := setup(t, []domain.Product{first, second, third}, map[int64]int{1: 5, 2: 5, 3: 5}, nil)

	for _, p := range []domain.Product{first, second, third, second} {
		res := f.manager.AddProduct(t.Context(), p.ID)
		require.Nil(t, res.Notice)
	}

	assertCart(t, []domain.LineItem{first.LineItem(1), second.LineItem(2), third.LineItem(1)}, f.manager.Cart())
}

func TestManager_AddProduct_Failures(t *testing.T) {
	sneaker := randomProduct(1)

	t.Run("product lookup fails: add failed, nothing persisted", func(t *testing.T) {
		f := setup(t, []domain.Product{sneaker}, map[int64]int{1: 3}, nil)
		f.stock.getProductErr = errBoom

		res := f.manager.AddProduct(t.Context(), sneaker.ID)

		require.NotNil(t, res.Notice)
		assert.Equal(t, domain.NoticeAddFailed, res.Notice.Kind)
		assert.Equal(t, "Failed to add product", res.Notice.Message)
		assertCart(t, nil, f.manager.Cart())
		assert.Equal(t, 3, f.stock.stockOf(sneaker.ID))
	})

	t.Run("empty stock and product lookup fails: out of stock", func(t *testing.T) {
		f := setup(t, nil, map[int64]int{7: 0}, nil)

		res := f.manager.AddProduct(t.Context(), 7)

		require.NotNil(t, res.Notice)
		assert.Equal(t, domain.NoticeOutOfStock, res.Notice.Kind)
		assert.Equal(t, []domain.NoticeKind{domain.NoticeOutOfStock}, f.notifier.kinds())
		assertCart(t, nil, f.manager.Cart())
		assert.Zero(t, f.repo.saves)
		assert.Empty(t, f.stock.setStockCalls)
	})

	t.Run("save fails: add failed, cart and stock unchanged", func(t *testing.T) {
		f := setup(t, []domain.Product{sneaker}, map[int64]int{1: 3}, nil)
		f.repo.saveErr = errBoom

		res := f.manager.AddProduct(t.Context(), sneaker.ID)

		require.NotNil(t, res.Notice)
		assert.Equal(t, domain.NoticeAddFailed, res.Notice.Kind)
		assertCart(t, nil, f.manager.Cart())
		assert.Empty(t, f.stock.setStockCalls)
	})

	t.Run("stock push fails: cart kept, stock adjust notice", func(t *testing.T) {
		f := setup(t, []domain.Product{sneaker}, map[int64]int{1: 3}, nil)
		f.stock.setStockErr = errBoom

		res := f.manager.AddProduct(t.Context(), sneaker.ID)

		require.NotNil(t, res.Notice)
		assert.Equal(t, domain.NoticeStockAdjustFailed, res.Notice.Kind)
		assertCart(t, []domain.LineItem{sneaker.LineItem(1)}, f.manager.Cart())
		assertCart(t, []domain.LineItem{sneaker.LineItem(1)}, domain.Cart{Items: f.repo.items})
	})
}

func TestManager_RemoveProduct(t *testing.T) {
	sneaker, boot := randomProduct(1), randomProduct(2)

	t.Run("present product: removed and stock restored", func(t *testing.T) {
		f := setup(t, nil, map[int64]int{1: 1, 2: 4}, []domain.LineItem{sneaker.LineItem(3), boot.LineItem(1)})

		res := f.manager.RemoveProduct(t.Context(), sneaker.ID)

		assert.Nil(t, res.Notice)
		assertCart(t, []domain.LineItem{boot.LineItem(1)}, res.Cart)
		assertCart(t, []domain.LineItem{boot.LineItem(1)}, domain.Cart{Items: f.repo.items})
		assert.Equal(t, 4, f.stock.stockOf(sneaker.ID))
		assert.Equal(t, 4, f.stock.stockOf(boot.ID))
	})

	t.Run("absent product: remove failed, cart unchanged", func(t *testing.T) {
		f := setup(t, nil, map[int64]int{1: 1}, []domain.LineItem{boot.LineItem(1)})

		res := f.manager.RemoveProduct(t.Context(), sneaker.ID)

		require.NotNil(t, res.Notice)
		assert.Equal(t, domain.NoticeRemoveFailed, res.Notice.Kind)
		assertCart(t, []domain.LineItem{boot.LineItem(1)}, f.manager.Cart())
		assert.Zero(t, f.repo.saves)
		assert.Empty(t, f.stock.setStockCalls)
	})

	t.Run("save fails: remove failed, item kept", func(t *testing.T) {
		f := setup(t, nil, map[int64]int{1: 1}, []domain.LineItem{sneaker.LineItem(2)})
		f.repo.saveErr = errBoom

		res := f.manager.RemoveProduct(t.Context(), sneaker.ID)

		require.NotNil(t, res.Notice)
		assert.Equal(t, domain.NoticeRemoveFailed, res.Notice.Kind)
		assertCart(t, []domain.LineItem{sneaker.LineItem(2)}, f.manager.Cart())
		assert.Equal(t, 1, f.stock.stockOf(sneaker.ID))
	})
}

func TestManager_UpdateProductAmount(t *testing.T) {
	sneaker := randomProduct(1)

	tests := []struct {
		name          string
		amount        int
		stock         int
		wantAmount    int
		wantNotices   []domain.NoticeKind
		wantStockRead bool
	}{
		{
			name:       "zero amount: no-op",
			amount:     0,
			stock:      5,
			wantAmount: 2,
		},
		{
			name:       "negative amount: no-op",
			amount:     -3,
			stock:      5,
			wantAmount: 2,
		},
		{
			name:          "amount above stock: out of stock",
			amount:        6,
			stock:         5,
			wantAmount:    2,
			wantNotices:   []domain.NoticeKind{domain.NoticeOutOfStock},
			wantStockRead: true,
		},
		{
			name:          "amount equal to stock: set",
			amount:        5,
			stock:         5,
			wantAmount:    5,
			wantStockRead: true,
		},
		{
			name:          "lower amount: set",
			amount:        1,
			stock:         5,
			wantAmount:    1,
			wantStockRead: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, nil, map[int64]int{1: tt.stock}, []domain.LineItem{sneaker.LineItem(2)})

			res := f.manager.UpdateProductAmount(t.Context(), sneaker.ID, tt.amount)

			assertCart(t, []domain.LineItem{sneaker.LineItem(tt.wantAmount)}, res.Cart)
			assert.Equal(t, tt.wantNotices, nilIfEmpty(f.notifier.kinds()))
			assert.Equal(t, tt.wantStockRead, f.stock.getStockCalls > 0)
			// amount edits never move remote stock under the ceiling policy
			assert.Equal(t, tt.stock, f.stock.stockOf(sneaker.ID))
			assert.Empty(t, f.stock.setStockCalls)
		})
	}
}

func TestManager_UpdateProductAmount_Failures(t *testing.T) {
	sneaker := randomProduct(1)

	t.Run("absent product: update failed", func(t *testing.T) {
		f := setup(t, nil, map[int64]int{1: 5}, nil)

		res := f.manager.UpdateProductAmount(t.Context(), sneaker.ID, 2)

		require.NotNil(t, res.Notice)
		assert.Equal(t, domain.NoticeUpdateFailed, res.Notice.Kind)
		assertCart(t, nil, res.Cart)
	})

	t.Run("stock lookup fails: update failed", func(t *testing.T) {
		f := setup(t, nil, map[int64]int{1: 5}, []domain.LineItem{sneaker.LineItem(1)})
		f.stock.getStockErr = errBoom

		res := f.manager.UpdateProductAmount(t.Context(), sneaker.ID, 2)

		require.NotNil(t, res.Notice)
		assert.Equal(t, domain.NoticeUpdateFailed, res.Notice.Kind)
		assertCart(t, []domain.LineItem{sneaker.LineItem(1)}, res.Cart)
	})
}

func TestManager_ReservePolicy(t *testing.T) {
	sneaker := randomProduct(1)

	f := setup(t, []domain.Product{sneaker}, map[int64]int{1: 3}, nil, WithPolicy(domain.ReservePolicy{}))

	for range 3 {
		require.Nil(t, f.manager.AddProduct(t.Context(), sneaker.ID).Notice)
	}
	assert.Equal(t, 0, f.stock.stockOf(sneaker.ID))

	res := f.manager.AddProduct(t.Context(), sneaker.ID)
	require.NotNil(t, res.Notice)
	assert.Equal(t, domain.NoticeOutOfStock, res.Notice.Kind)

	require.Nil(t, f.manager.UpdateProductAmount(t.Context(), sneaker.ID, 1).Notice)
	assert.Equal(t, 2, f.stock.stockOf(sneaker.ID))

	require.Nil(t, f.manager.UpdateProductAmount(t.Context(), sneaker.ID, 3).Notice)
	assert.Equal(t, 0, f.stock.stockOf(sneaker.ID))

	res = f.manager.UpdateProductAmount(t.Context(), sneaker.ID, 4)
	require.NotNil(t, res.Notice)
	assert.Equal(t, domain.NoticeOutOfStock, res.Notice.Kind)

	require.Nil(t, f.manager.RemoveProduct(t.Context(), sneaker.ID).Notice)
	assert.Equal(t, 3, f.stock.stockOf(sneaker.ID))
	assertCart(t, nil, f.manager.Cart())
}

func TestManager_PersistedSnapshotRoundTrip(t *testing.T) {
	sneaker, boot := randomProduct(1), randomProduct(2)

	svc := newMockStockService(sneaker, boot)
	svc.stock[1] = 10
	svc.stock[2] = 10

	dir := t.TempDir()
	repo, err := repository.NewFile(dir, "@RocketShoes:cart")
	require.NoError(t, err)

	m, err := New(t.Context(), repo, svc, &recordingNotifier{})
	require.NoError(t, err)

	m.AddProduct(t.Context(), sneaker.ID)
	m.AddProduct(t.Context(), boot.ID)
	m.AddProduct(t.Context(), sneaker.ID)
	m.UpdateProductAmount(t.Context(), boot.ID, 4)
	m.RemoveProduct(t.Context(), sneaker.ID)
	m.AddProduct(t.Context(), sneaker.ID)
	// rejected mutations must not leak into storage
	m.UpdateProductAmount(t.Context(), boot.ID, 100)
	m.RemoveProduct(t.Context(), 99)

	reopened, err := repository.NewFile(dir, "@RocketShoes:cart")
	require.NoError(t, err)

	restored, err := New(t.Context(), reopened, svc, &recordingNotifier{})
	require.NoError(t, err)

	assertCart(t, m.Cart().Items, restored.Cart())
	assertCart(t, []domain.LineItem{boot.LineItem(4), sneaker.LineItem(1)}, restored.Cart())
}

func TestManager_Total(t *testing.T) {
	items := []domain.LineItem{
		{ID: 1, Title: "a", Price: decimal.RequireFromString("179.90"), Amount: 2},
		{ID: 2, Title: "b", Price: decimal.RequireFromString("139.90"), Amount: 1},
	}

	f := setup(t, nil, nil, items, WithCurrency(currency.BRL))

	total := f.manager.Total()
	assert.Equal(t, "BRL 499.70", total.String())
}

func TestManager_Snapshot(t *testing.T) {
	items := []domain.LineItem{
		{ID: 1, Title: "a", Price: decimal.RequireFromString("179.90"), Amount: 2},
		{ID: 2, Title: "b", Price: decimal.RequireFromString("139.90"), Amount: 1},
	}

	f := setup(t, nil, nil, items, WithCurrency(currency.BRL))

	res := f.manager.Snapshot()

	assert.Nil(t, res.Notice)
	assertCart(t, items, res.Cart)
	assert.Equal(t, "BRL 499.70", res.Total.String())
}

func TestManager_CartIsACopy(t *testing.T) {
	sneaker := randomProduct(1)
	f := setup(t, nil, nil, []domain.LineItem{sneaker.LineItem(1)})

	snapshot := f.manager.Cart()
	snapshot.Items[0].Amount = 42

	assertCart(t, []domain.LineItem{sneaker.LineItem(1)}, f.manager.Cart())
}

func TestNew_Errors(t *testing.T) {
	svc := newMockStockService()
	notifier := &recordingNotifier{}

	_, err := New(t.Context(), nil, svc, notifier)
	require.EqualError(t, err, "repo is nil")

	_, err = New(t.Context(), &mockRepository{}, nil, notifier)
	require.EqualError(t, err, "stock is nil")

	_, err = New(t.Context(), &mockRepository{}, svc, nil)
	require.EqualError(t, err, "notifier is nil")

	_, err = New(t.Context(), &mockRepository{loadErr: errBoom}, svc, notifier)
	require.EqualError(t, err, "repo.Load: boom")
}

func nilIfEmpty(kinds []domain.NoticeKind) []domain.NoticeKind {
	if len(kinds) == 0 {
		return nil
	}
	return kinds
}
