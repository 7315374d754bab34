package service_test

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/linemk/micro-shop/internal/domain/models"
	"github.com/linemk/micro-shop/internal/events"
	"github.com/linemk/micro-shop/internal/lib/httperr"
	"github.com/linemk/micro-shop/internal/service"
	"github.com/linemk/micro-shop/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*models.Order // ключ — id заказа
}

var _ storage.OrderStorage = (*fakeOrderRepo)(nil)

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*models.Order)}
}

func (f *fakeOrderRepo) CreateOrder(ctx context.Context, order *models.Order) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.NewString()
	stored := *order
	stored.ID = id
	f.orders[id] = &stored
	return id, nil
}

func (f *fakeOrderRepo) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return nil, storage.ErrOrderNotFound
	}
	return order, nil
}

func (f *fakeOrderRepo) GetAllOrders(ctx context.Context) ([]*models.Order, error) {
	out := make([]*models.Order, 0, len(f.orders))
	for _, o := range f.orders {
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeOrderRepo) GetOrdersByUserID(ctx context.Context, userID string) ([]*models.Order, error) {
	out := []*models.Order{}
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) UpdateOrder(ctx context.Context, order *models.Order) error {
	if _, ok := f.orders[order.ID]; !ok {
		return storage.ErrOrderNotFound
	}
	f.orders[order.ID] = order
	return nil
}

func (f *fakeOrderRepo) DeleteOrder(ctx context.Context, id string) error {
	if _, ok := f.orders[id]; !ok {
		return storage.ErrOrderNotFound
	}
	delete(f.orders, id)
	return nil
}

func (f *fakeOrderRepo) DeleteAllOrders(ctx context.Context) (int64, error) {
	n := int64(len(f.orders))
	f.orders = make(map[string]*models.Order)
	return n, nil
}

type fakeUserGetter struct {
	mu    sync.Mutex
	users map[string]*models.User // ключ — id
	calls int
}

var _ service.UserGetter = (*fakeUserGetter)(nil)

func (f *fakeUserGetter) GetByID(ctx context.Context, id, token string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	user, ok := f.users[id]
	if !ok {
		return nil, httperr.NotFoundf("user with id %s not found", id)
	}
	return user, nil
}

// fakeCatalog повторяет контракт каталога: списание условное и атомарное,
// остаток никогда не уходит в минус
type fakeCatalog struct {
	mu           sync.Mutex
	products     map[string]*models.Product // ключ — id
	getCalls     []string
	adjustCalls  []string
	adjustDeltas []int
	adjustErr    error // если задан, каждое списание падает с этой ошибкой
}

var _ service.ProductCatalog = (*fakeCatalog)(nil)

func (f *fakeCatalog) GetByID(ctx context.Context, id, token string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls = append(f.getCalls, id)
	product, ok := f.products[id]
	if !ok {
		return nil, httperr.NotFoundf("product with id %s not found", id)
	}
	return product, nil
}

func (f *fakeCatalog) AdjustStock(ctx context.Context, id string, delta int, token string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adjustCalls = append(f.adjustCalls, id)
	f.adjustDeltas = append(f.adjustDeltas, delta)
	if f.adjustErr != nil {
		return nil, f.adjustErr
	}
	product, ok := f.products[id]
	if !ok || product.Stock+delta < 0 {
		return nil, httperr.BadRequest("not enough stock or product not found")
	}
	product.Stock += delta
	return product, nil
}

func (f *fakeCatalog) stockOf(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[id].Stock
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.StockReconciliation
}

var _ service.ReconciliationPublisher = (*fakePublisher)(nil)

func (f *fakePublisher) Publish(ctx context.Context, event events.StockReconciliation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func testAddress() models.Address {
	return models.Address{
		FullName: "Ivan Petrov",
		Street:   "12 Main St",
		Country:  "IL",
		ZipCode:  "12345",
	}
}

func newOrderFixtures() (*fakeOrderRepo, *fakeUserGetter, *fakeCatalog, *fakePublisher) {
	buyerID := uuid.NewString()
	users := &fakeUserGetter{users: map[string]*models.User{
		buyerID: {ID: buyerID, Email: "buyer@example.com", Name: "Buyer", Role: models.RoleUser},
	}}

	shirtID := uuid.NewString()
	mugID := uuid.NewString()
	catalog := &fakeCatalog{products: map[string]*models.Product{
		shirtID: {ID: shirtID, SKU: "TSHIRT-1", Name: "T-Shirt", Price: 25.50, Currency: models.CurrencyUSD, Stock: 10, IsActive: true},
		mugID:   {ID: mugID, SKU: "MUG-1", Name: "Mug", Price: 10, Currency: models.CurrencyUSD, Stock: 5, IsActive: true},
	}}

	return newFakeOrderRepo(), users, catalog, &fakePublisher{}
}

func buyerAndProducts(users *fakeUserGetter, catalog *fakeCatalog) (string, []string) {
	var buyerID string
	for id := range users.users {
		buyerID = id
	}
	productIDs := make([]string, 0, len(catalog.products))
	for id := range catalog.products {
		productIDs = append(productIDs, id)
	}
	return buyerID, productIDs
}

func TestOrderService_PlaceOrder_Success(t *testing.T) {
	orderRepo, users, catalog, publisher := newOrderFixtures()
	buyerID, productIDs := buyerAndProducts(users, catalog)

	svc := service.NewOrderService(testLogger(), orderRepo, users, catalog, publisher)

	input := &service.CreateOrderInput{
		UserID: buyerID,
		Items: []service.CreateOrderItemInput{
			{ProductID: productIDs[0], Quantity: 2},
			{ProductID: productIDs[1], Quantity: 1},
		},
		ShippingAddress: testAddress(),
	}

	order, err := svc.PlaceOrder(context.Background(), input, "token")
	require.NoError(t, err, "PlaceOrder should succeed")
	require.NotNil(t, order)

	assert.Equal(t, buyerID, order.UserID)
	assert.Equal(t, models.StatusPending, order.Status, "new orders start as pending")
	assert.Len(t, order.Items, 2)

	// сумма считается из цен каталога
	wantSubtotal := catalog.products[productIDs[0]].Price*2 + catalog.products[productIDs[1]].Price
	assert.Equal(t, wantSubtotal, order.Subtotal)
	assert.Equal(t, order.Subtotal+order.ShippingCost, order.Total, "total must equal subtotal plus shipping")

	// остатки списаны после записи заказа
	assert.Len(t, catalog.adjustCalls, 2)
	for _, delta := range catalog.adjustDeltas {
		assert.Negative(t, delta, "stock adjustments must decrement")
	}
	assert.Empty(t, publisher.events, "no reconciliation events on clean run")
}

func TestOrderService_PlaceOrder_EmptyCart(t *testing.T) {
	orderRepo, users, catalog, publisher := newOrderFixtures()
	buyerID, _ := buyerAndProducts(users, catalog)

	svc := service.NewOrderService(testLogger(), orderRepo, users, catalog, publisher)

	input := &service.CreateOrderInput{
		UserID:          buyerID,
		Items:           []service.CreateOrderItemInput{},
		ShippingAddress: testAddress(),
	}

	_, err := svc.PlaceOrder(context.Background(), input, "token")
	require.Error(t, err)
	assert.True(t, httperr.IsKind(err, httperr.KindBadRequest))

	// пустая корзина отсекается до любых удалённых вызовов
	assert.Zero(t, users.calls, "buyer must not be looked up for an empty cart")
	assert.Empty(t, catalog.getCalls, "catalog must not be queried for an empty cart")
	assert.Empty(t, orderRepo.orders, "nothing must be persisted")
}

func TestOrderService_PlaceOrder_UnknownBuyer(t *testing.T) {
	orderRepo, users, catalog, publisher := newOrderFixtures()
	_, productIDs := buyerAndProducts(users, catalog)

	svc := service.NewOrderService(testLogger(), orderRepo, users, catalog, publisher)

	input := &service.CreateOrderInput{
		UserID:          uuid.NewString(),
		Items:           []service.CreateOrderItemInput{{ProductID: productIDs[0], Quantity: 1}},
		ShippingAddress: testAddress(),
	}

	_, err := svc.PlaceOrder(context.Background(), input, "token")
	require.Error(t, err)
	assert.True(t, httperr.IsKind(err, httperr.KindNotFound))
	assert.Empty(t, catalog.getCalls, "catalog must not be queried when the buyer is unknown")
	assert.Empty(t, orderRepo.orders)
}

func TestOrderService_PlaceOrder_ClientPriceIgnored(t *testing.T) {
	orderRepo, users, catalog, publisher := newOrderFixtures()
	buyerID, productIDs := buyerAndProducts(users, catalog)

	svc := service.NewOrderService(testLogger(), orderRepo, users, catalog, publisher)

	// во входной структуре нет поля цены: источником цен служит каталог
	input := &service.CreateOrderInput{
		UserID:          buyerID,
		Items:           []service.CreateOrderItemInput{{ProductID: productIDs[0], Quantity: 3}},
		ShippingAddress: testAddress(),
	}

	order, err := svc.PlaceOrder(context.Background(), input, "token")
	require.NoError(t, err)
	assert.Equal(t, catalog.products[productIDs[0]].Price, order.Items[0].UnitPrice)
	assert.Equal(t, catalog.products[productIDs[0]].Price*3, order.Subtotal)
}

func TestOrderService_PlaceOrder_InactiveProduct(t *testing.T) {
	orderRepo, users, catalog, publisher := newOrderFixtures()
	buyerID, productIDs := buyerAndProducts(users, catalog)

	catalog.products[productIDs[0]].IsActive = false

	svc := service.NewOrderService(testLogger(), orderRepo, users, catalog, publisher)

	input := &service.CreateOrderInput{
		UserID: buyerID,
		Items: []service.CreateOrderItemInput{
			{ProductID: productIDs[0], Quantity: 1},
			{ProductID: productIDs[1], Quantity: 1},
		},
		ShippingAddress: testAddress(),
	}

	_, err := svc.PlaceOrder(context.Background(), input, "token")
	require.Error(t, err)
	assert.True(t, httperr.IsKind(err, httperr.KindBadRequest))
	assert.Contains(t, err.Error(), "inactive")

	// неактивный товар прерывает заказ без каких-либо следов
	assert.Empty(t, orderRepo.orders, "aborted order must leave nothing behind")
	assert.Empty(t, catalog.adjustCalls, "aborted order must not touch stock")
}

func TestOrderService_PlaceOrder_StockFailureKeepsOrder(t *testing.T) {
	orderRepo, users, catalog, publisher := newOrderFixtures()
	buyerID, productIDs := buyerAndProducts(users, catalog)

	// списание остатков падает уже после записи заказа
	catalog.adjustErr = httperr.BadRequest("not enough stock or product not found")

	svc := service.NewOrderService(testLogger(), orderRepo, users, catalog, publisher)

	input := &service.CreateOrderInput{
		UserID:          buyerID,
		Items:           []service.CreateOrderItemInput{{ProductID: productIDs[0], Quantity: 2}},
		ShippingAddress: testAddress(),
	}

	_, err := svc.PlaceOrder(context.Background(), input, "token")

	// ошибка каталога доходит до вызывающего, но заказ уже записан
	require.Error(t, err)
	assert.True(t, httperr.IsKind(err, httperr.KindBadRequest))
	assert.Len(t, orderRepo.orders, 1, "order must stay persisted")

	// несработавшее списание уходит в очередь сверки
	require.Len(t, publisher.events, 1)
	assert.Equal(t, productIDs[0], publisher.events[0].ProductID)
	assert.Equal(t, 2, publisher.events[0].Quantity)
	assert.NotEmpty(t, publisher.events[0].OrderID)
}

func TestOrderService_PlaceOrder_NilPublisher(t *testing.T) {
	orderRepo, users, catalog, _ := newOrderFixtures()
	buyerID, productIDs := buyerAndProducts(users, catalog)

	catalog.adjustErr = httperr.BadRequest("not enough stock or product not found")

	// без брокера сбой списания просто логируется
	svc := service.NewOrderService(testLogger(), orderRepo, users, catalog, nil)

	input := &service.CreateOrderInput{
		UserID:          buyerID,
		Items:           []service.CreateOrderItemInput{{ProductID: productIDs[0], Quantity: 1}},
		ShippingAddress: testAddress(),
	}

	_, err := svc.PlaceOrder(context.Background(), input, "token")
	require.Error(t, err)
	assert.Len(t, orderRepo.orders, 1, "order must stay persisted")
}

func TestOrderService_PlaceOrder_ConcurrentStockConflict(t *testing.T) {
	orderRepo, users, catalog, publisher := newOrderFixtures()
	buyerID, productIDs := buyerAndProducts(users, catalog)

	// два покупателя одновременно берут по 6 штук при остатке 10:
	// условное списание в каталоге пропускает ровно одного
	catalog.mu.Lock()
	catalog.products[productIDs[0]].Stock = 10
	catalog.mu.Unlock()

	svc := service.NewOrderService(testLogger(), orderRepo, users, catalog, publisher)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			input := &service.CreateOrderInput{
				UserID:          buyerID,
				Items:           []service.CreateOrderItemInput{{ProductID: productIDs[0], Quantity: 6}},
				ShippingAddress: testAddress(),
			}
			_, err := svc.PlaceOrder(context.Background(), input, "token")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, conflicted int
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, httperr.IsKind(err, httperr.KindBadRequest))
		assert.Contains(t, err.Error(), "not enough stock")
		conflicted++
	}

	assert.Equal(t, 1, succeeded, "exactly one placement wins the stock")
	assert.Equal(t, 1, conflicted, "the loser gets the catalog's refusal")
	assert.Equal(t, 4, catalog.stockOf(productIDs[0]), "stock goes 10 -> 4, never negative")

	// проигравшее списание уходит в очередь сверки
	assert.Len(t, publisher.events, 1)
}

func TestOrderService_GetOrderByID_InvalidID(t *testing.T) {
	orderRepo, users, catalog, publisher := newOrderFixtures()
	svc := service.NewOrderService(testLogger(), orderRepo, users, catalog, publisher)

	_, err := svc.GetOrderByID(context.Background(), "not-a-uuid")
	require.Error(t, err)
	assert.True(t, httperr.IsKind(err, httperr.KindBadRequest), "malformed id is a client error, not a 404")
}

func TestOrderService_GetOrderByID_NotFound(t *testing.T) {
	orderRepo, users, catalog, publisher := newOrderFixtures()
	svc := service.NewOrderService(testLogger(), orderRepo, users, catalog, publisher)

	_, err := svc.GetOrderByID(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.True(t, httperr.IsKind(err, httperr.KindNotFound))
}

func TestOrderService_UpdateOrder_PartialPatch(t *testing.T) {
	orderRepo, users, catalog, publisher := newOrderFixtures()
	buyerID, productIDs := buyerAndProducts(users, catalog)

	svc := service.NewOrderService(testLogger(), orderRepo, users, catalog, publisher)

	order, err := svc.PlaceOrder(context.Background(), &service.CreateOrderInput{
		UserID:          buyerID,
		Items:           []service.CreateOrderItemInput{{ProductID: productIDs[0], Quantity: 1}},
		ShippingAddress: testAddress(),
	}, "token")
	require.NoError(t, err)

	paid := models.StatusPaid
	updated, err := svc.UpdateOrder(context.Background(), order.ID, &service.OrderPatch{Status: &paid})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, updated.Status)
	// незатронутые поля сохраняются
	assert.Equal(t, order.Total, updated.Total)
	assert.Equal(t, order.ShippingAddress, updated.ShippingAddress)
}

func TestOrderService_DeleteAllOrders(t *testing.T) {
	orderRepo, users, catalog, publisher := newOrderFixtures()
	buyerID, productIDs := buyerAndProducts(users, catalog)

	svc := service.NewOrderService(testLogger(), orderRepo, users, catalog, publisher)

	for i := 0; i < 3; i++ {
		_, err := svc.PlaceOrder(context.Background(), &service.CreateOrderInput{
			UserID:          buyerID,
			Items:           []service.CreateOrderItemInput{{ProductID: productIDs[0], Quantity: 1}},
			ShippingAddress: testAddress(),
		}, "token")
		require.NoError(t, err)
	}

	deleted, err := svc.DeleteAllOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	assert.Empty(t, orderRepo.orders)
}
