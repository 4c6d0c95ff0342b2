package order_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"flora-commerce/internal/errs"
	"flora-commerce/internal/logger"
	"flora-commerce/internal/models"
	"flora-commerce/internal/order"
	orderdb "flora-commerce/internal/order/db"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type stubUserStore struct {
	user *models.User
}

func (s *stubUserStore) GetUser(id int64) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, errs.ErrNotFound
	}
	return s.user, nil
}

type fakePublisher struct {
	published []string
}

func (f *fakePublisher) Publish(topic string, key string, value []byte) error {
	f.published = append(f.published, topic)
	return nil
}

type fakeScheduler struct {
	tracking string
	err      error
	calls    int
}

func (f *fakeScheduler) ScheduleForOrder(o *models.Order, u *models.User) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.tracking, nil
}

type fixture struct {
	bun         *bun.DB
	service     *order.OrderService
	publisher   *fakePublisher
	scheduler   *fakeScheduler
	deadLetters *order.DeadLetterLog
	user        *models.User
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = bunDB.Close() })

	err = bunDB.ResetModel(context.Background(),
		(*models.User)(nil), (*models.Product)(nil),
		(*models.Cart)(nil), (*models.CartItem)(nil),
		(*models.Order)(nil), (*models.OrderItem)(nil))
	require.NoError(t, err)

	user := &models.User{ID: 42, Username: "daisy", Email: "daisy@example.com", Role: models.RoleCustomer}
	_, err = bunDB.NewInsert().Model(user).Exec(context.Background())
	require.NoError(t, err)

	log := logger.NewLogger()
	t.Cleanup(log.Close)

	publisher := &fakePublisher{}
	scheduler := &fakeScheduler{tracking: "TRK-20260831-123456"}
	deadLetters := order.NewDeadLetterLog(log)

	service := order.NewOrderService(bunDB, &orderdb.DB{Bun: bunDB},
		&stubUserStore{user: user}, publisher, scheduler, deadLetters, log)

	return &fixture{
		bun:         bunDB,
		service:     service,
		publisher:   publisher,
		scheduler:   scheduler,
		deadLetters: deadLetters,
		user:        user,
	}
}

func (f *fixture) seedProduct(t *testing.T, name string, price float64, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:          name,
		Price:         decimal.NewFromFloat(price),
		StockQuantity: stock,
		Active:        true,
	}
	_, err := f.bun.NewInsert().Model(product).Exec(context.Background())
	require.NoError(t, err)
	return product
}

func (f *fixture) seedCart(t *testing.T, lines map[*models.Product]int) *models.Cart {
	t.Helper()

	cart := &models.Cart{UserID: f.user.ID}
	_, err := f.bun.NewInsert().Model(cart).Exec(context.Background())
	require.NoError(t, err)

	for product, qty := range lines {
		item := &models.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: qty}
		_, err := f.bun.NewInsert().Model(item).Exec(context.Background())
		require.NoError(t, err)
	}
	return cart
}

func (f *fixture) productStock(t *testing.T, productID int64) int {
	t.Helper()

	var stock int
	err := f.bun.NewSelect().
		Model((*models.Product)(nil)).
		Column("stock_quantity").
		Where("id = ?", productID).
		Scan(context.Background(), &stock)
	require.NoError(t, err)
	return stock
}

func (f *fixture) cartLineCount(t *testing.T, cartID int64) int {
	t.Helper()

	count, err := f.bun.NewSelect().
		Model((*models.CartItem)(nil)).
		Where("cart_id = ?", cartID).
		Count(context.Background())
	require.NoError(t, err)
	return count
}

func TestCheckoutCashOnDelivery(t *testing.T) {
	f := setupFixture(t)
	roses := f.seedProduct(t, "Rose Bouquet", 10.00, 5)
	lilies := f.seedProduct(t, "Lily Stem", 5.00, 5)
	cart := f.seedCart(t, map[*models.Product]int{roses: 2, lilies: 1})

	created, err := f.service.Checkout(f.user.ID, models.OrderRequest{
		PaymentMethod:   "Cash on Delivery",
		ShippingAddress: "12 Petal Lane",
		ShippingCity:    "Springfield",
	})
	require.NoError(t, err)

	assert.True(t, created.TotalAmount.Equal(decimal.NewFromFloat(25.00)),
		"expected 25.00, got %s", created.TotalAmount)
	assert.Equal(t, models.OrderPending, created.Status)
	assert.Equal(t, models.PaymentPending, created.PaymentStatus)
	require.Len(t, created.Items, 2)

	priceByProduct := map[int64]decimal.Decimal{roses.ID: roses.Price, lilies.ID: lilies.Price}
	for _, item := range created.Items {
		want := priceByProduct[item.ProductID]
		assert.True(t, item.Price.Equal(want), "product %d: expected %s, got %s",
			item.ProductID, want, item.Price)
	}

	assert.Equal(t, 3, f.productStock(t, roses.ID))
	assert.Equal(t, 4, f.productStock(t, lilies.ID))
	assert.Equal(t, 0, f.cartLineCount(t, cart.ID))

	assert.Contains(t, f.publisher.published, order.TopicOrderCreated)
	assert.Equal(t, 1, f.scheduler.calls)
	assert.Empty(t, f.deadLetters.Entries())
}

func TestCheckoutCardIsPaidImmediately(t *testing.T) {
	f := setupFixture(t)
	roses := f.seedProduct(t, "Rose Bouquet", 10.00, 5)
	f.seedCart(t, map[*models.Product]int{roses: 1})

	created, err := f.service.Checkout(f.user.ID, models.OrderRequest{PaymentMethod: "Credit Card"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, created.PaymentStatus)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := setupFixture(t)
	f.seedCart(t, nil)

	_, err := f.service.Checkout(f.user.ID, models.OrderRequest{PaymentMethod: "Cash on Delivery"})
	assert.ErrorIs(t, err, errs.ErrEmptyCart)
	assert.Empty(t, f.publisher.published)
}

// A shortage on the second line must roll back the reservation already
// applied to the first line and leave the cart intact.
func TestCheckoutRollsBackOnShortage(t *testing.T) {
	f := setupFixture(t)
	roses := f.seedProduct(t, "Rose Bouquet", 10.00, 5)
	orchids := f.seedProduct(t, "Orchid Pot", 30.00, 1)
	cart := f.seedCart(t, map[*models.Product]int{roses: 2, orchids: 2})

	_, err := f.service.Checkout(f.user.ID, models.OrderRequest{PaymentMethod: "Cash on Delivery"})
	assert.ErrorIs(t, err, errs.ErrInsufficientStock)

	assert.Equal(t, 5, f.productStock(t, roses.ID))
	assert.Equal(t, 1, f.productStock(t, orchids.ID))
	assert.Equal(t, 2, f.cartLineCount(t, cart.ID))

	count, countErr := f.bun.NewSelect().Model((*models.Order)(nil)).Count(context.Background())
	require.NoError(t, countErr)
	assert.Zero(t, count)
	assert.Empty(t, f.publisher.published)
}

// Delivery scheduling is best effort: a scheduler failure lands on the
// dead-letter log and never fails the checkout.
func TestCheckoutSurvivesSchedulerFailure(t *testing.T) {
	f := setupFixture(t)
	f.scheduler.err = errors.New("delivery service unavailable")
	roses := f.seedProduct(t, "Rose Bouquet", 10.00, 5)
	f.seedCart(t, map[*models.Product]int{roses: 1})

	created, err := f.service.Checkout(f.user.ID, models.OrderRequest{PaymentMethod: "Cash on Delivery"})
	require.NoError(t, err)

	entries := f.deadLetters.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, created.OrderNumber, entries[0].OrderNumber)
	assert.Contains(t, entries[0].Reason, "delivery service unavailable")
}

// Order items are price snapshots: a later catalog price change must not
// affect a placed order.
func TestOrderItemPriceIsImmutable(t *testing.T) {
	f := setupFixture(t)
	roses := f.seedProduct(t, "Rose Bouquet", 10.00, 5)
	f.seedCart(t, map[*models.Product]int{roses: 1})

	created, err := f.service.Checkout(f.user.ID, models.OrderRequest{PaymentMethod: "Cash on Delivery"})
	require.NoError(t, err)

	_, err = f.bun.NewUpdate().
		Model((*models.Product)(nil)).
		Set("price = ?", decimal.NewFromFloat(99.99)).
		Where("id = ?", roses.ID).
		Exec(context.Background())
	require.NoError(t, err)

	reloaded, err := f.service.GetOrder(created.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	assert.True(t, reloaded.Items[0].Price.Equal(decimal.NewFromFloat(10.00)))
	assert.True(t, reloaded.TotalAmount.Equal(decimal.NewFromFloat(10.00)))
}

func TestCancelOrderReleasesStock(t *testing.T) {
	f := setupFixture(t)
	roses := f.seedProduct(t, "Rose Bouquet", 10.00, 5)
	f.seedCart(t, map[*models.Product]int{roses: 2})

	created, err := f.service.Checkout(f.user.ID, models.OrderRequest{PaymentMethod: "Cash on Delivery"})
	require.NoError(t, err)
	assert.Equal(t, 3, f.productStock(t, roses.ID))

	cancelled, err := f.service.CancelOrder(created.ID, f.user.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)
	assert.Equal(t, 5, f.productStock(t, roses.ID))
	assert.Contains(t, f.publisher.published, order.TopicOrderCancelled)
}

func TestCancelOrderTwiceConflicts(t *testing.T) {
	f := setupFixture(t)
	roses := f.seedProduct(t, "Rose Bouquet", 10.00, 5)
	f.seedCart(t, map[*models.Product]int{roses: 1})

	created, err := f.service.Checkout(f.user.ID, models.OrderRequest{PaymentMethod: "Cash on Delivery"})
	require.NoError(t, err)

	_, err = f.service.CancelOrder(created.ID, f.user.ID, false)
	require.NoError(t, err)

	_, err = f.service.CancelOrder(created.ID, f.user.ID, false)
	assert.ErrorIs(t, err, errs.ErrConflict)
	assert.Equal(t, 5, f.productStock(t, roses.ID))
}

func TestCancelOrderOtherUser(t *testing.T) {
	f := setupFixture(t)
	roses := f.seedProduct(t, "Rose Bouquet", 10.00, 5)
	f.seedCart(t, map[*models.Product]int{roses: 1})

	created, err := f.service.Checkout(f.user.ID, models.OrderRequest{PaymentMethod: "Cash on Delivery"})
	require.NoError(t, err)

	_, err = f.service.CancelOrder(created.ID, 777, false)
	assert.ErrorIs(t, err, errs.ErrUnauthorized)

	// Admins may cancel on behalf of the customer.
	_, err = f.service.CancelOrder(created.ID, 777, true)
	assert.NoError(t, err)
}

func TestUpdateStatusPersists(t *testing.T) {
	f := setupFixture(t)
	roses := f.seedProduct(t, "Rose Bouquet", 10.00, 5)
	f.seedCart(t, map[*models.Product]int{roses: 1})

	created, err := f.service.Checkout(f.user.ID, models.OrderRequest{PaymentMethod: "Cash on Delivery"})
	require.NoError(t, err)

	updated, err := f.service.UpdateStatus(created.ID, models.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, updated.Status)

	reloaded, err := f.service.GetOrder(created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, reloaded.Status)
}
