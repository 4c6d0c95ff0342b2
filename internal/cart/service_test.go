package cart_test

import (
	"testing"

	"flora-commerce/internal/cart"
	"flora-commerce/internal/errs"
	"flora-commerce/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock implementations
type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) GetOrCreateCart(userID int64) (*models.Cart, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *MockDBLayer) GetItemByID(itemID int64) (*models.CartItem, error) {
	args := m.Called(itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartItem), args.Error(1)
}

func (m *MockDBLayer) GetItemByCartAndProduct(cartID, productID int64) (*models.CartItem, error) {
	args := m.Called(cartID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartItem), args.Error(1)
}

func (m *MockDBLayer) InsertItem(item *models.CartItem) error {
	args := m.Called(item)
	return args.Error(0)
}

func (m *MockDBLayer) UpdateItemQuantity(itemID int64, quantity int) error {
	args := m.Called(itemID, quantity)
	return args.Error(0)
}

func (m *MockDBLayer) DeleteItem(itemID int64) error {
	args := m.Called(itemID)
	return args.Error(0)
}

func (m *MockDBLayer) DeleteItemsByCart(cartID int64) error {
	args := m.Called(cartID)
	return args.Error(0)
}

type MockProductStore struct {
	mock.Mock
}

func (m *MockProductStore) GetProduct(id int64) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func tulipProduct() *models.Product {
	return &models.Product{
		ID:            7,
		Name:          "Tulip Bundle",
		Price:         decimal.NewFromFloat(5.00),
		StockQuantity: 10,
		Active:        true,
	}
}

func TestAddItemNewLine(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockProducts := new(MockProductStore)
	service := cart.NewCartService(mockDB, mockProducts)

	userCart := &models.Cart{ID: 1, UserID: 42}
	product := tulipProduct()

	mockDB.On("GetOrCreateCart", int64(42)).Return(userCart, nil)
	mockProducts.On("GetProduct", int64(7)).Return(product, nil)
	mockDB.On("GetItemByCartAndProduct", int64(1), int64(7)).Return(nil, nil)
	mockDB.On("InsertItem", mock.MatchedBy(func(item *models.CartItem) bool {
		return item.CartID == 1 && item.ProductID == 7 && item.Quantity == 3
	})).Return(nil)

	_, err := service.AddItem(42, models.CartItemRequest{ProductID: 7, Quantity: 3})
	require.NoError(t, err)

	mockDB.AssertExpectations(t)
	mockProducts.AssertExpectations(t)
}

func TestAddItemMergesExistingLine(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockProducts := new(MockProductStore)
	service := cart.NewCartService(mockDB, mockProducts)

	userCart := &models.Cart{ID: 1, UserID: 42}
	product := tulipProduct()
	existing := &models.CartItem{ID: 5, CartID: 1, ProductID: 7, Quantity: 2}

	mockDB.On("GetOrCreateCart", int64(42)).Return(userCart, nil)
	mockProducts.On("GetProduct", int64(7)).Return(product, nil)
	mockDB.On("GetItemByCartAndProduct", int64(1), int64(7)).Return(existing, nil)
	mockDB.On("UpdateItemQuantity", int64(5), 5).Return(nil)

	_, err := service.AddItem(42, models.CartItemRequest{ProductID: 7, Quantity: 3})
	require.NoError(t, err)

	mockDB.AssertNotCalled(t, "InsertItem", mock.Anything)
	mockDB.AssertExpectations(t)
}

func TestAddItemInsufficientStock(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockProducts := new(MockProductStore)
	service := cart.NewCartService(mockDB, mockProducts)

	userCart := &models.Cart{ID: 1, UserID: 42}
	product := tulipProduct()
	product.StockQuantity = 2

	mockDB.On("GetOrCreateCart", int64(42)).Return(userCart, nil)
	mockProducts.On("GetProduct", int64(7)).Return(product, nil)

	_, err := service.AddItem(42, models.CartItemRequest{ProductID: 7, Quantity: 3})
	assert.ErrorIs(t, err, errs.ErrInsufficientStock)

	mockDB.AssertNotCalled(t, "InsertItem", mock.Anything)
	mockDB.AssertNotCalled(t, "UpdateItemQuantity", mock.Anything, mock.Anything)
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	service := cart.NewCartService(new(MockDBLayer), new(MockProductStore))

	_, err := service.AddItem(42, models.CartItemRequest{ProductID: 7, Quantity: 0})
	assert.Error(t, err)
}

func TestUpdateItemZeroQuantityDeletesLine(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockProducts := new(MockProductStore)
	service := cart.NewCartService(mockDB, mockProducts)

	userCart := &models.Cart{ID: 1, UserID: 42}
	item := &models.CartItem{ID: 5, CartID: 1, ProductID: 7, Quantity: 2, Product: tulipProduct()}

	mockDB.On("GetOrCreateCart", int64(42)).Return(userCart, nil)
	mockDB.On("GetItemByID", int64(5)).Return(item, nil)
	mockDB.On("DeleteItem", int64(5)).Return(nil)

	_, err := service.UpdateItem(42, 5, 0)
	require.NoError(t, err)

	mockDB.AssertCalled(t, "DeleteItem", int64(5))
}

func TestUpdateItemBeyondStockLeavesLine(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockProducts := new(MockProductStore)
	service := cart.NewCartService(mockDB, mockProducts)

	userCart := &models.Cart{ID: 1, UserID: 42}
	item := &models.CartItem{ID: 5, CartID: 1, ProductID: 7, Quantity: 2, Product: tulipProduct()}

	mockDB.On("GetOrCreateCart", int64(42)).Return(userCart, nil)
	mockDB.On("GetItemByID", int64(5)).Return(item, nil)

	_, err := service.UpdateItem(42, 5, 11)
	assert.ErrorIs(t, err, errs.ErrInsufficientStock)

	mockDB.AssertNotCalled(t, "UpdateItemQuantity", mock.Anything, mock.Anything)
}

func TestUpdateItemOtherUsersLine(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockProducts := new(MockProductStore)
	service := cart.NewCartService(mockDB, mockProducts)

	userCart := &models.Cart{ID: 1, UserID: 42}
	foreignItem := &models.CartItem{ID: 5, CartID: 2, ProductID: 7, Quantity: 2}

	mockDB.On("GetOrCreateCart", int64(42)).Return(userCart, nil)
	mockDB.On("GetItemByID", int64(5)).Return(foreignItem, nil)

	_, err := service.UpdateItem(42, 5, 4)
	assert.ErrorIs(t, err, errs.ErrUnauthorized)

	mockDB.AssertNotCalled(t, "UpdateItemQuantity", mock.Anything, mock.Anything)
}

func TestClearRemovesAllLines(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockProducts := new(MockProductStore)
	service := cart.NewCartService(mockDB, mockProducts)

	userCart := &models.Cart{ID: 1, UserID: 42}

	mockDB.On("GetOrCreateCart", int64(42)).Return(userCart, nil)
	mockDB.On("DeleteItemsByCart", int64(1)).Return(nil)

	response, err := service.Clear(42)
	require.NoError(t, err)
	assert.Equal(t, 0, response.TotalItems)
	assert.True(t, response.TotalAmount.IsZero())
}

func TestSnapshotTotals(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockProducts := new(MockProductStore)
	service := cart.NewCartService(mockDB, mockProducts)

	product := tulipProduct()
	userCart := &models.Cart{
		ID:     1,
		UserID: 42,
		Items: []*models.CartItem{
			{ID: 5, CartID: 1, ProductID: 7, Quantity: 3, Product: product},
		},
	}

	mockDB.On("GetOrCreateCart", int64(42)).Return(userCart, nil)

	response, err := service.GetCart(42)
	require.NoError(t, err)
	assert.Equal(t, 1, response.TotalItems)
	assert.True(t, response.TotalAmount.Equal(decimal.NewFromFloat(15.00)),
		"expected 15.00, got %s", response.TotalAmount)
	assert.True(t, response.Items[0].Subtotal.Equal(decimal.NewFromFloat(15.00)))
}
