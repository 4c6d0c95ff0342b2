package cart

import (
	"fmt"

	"flora-commerce/internal/errs"
	"flora-commerce/internal/models"

	"github.com/shopspring/decimal"
)

type DBLayer interface {
	GetOrCreateCart(userID int64) (*models.Cart, error)
	GetItemByID(itemID int64) (*models.CartItem, error)
	GetItemByCartAndProduct(cartID, productID int64) (*models.CartItem, error)
	InsertItem(item *models.CartItem) error
	UpdateItemQuantity(itemID int64, quantity int) error
	DeleteItem(itemID int64) error
	DeleteItemsByCart(cartID int64) error
}

type ProductStore interface {
	GetProduct(id int64) (*models.Product, error)
}

type CartService struct {
	DB       DBLayer
	Products ProductStore
}

func NewCartService(db DBLayer, products ProductStore) *CartService {
	return &CartService{DB: db, Products: products}
}

// GetCart returns the user's cart snapshot, creating the cart on first access.
func (s *CartService) GetCart(userID int64) (*models.CartResponse, error) {
	cart, err := s.DB.GetOrCreateCart(userID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(cart.ID, userID)
}

// AddItem puts quantity units of a product into the cart. A line already
// holding the product is incremented instead of duplicated. Stock is only
// validated here, never reserved; reservation happens at checkout.
func (s *CartService) AddItem(userID int64, req models.CartItemRequest) (*models.CartResponse, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", req.Quantity)
	}

	cart, err := s.DB.GetOrCreateCart(userID)
	if err != nil {
		return nil, err
	}

	product, err := s.Products.GetProduct(req.ProductID)
	if err != nil {
		return nil, err
	}

	if product.StockQuantity < req.Quantity {
		return nil, fmt.Errorf("product %s: %w", product.Name, errs.ErrInsufficientStock)
	}

	existing, err := s.DB.GetItemByCartAndProduct(cart.ID, product.ID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if err := s.DB.UpdateItemQuantity(existing.ID, existing.Quantity+req.Quantity); err != nil {
			return nil, err
		}
	} else {
		item := &models.CartItem{
			CartID:    cart.ID,
			ProductID: product.ID,
			Quantity:  req.Quantity,
		}
		if err := s.DB.InsertItem(item); err != nil {
			return nil, err
		}
	}

	return s.snapshot(cart.ID, userID)
}

// UpdateItem sets a line's quantity. A quantity of zero or less removes the
// line, matching the storefront's "set to 0 to delete" behavior.
func (s *CartService) UpdateItem(userID, itemID int64, quantity int) (*models.CartResponse, error) {
	cart, item, err := s.ownedItem(userID, itemID)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		if err := s.DB.DeleteItem(item.ID); err != nil {
			return nil, err
		}
		return s.snapshot(cart.ID, userID)
	}

	if item.Product != nil && item.Product.StockQuantity < quantity {
		return nil, fmt.Errorf("product %s: %w", item.Product.Name, errs.ErrInsufficientStock)
	}

	if err := s.DB.UpdateItemQuantity(item.ID, quantity); err != nil {
		return nil, err
	}

	return s.snapshot(cart.ID, userID)
}

func (s *CartService) RemoveItem(userID, itemID int64) (*models.CartResponse, error) {
	cart, item, err := s.ownedItem(userID, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.DB.DeleteItem(item.ID); err != nil {
		return nil, err
	}

	return s.snapshot(cart.ID, userID)
}

// Clear removes every line; the cart row itself persists.
func (s *CartService) Clear(userID int64) (*models.CartResponse, error) {
	cart, err := s.DB.GetOrCreateCart(userID)
	if err != nil {
		return nil, err
	}

	if err := s.DB.DeleteItemsByCart(cart.ID); err != nil {
		return nil, err
	}

	return s.snapshot(cart.ID, userID)
}

func (s *CartService) ownedItem(userID, itemID int64) (*models.Cart, *models.CartItem, error) {
	cart, err := s.DB.GetOrCreateCart(userID)
	if err != nil {
		return nil, nil, err
	}

	item, err := s.DB.GetItemByID(itemID)
	if err != nil {
		return nil, nil, err
	}

	if item.CartID != cart.ID {
		return nil, nil, fmt.Errorf("cart item %d: %w", itemID, errs.ErrUnauthorized)
	}

	return cart, item, nil
}

// snapshot reloads the cart and recomputes totals so the response always
// reflects post-mutation state.
func (s *CartService) snapshot(cartID, userID int64) (*models.CartResponse, error) {
	cart, err := s.DB.GetOrCreateCart(userID)
	if err != nil {
		return nil, err
	}

	response := &models.CartResponse{
		ID:    cartID,
		Items: make([]models.CartItemResponse, 0, len(cart.Items)),
	}

	total := decimal.Zero
	for _, item := range cart.Items {
		line := models.CartItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
		if item.Product != nil {
			line.ProductName = item.Product.Name
			line.ProductImage = item.Product.ImageURL
			line.ProductPrice = item.Product.Price
			line.Subtotal = item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		}
		total = total.Add(line.Subtotal)
		response.Items = append(response.Items, line)
	}

	response.TotalAmount = total
	response.TotalItems = len(response.Items)
	return response, nil
}
