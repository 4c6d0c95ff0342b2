package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type Cart struct {
	bun.BaseModel `bun:"table:carts"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID    int64     `bun:"user_id,unique,notnull" json:"user_id"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updated_at"`

	Items []*CartItem `bun:"rel:has-many,join:id=cart_id" json:"items"`
}

// CartItem holds a single (cart, product) line. At most one line exists per
// product in a cart; re-adding merges quantities instead of duplicating.
type CartItem struct {
	bun.BaseModel `bun:"table:cart_items"`

	ID        int64 `bun:"id,pk,autoincrement" json:"id"`
	CartID    int64 `bun:"cart_id,notnull,unique:cart_items_cart_product" json:"cart_id"`
	ProductID int64 `bun:"product_id,notnull,unique:cart_items_cart_product" json:"product_id"`
	Quantity  int   `bun:"quantity,notnull" json:"quantity"`

	Product *Product `bun:"rel:belongs-to,join:product_id=id" json:"product,omitempty"`
}

type CartItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type CartItemResponse struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"productId"`
	ProductName  string          `json:"productName"`
	ProductImage string          `json:"productImage"`
	ProductPrice decimal.Decimal `json:"productPrice"`
	Quantity     int             `json:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

type CartResponse struct {
	ID          int64              `json:"id"`
	Items       []CartItemResponse `json:"items"`
	TotalAmount decimal.Decimal    `json:"totalAmount"`
	TotalItems  int                `json:"totalItems"`
}
