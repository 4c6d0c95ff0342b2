package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

// CanTransitionTo is the single policy point for order status changes. The
// current rule set allows any transition; callers must still go through here
// so the policy can be tightened without touching them.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return next.Valid()
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// PaymentStatusForMethod resolves the initial payment status from the payment
// method label. There is no gateway call; cash on delivery stays PENDING,
// every other method is treated as settled.
func PaymentStatusForMethod(method string) PaymentStatus {
	if strings.EqualFold(method, "Cash on Delivery") {
		return PaymentPending
	}
	return PaymentPaid
}

type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID              int64           `bun:"id,pk,autoincrement" json:"id"`
	OrderNumber     string          `bun:"order_number,unique,notnull" json:"order_number"`
	UserID          int64           `bun:"user_id,notnull" json:"user_id"`
	TotalAmount     decimal.Decimal `bun:"total_amount,notnull" json:"total_amount"`
	Status          OrderStatus     `bun:"status,notnull" json:"status"`
	PaymentStatus   PaymentStatus   `bun:"payment_status,notnull" json:"payment_status"`
	PaymentMethod   string          `bun:"payment_method" json:"payment_method"`
	ShippingAddress string          `bun:"shipping_address" json:"shipping_address"`
	ShippingCity    string          `bun:"shipping_city" json:"shipping_city"`
	ShippingState   string          `bun:"shipping_state" json:"shipping_state"`
	ShippingZipCode string          `bun:"shipping_zip_code" json:"shipping_zip_code"`
	ShippingCountry string          `bun:"shipping_country" json:"shipping_country"`
	CustomerPhone   string          `bun:"customer_phone" json:"customer_phone"`
	CustomerEmail   string          `bun:"customer_email" json:"customer_email"`
	Notes           string          `bun:"notes" json:"notes"`
	CreatedAt       time.Time       `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time       `bun:"updated_at,nullzero" json:"updated_at"`

	Items []*OrderItem `bun:"rel:has-many,join:id=order_id" json:"items"`
}

// OrderItem is a snapshot: Price is the product's catalog price at checkout
// time and never changes afterwards.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items"`

	ID        int64           `bun:"id,pk,autoincrement" json:"id"`
	OrderID   int64           `bun:"order_id,notnull" json:"order_id"`
	ProductID int64           `bun:"product_id,notnull" json:"product_id"`
	Quantity  int             `bun:"quantity,notnull" json:"quantity"`
	Price     decimal.Decimal `bun:"price,notnull" json:"price"`
	Subtotal  decimal.Decimal `bun:"subtotal,notnull" json:"subtotal"`
}

type OrderRequest struct {
	ShippingAddress string `json:"shippingAddress"`
	ShippingCity    string `json:"shippingCity"`
	ShippingState   string `json:"shippingState"`
	ShippingZipCode string `json:"shippingZipCode"`
	ShippingCountry string `json:"shippingCountry"`
	CustomerPhone   string `json:"customerPhone"`
	CustomerEmail   string `json:"customerEmail"`
	PaymentMethod   string `json:"paymentMethod"`
	Notes           string `json:"notes"`
}
