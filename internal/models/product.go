package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type Product struct {
	bun.BaseModel `bun:"table:products"`

	ID            int64           `bun:"id,pk,autoincrement" json:"id"`
	Name          string          `bun:"name,notnull" json:"name"`
	Description   string          `bun:"description" json:"description"`
	Price         decimal.Decimal `bun:"price,notnull" json:"price"`
	StockQuantity int             `bun:"stock_quantity,notnull,default:0" json:"stock_quantity"`
	ImageURL      string          `bun:"image_url" json:"image_url"`
	SKU           string          `bun:"sku" json:"sku"`
	Active        bool            `bun:"active,notnull,default:true" json:"active"`
	Featured      bool            `bun:"featured,notnull,default:false" json:"featured"`
	Discount      decimal.Decimal `bun:"discount,notnull,default:0" json:"discount"`
	CreatedAt     time.Time       `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time       `bun:"updated_at,nullzero" json:"updated_at"`
}
