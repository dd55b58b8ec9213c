package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a listing owned by one seller (table products).
type Product struct {
	Base
	SellerID      uint            `gorm:"not null;index;uniqueIndex:idx_products_seller_name,priority:1"`
	Seller        *Seller         `gorm:"constraint:OnDelete:CASCADE"`
	CategoryID    *uint           `gorm:"index"`
	Category      *Category       `gorm:"constraint:OnDelete:SET NULL"`
	Name          string          `gorm:"size:200;not null;uniqueIndex:idx_products_seller_name,priority:2"`
	Description   string          `gorm:"type:text;not null"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null;index"`
	StockQuantity int             `gorm:"not null;default:0"`
	Image         *string         `gorm:"size:255"` // blob reference
	IsActive      bool            `gorm:"not null;index"`
	ViewsCount    int             `gorm:"not null;default:0"`
	SalesCount    int             `gorm:"not null;default:0"`
	Images        []ProductImage  `gorm:"constraint:OnDelete:CASCADE"`
}

// ProductImage is an extra picture of a product (table product_images).
type ProductImage struct {
	ID        uint      `gorm:"primaryKey"`
	ProductID uint      `gorm:"not null;index"`
	Image     string    `gorm:"size:255;not null"`
	IsPrimary bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"index"`
}

// All lists every model in migration order.
func All() []any {
	return []any{&User{}, &Seller{}, &Category{}, &Product{}, &ProductImage{}}
}
