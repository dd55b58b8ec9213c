package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Seller is a user's store profile (table sellers), one per user.
type Seller struct {
	ID               uint    `gorm:"primaryKey"`
	UserID           uint    `gorm:"uniqueIndex;not null"`
	User             *User   `gorm:"constraint:OnDelete:CASCADE"`
	StoreName        string  `gorm:"size:200;uniqueIndex;not null"`
	StoreDescription string  `gorm:"type:text;not null;default:''"`
	StoreLogoURL     *string `gorm:"size:200"`

	// Maintained by order fulfillment, read-only here.
	TotalSales  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;index:idx_sellers_total_sales,sort:desc"`
	TotalOrders int             `gorm:"not null;default:0"`
	Rating      decimal.Decimal `gorm:"type:decimal(3,2);not null;default:0"`

	IsVerified   bool      `gorm:"not null;default:false"`
	JoinedDate   time.Time `gorm:"autoCreateTime"`
	LastSaleDate *time.Time
}
