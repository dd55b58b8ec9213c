package sellers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"marketplace-backend/internal/apperr"
	"marketplace-backend/internal/models"
)

// Filter narrows the admin seller listing.
type Filter struct {
	Search     string // store name or owner email
	IsVerified *bool
}

// AdminUpdate holds the fields staff may edit. Sales metrics stay read-only.
type AdminUpdate struct {
	IsVerified *bool            `json:"is_verified"`
	Rating     *decimal.Decimal `json:"rating" binding:"omitempty,gte=0,lte=5"`
}

// List returns sellers, best sellers first.
func (s *Service) List(ctx context.Context, f Filter) ([]models.Seller, error) {
	q := s.db.WithContext(ctx).Model(&models.Seller{}).Preload("User")
	if f.IsVerified != nil {
		q = q.Where("sellers.is_verified = ?", *f.IsVerified)
	}
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		like := "%" + term + "%"
		q = q.Joins("JOIN users ON users.id = sellers.user_id").
			Where("(LOWER(sellers.store_name) LIKE ? OR LOWER(users.email) LIKE ?)", like, like)
	}
	var out []models.Seller
	if err := q.Order("sellers.total_sales desc").Order("sellers.id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list sellers: %w", err)
	}
	return out, nil
}

// Get loads a seller with its owner.
func (s *Service) Get(ctx context.Context, id uint) (*models.Seller, error) {
	var seller models.Seller
	err := s.db.WithContext(ctx).Preload("User").First(&seller, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("No Seller matches the given query.")
	}
	if err != nil {
		return nil, err
	}
	return &seller, nil
}

// AdminUpdate sets verification and rating. The [0, 5] range is checked
// when the request is bound; here rating is held to two decimal places.
func (s *Service) AdminUpdate(ctx context.Context, id uint, in AdminUpdate) (*models.Seller, error) {
	seller, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if in.IsVerified != nil {
		updates["is_verified"] = *in.IsVerified
	}
	if in.Rating != nil {
		r := *in.Rating
		if !r.Equal(r.Truncate(2)) {
			return nil, apperr.Validation("rating", "Ensure that there are no more than 2 decimal places.")
		}
		updates["rating"] = r
	}
	if len(updates) == 0 {
		return seller, nil
	}
	if err := s.db.WithContext(ctx).Model(seller).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a seller. The database cascades the delete to the
// seller's products and their images; the owner loses seller status.
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seller models.Seller
		if err := tx.First(&seller, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("No Seller matches the given query.")
			}
			return err
		}
		if err := tx.Delete(&seller).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", seller.UserID).Update("is_seller", false).Error; err != nil {
			return err
		}
		slog.Info("Seller deleted", "seller_id", seller.ID, "user_id", seller.UserID)
		return nil
	})
}
