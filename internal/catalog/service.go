// Package catalog owns categories, products and product images, and
// enforces the ownership and validation rules for writing them.
package catalog

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"marketplace-backend/internal/apperr"
	"marketplace-backend/internal/events"
	"marketplace-backend/internal/models"
	"marketplace-backend/internal/storage"
)

// Service runs catalog operations: categories, products and images.
type Service struct {
	db     *gorm.DB
	events events.Publisher
	blobs  storage.BlobStore
}

// NewService returns a catalog service. A nil pub drops events.
func NewService(db *gorm.DB, pub events.Publisher, blobs storage.BlobStore) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{db: db, events: pub, blobs: blobs}
}

// withDetail preloads what the full product representation needs.
func withDetail(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Seller").Preload("Category").Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("product_images.is_primary desc").Order("product_images.created_at desc").Order("product_images.id desc")
	})
}

func loadProduct(tx *gorm.DB, id uint) (*models.Product, error) {
	var p models.Product
	err := withDetail(tx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("No Product matches the given query.")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ownedProduct runs the write checks in order: seller status, existence,
// then ownership.
func ownedProduct(tx *gorm.DB, caller *models.User, id uint) (*models.Product, error) {
	if err := requireSeller(caller); err != nil {
		return nil, err
	}
	p, err := loadProduct(tx, id)
	if err != nil {
		return nil, err
	}
	if p.Seller == nil || !isOwner(caller, p.Seller.UserID) {
		return nil, apperr.Forbidden("You do not have permission to perform this action.")
	}
	return p, nil
}

func (s *Service) removeBlobs(ctx context.Context, refs ...string) {
	if s.blobs == nil {
		return
	}
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if err := s.blobs.Delete(ctx, ref); err != nil {
			slog.Warn("Failed to remove image blob", "ref", ref, "err", err)
		}
	}
}
