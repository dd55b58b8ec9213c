package catalog

import (
	"context"
	"errors"
	"io"

	"gorm.io/gorm"

	"marketplace-backend/internal/apperr"
	"marketplace-backend/internal/models"
	"marketplace-backend/internal/storage"
)

// AddImage stores an uploaded picture and attaches it to the caller's
// product.
func (s *Service) AddImage(ctx context.Context, caller *models.User, productID uint, filename string, r io.Reader, primary bool) (*models.ProductImage, error) {
	if s.blobs == nil {
		return nil, errors.New("image storage is not configured")
	}
	if _, err := ownedProduct(s.db.WithContext(ctx), caller, productID); err != nil {
		return nil, err
	}

	ref, err := s.blobs.Put(ctx, filename, r)
	if errors.Is(err, storage.ErrUnsupportedFormat) {
		return nil, apperr.Validation("image", "Upload a valid image. Supported formats: jpg, jpeg, png, webp.")
	}
	if err != nil {
		return nil, err
	}

	img := models.ProductImage{ProductID: productID, Image: ref, IsPrimary: primary}
	if err := s.db.WithContext(ctx).Create(&img).Error; err != nil {
		s.removeBlobs(ctx, ref)
		return nil, err
	}
	return &img, nil
}

// DeleteImage detaches and removes one image of the caller's product.
func (s *Service) DeleteImage(ctx context.Context, caller *models.User, productID, imageID uint) error {
	var img models.ProductImage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedProduct(tx, caller, productID); err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", productID).First(&img, imageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("No ProductImage matches the given query.")
			}
			return err
		}
		return tx.Delete(&img).Error
	})
	if err != nil {
		return err
	}
	s.removeBlobs(ctx, img.Image)
	return nil
}
