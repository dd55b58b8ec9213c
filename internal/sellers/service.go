// Package sellers owns seller profiles: registration, the seller's own
// profile, and the admin operations over all profiles.
package sellers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"marketplace-backend/internal/apperr"
	"marketplace-backend/internal/events"
	"marketplace-backend/internal/models"
	"marketplace-backend/internal/patch"
)

const maxStoreName = 200

// Service manages seller profiles.
type Service struct {
	db     *gorm.DB
	events events.Publisher
}

// NewService returns a seller service. A nil pub drops events.
func NewService(db *gorm.DB, pub events.Publisher) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{db: db, events: pub}
}

// RegisterInput is the seller registration request.
type RegisterInput struct {
	StoreName        patch.Field[string] `json:"store_name"`
	StoreDescription patch.Field[string] `json:"store_description"`
	StoreLogoURL     patch.Field[string] `json:"store_logo_url"`
}

// ProfileUpdate lists the fields a seller may change on their own profile.
type ProfileUpdate struct {
	StoreName        patch.Field[string] `json:"store_name"`
	StoreDescription patch.Field[string] `json:"store_description"`
	StoreLogoURL     patch.Field[string] `json:"store_logo_url"`
}

// Register creates caller's seller profile and marks the user as a seller.
func (s *Service) Register(ctx context.Context, caller *models.User, in RegisterInput) (*models.Seller, error) {
	if caller == nil || caller.ID == 0 {
		return nil, apperr.Unauthorized("Authentication credentials were not provided.")
	}
	if caller.IsSeller {
		return nil, apperr.AlreadySeller("User is already registered as a seller")
	}

	var seller models.Seller
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Seller{}).Where("user_id = ?", caller.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperr.AlreadySeller("Seller profile already exists")
		}

		if !in.StoreName.Set {
			return apperr.Validation("store_name", "This field is required.")
		}
		name, err := storeName(in.StoreName)
		if err != nil {
			return err
		}
		if err := uniqueStoreName(tx, name, 0); err != nil {
			return err
		}
		logo, err := logoURL(in.StoreLogoURL)
		if err != nil {
			return err
		}
		desc := ""
		if in.StoreDescription.Present() {
			desc = in.StoreDescription.Value
		}

		seller = models.Seller{
			UserID:           caller.ID,
			StoreName:        name,
			StoreDescription: desc,
			StoreLogoURL:     logo,
			TotalSales:       decimal.Zero,
			Rating:           decimal.Zero,
		}
		if err := tx.Create(&seller).Error; err != nil {
			return translate(err)
		}
		return tx.Model(&models.User{}).Where("id = ?", caller.ID).Update("is_seller", true).Error
	})
	if err != nil {
		return nil, err
	}

	caller.IsSeller = true
	seller.User = caller
	slog.Info("Seller registered", "seller_id", seller.ID, "user_id", caller.ID, "store_name", seller.StoreName)
	events.Notify(ctx, s.events, events.Event{Type: events.SellerRegistered, SellerID: seller.ID})
	return &seller, nil
}

// GetOwnProfile returns caller's profile. Callers without seller status
// get NotSeller.
func (s *Service) GetOwnProfile(ctx context.Context, caller *models.User) (*models.Seller, error) {
	return s.ownProfile(s.db.WithContext(ctx), caller)
}

// UpdateOwnProfile applies in to caller's profile. Absent fields are left
// alone whatever method the client used.
func (s *Service) UpdateOwnProfile(ctx context.Context, caller *models.User, in ProfileUpdate) (*models.Seller, error) {
	var seller *models.Seller
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		seller, err = s.ownProfile(tx, caller)
		if err != nil {
			return err
		}

		updates := map[string]any{}
		if in.StoreName.Set {
			name, err := storeName(in.StoreName)
			if err != nil {
				return err
			}
			if err := uniqueStoreName(tx, name, seller.ID); err != nil {
				return err
			}
			updates["store_name"] = name
		}
		if in.StoreDescription.Set {
			if in.StoreDescription.Null {
				return apperr.Validation("store_description", "This field may not be null.")
			}
			updates["store_description"] = in.StoreDescription.Value
		}
		if in.StoreLogoURL.Set {
			logo, err := logoURL(in.StoreLogoURL)
			if err != nil {
				return err
			}
			updates["store_logo_url"] = logo
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(seller).Updates(updates).Error; err != nil {
			return translate(err)
		}
		return tx.Preload("User").First(seller, seller.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return seller, nil
}

func (s *Service) ownProfile(tx *gorm.DB, caller *models.User) (*models.Seller, error) {
	if caller == nil || caller.ID == 0 {
		return nil, apperr.Unauthorized("Authentication credentials were not provided.")
	}
	if !caller.IsSeller {
		return nil, apperr.NotSeller("User is not a seller")
	}
	var seller models.Seller
	err := tx.Preload("User").Where("user_id = ?", caller.ID).First(&seller).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotSeller("User is not a seller")
	}
	if err != nil {
		return nil, fmt.Errorf("load seller profile: %w", err)
	}
	return &seller, nil
}

func storeName(f patch.Field[string]) (string, error) {
	if f.Null {
		return "", apperr.Validation("store_name", "This field may not be null.")
	}
	name := strings.TrimSpace(f.Value)
	if name == "" {
		return "", apperr.Validation("store_name", "This field may not be blank.")
	}
	if utf8.RuneCountInString(name) > maxStoreName {
		return "", apperr.Validation("store_name", fmt.Sprintf("Ensure this field has no more than %d characters.", maxStoreName))
	}
	return name, nil
}

func uniqueStoreName(tx *gorm.DB, name string, exceptID uint) error {
	q := tx.Model(&models.Seller{}).Where("store_name = ?", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return apperr.Validation("store_name", "seller with this store name already exists.")
	}
	return nil
}

// logoURL validates an optional logo reference. Blank and null both clear it.
func logoURL(f patch.Field[string]) (*string, error) {
	if !f.Present() || strings.TrimSpace(f.Value) == "" {
		return nil, nil
	}
	raw := strings.TrimSpace(f.Value)
	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" || len(raw) > 200 {
		return nil, apperr.Validation("store_logo_url", "Enter a valid URL.")
	}
	return &raw, nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Validation("store_name", "seller with this store name already exists.")
	}
	return err
}
