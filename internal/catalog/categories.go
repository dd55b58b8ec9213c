package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"marketplace-backend/internal/apperr"
	"marketplace-backend/internal/models"
	"marketplace-backend/internal/patch"
	"marketplace-backend/internal/slug"
)

const (
	maxCategoryName = 100
	maxSlug         = 50
)

// CategoryInput is the create and update request for a category.
type CategoryInput struct {
	Name        patch.Field[string] `json:"name"`
	Description patch.Field[string] `json:"description"`
	Slug        patch.Field[string] `json:"slug"`
}

// ListCategories returns every category, alphabetical by name.
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := s.db.WithContext(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

// CreateCategory adds a category. A missing slug is derived from the name.
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if !in.Name.Set {
		return nil, apperr.Validation("name", "This field is required.")
	}
	var c models.Category
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		name, err := categoryName(tx, in.Name, 0)
		if err != nil {
			return err
		}
		raw := in.Slug
		if !raw.Present() || strings.TrimSpace(raw.Value) == "" {
			raw = patch.Of(truncate(slug.Make(name), maxSlug))
		}
		sl, err := categorySlug(tx, raw, 0)
		if err != nil {
			return err
		}
		c = models.Category{Name: name, Slug: sl}
		if in.Description.Present() {
			c.Description = in.Description.Value
		}
		return tx.Create(&c).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateCategory applies the set fields of in.
func (s *Service) UpdateCategory(ctx context.Context, id uint, in CategoryInput) (*models.Category, error) {
	var c models.Category
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("No Category matches the given query.")
			}
			return err
		}
		updates := map[string]any{}
		if in.Name.Set {
			name, err := categoryName(tx, in.Name, c.ID)
			if err != nil {
				return err
			}
			updates["name"] = name
		}
		if in.Slug.Set {
			sl, err := categorySlug(tx, in.Slug, c.ID)
			if err != nil {
				return err
			}
			updates["slug"] = sl
		}
		if in.Description.Set {
			updates["description"] = in.Description.Value
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&c).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&c, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteCategory removes a category. Products that referenced it keep
// existing with no category.
func (s *Service) DeleteCategory(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Category{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("No Category matches the given query.")
	}
	return nil
}

func categoryName(tx *gorm.DB, f patch.Field[string], exceptID uint) (string, error) {
	if f.Null {
		return "", apperr.Validation("name", "This field may not be null.")
	}
	name := strings.TrimSpace(f.Value)
	if name == "" {
		return "", apperr.Validation("name", "This field may not be blank.")
	}
	if utf8.RuneCountInString(name) > maxCategoryName {
		return "", apperr.Validation("name", fmt.Sprintf("Ensure this field has no more than %d characters.", maxCategoryName))
	}
	if taken, err := exists(tx, "name", name, exceptID); err != nil {
		return "", err
	} else if taken {
		return "", apperr.Validation("name", "category with this name already exists.")
	}
	return name, nil
}

func categorySlug(tx *gorm.DB, f patch.Field[string], exceptID uint) (string, error) {
	if f.Null {
		return "", apperr.Validation("slug", "This field may not be null.")
	}
	sl := strings.TrimSpace(f.Value)
	if !slug.Valid(sl) {
		return "", apperr.Validation("slug", "Enter a valid slug consisting of letters, numbers, underscores or hyphens.")
	}
	if len(sl) > maxSlug {
		return "", apperr.Validation("slug", fmt.Sprintf("Ensure this field has no more than %d characters.", maxSlug))
	}
	if taken, err := exists(tx, "slug", sl, exceptID); err != nil {
		return "", err
	} else if taken {
		return "", apperr.Validation("slug", "category with this slug already exists.")
	}
	return sl, nil
}

func exists(tx *gorm.DB, column, value string, exceptID uint) (bool, error) {
	q := tx.Model(&models.Category{}).Where(column+" = ?", value)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	err := q.Count(&n).Error
	return n > 0, err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimRight(s[:n], "-")
}
