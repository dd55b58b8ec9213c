package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"marketplace-backend/internal/apperr"
	"marketplace-backend/internal/events"
	"marketplace-backend/internal/models"
	"marketplace-backend/internal/patch"
)

const maxProductName = 200

// Largest price a decimal(10,2) column holds.
var maxPrice = decimal.RequireFromString("99999999.99")

// ProductInput is the writable part of a product. Create requires name,
// description and price; update applies whatever is set.
type ProductInput struct {
	Name          patch.Field[string]          `json:"name"`
	Description   patch.Field[string]          `json:"description"`
	Price         patch.Field[decimal.Decimal] `json:"price"`
	StockQuantity patch.Field[int]             `json:"stock_quantity"`
	Image         patch.Field[string]          `json:"image"`
	CategoryID    patch.Field[uint]            `json:"category_id"`
	IsActive      patch.Field[bool]            `json:"is_active"`
}

// ProductFilter drives product listings.
type ProductFilter struct {
	CategoryID *uint
	SellerID   *uint
	IsActive   *bool
	Search     string
	Ordering   string

	// IncludeInactive lifts the active-only restriction (admin listing).
	IncludeInactive bool
}

// ListProducts returns active products matching f.
func (s *Service) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := withDetail(s.db.WithContext(ctx).Model(&models.Product{}))
	if !f.IncludeInactive {
		q = q.Where("products.is_active = ?", true)
	}
	if f.CategoryID != nil {
		q = q.Where("products.category_id = ?", *f.CategoryID)
	}
	if f.SellerID != nil {
		q = q.Where("products.seller_id = ?", *f.SellerID)
	}
	if f.IsActive != nil {
		q = q.Where("products.is_active = ?", *f.IsActive)
	}
	for _, term := range searchTerms(f.Search) {
		like := "%" + escapeLike(strings.ToLower(term)) + "%"
		q = q.Where(`(LOWER(products.name) LIKE ? ESCAPE '\' OR LOWER(products.description) LIKE ? ESCAPE '\')`, like, like)
	}
	for _, o := range orderBy(f.Ordering) {
		q = q.Order(o)
	}

	var out []models.Product
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

// CreateProduct lists a new product owned by caller's seller profile.
func (s *Service) CreateProduct(ctx context.Context, caller *models.User, in ProductInput) (*models.Product, error) {
	if err := requireSeller(caller); err != nil {
		return nil, err
	}

	var p *models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seller models.Seller
		if err := tx.Where("user_id = ?", caller.ID).First(&seller).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotSeller("You must be registered as a seller to create products")
			}
			return err
		}

		for _, req := range []struct {
			set   bool
			field string
		}{
			{in.Name.Set, "name"},
			{in.Description.Set, "description"},
			{in.Price.Set, "price"},
		} {
			if !req.set {
				return apperr.Validation(req.field, "This field is required.")
			}
		}
		fields, err := validateProduct(tx, seller.ID, 0, in)
		if err != nil {
			return err
		}

		row := models.Product{
			SellerID:    seller.ID,
			IsActive:    true,
			Name:        fields.name,
			Description: fields.description,
			Price:       fields.price,
			CategoryID:  fields.categoryID,
		}
		if fields.stock != nil {
			row.StockQuantity = *fields.stock
		}
		if fields.imageSet {
			row.Image = fields.image
		}
		if fields.active != nil {
			row.IsActive = *fields.active
		}
		if err := tx.Omit("Seller", "Category", "Images").Create(&row).Error; err != nil {
			return translate(err)
		}
		p, err = loadProduct(tx, row.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Product created", "product_id", p.ID, "seller_id", p.SellerID)
	events.Notify(ctx, s.events, events.Event{Type: events.ProductCreated, SellerID: p.SellerID, ProductID: p.ID})
	return p, nil
}

// GetProduct returns the product and counts the read. Every call adds
// exactly one view, whoever the caller is.
func (s *Service) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p *models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).Where("id = ?", id).
			UpdateColumn("views_count", gorm.Expr("views_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("No Product matches the given query.")
		}
		var err error
		p, err = loadProduct(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProduct applies the set fields of in. Only the owning seller may
// update; the full product is returned.
func (s *Service) UpdateProduct(ctx context.Context, caller *models.User, id uint, in ProductInput) (*models.Product, error) {
	var p *models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := ownedProduct(tx, caller, id)
		if err != nil {
			return err
		}
		fields, err := validateProduct(tx, current.SellerID, current.ID, in)
		if err != nil {
			return err
		}
		if updates := fields.columns(in); len(updates) > 0 {
			if err := tx.Model(&models.Product{Base: models.Base{ID: current.ID}}).Updates(updates).Error; err != nil {
				return translate(err)
			}
		}
		p, err = loadProduct(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	events.Notify(ctx, s.events, events.Event{Type: events.ProductUpdated, SellerID: p.SellerID, ProductID: p.ID})
	return p, nil
}

// DeleteProduct hard-deletes a product owned by caller. Its images go
// with it.
func (s *Service) DeleteProduct(ctx context.Context, caller *models.User, id uint) error {
	var p *models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		p, err = ownedProduct(tx, caller, id)
		if err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, p.ID).Error
	})
	if err != nil {
		return err
	}

	refs := make([]string, 0, len(p.Images)+1)
	if p.Image != nil {
		refs = append(refs, *p.Image)
	}
	for _, img := range p.Images {
		refs = append(refs, img.Image)
	}
	s.removeBlobs(ctx, refs...)

	slog.Info("Product deleted", "product_id", p.ID, "seller_id", p.SellerID)
	events.Notify(ctx, s.events, events.Event{Type: events.ProductDeleted, SellerID: p.SellerID, ProductID: p.ID})
	return nil
}

// AdminStockUpdate is what staff may edit inline on any product.
type AdminStockUpdate struct {
	IsActive      *bool `json:"is_active"`
	StockQuantity *int  `json:"stock_quantity" binding:"omitempty,gte=0"`
}

// AdminUpdateProduct toggles activity and stock without ownership checks.
func (s *Service) AdminUpdateProduct(ctx context.Context, id uint, in AdminStockUpdate) (*models.Product, error) {
	var p *models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadProduct(tx, id); err != nil {
			return err
		}
		updates := map[string]any{}
		if in.IsActive != nil {
			updates["is_active"] = *in.IsActive
		}
		if in.StockQuantity != nil {
			updates["stock_quantity"] = *in.StockQuantity
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.Product{Base: models.Base{ID: id}}).Updates(updates).Error; err != nil {
				return err
			}
		}
		var err error
		p, err = loadProduct(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// productFields holds validated values from a ProductInput.
type productFields struct {
	name        string
	description string
	price       decimal.Decimal
	stock       *int
	image       *string
	imageSet    bool
	categoryID  *uint
	active      *bool
}

func (f productFields) columns(in ProductInput) map[string]any {
	updates := map[string]any{}
	if in.Name.Set {
		updates["name"] = f.name
	}
	if in.Description.Set {
		updates["description"] = f.description
	}
	if in.Price.Set {
		updates["price"] = f.price
	}
	if f.stock != nil {
		updates["stock_quantity"] = *f.stock
	}
	if f.imageSet {
		updates["image"] = f.image
	}
	if in.CategoryID.Set {
		updates["category_id"] = f.categoryID
	}
	if f.active != nil {
		updates["is_active"] = *f.active
	}
	return updates
}

// validateProduct checks the set fields of in, field by field, and the
// (seller, name) uniqueness. exceptID excludes the product being updated.
func validateProduct(tx *gorm.DB, sellerID, exceptID uint, in ProductInput) (productFields, error) {
	var f productFields

	if in.Name.Set {
		if in.Name.Null {
			return f, apperr.Validation("name", "This field may not be null.")
		}
		f.name = strings.TrimSpace(in.Name.Value)
		if f.name == "" {
			return f, apperr.Validation("name", "This field may not be blank.")
		}
		if utf8.RuneCountInString(f.name) > maxProductName {
			return f, apperr.Validation("name", fmt.Sprintf("Ensure this field has no more than %d characters.", maxProductName))
		}
	}
	if in.Description.Set {
		if in.Description.Null {
			return f, apperr.Validation("description", "This field may not be null.")
		}
		f.description = strings.TrimSpace(in.Description.Value)
		if f.description == "" {
			return f, apperr.Validation("description", "This field may not be blank.")
		}
	}
	if in.Price.Set {
		if in.Price.Null {
			return f, apperr.Validation("price", "This field may not be null.")
		}
		if err := validatePrice(in.Price.Value); err != nil {
			return f, err
		}
		f.price = in.Price.Value
	}
	if in.StockQuantity.Set {
		if in.StockQuantity.Null {
			return f, apperr.Validation("stock_quantity", "This field may not be null.")
		}
		if in.StockQuantity.Value < 0 {
			return f, apperr.Validation("stock_quantity", "Stock quantity cannot be negative")
		}
		f.stock = in.StockQuantity.Ptr()
	}
	if in.Image.Set {
		f.imageSet = true
		if ref := strings.TrimSpace(in.Image.Value); in.Image.Present() && ref != "" {
			f.image = &ref
		}
	}
	if in.CategoryID.Present() {
		var n int64
		if err := tx.Model(&models.Category{}).Where("id = ?", in.CategoryID.Value).Count(&n).Error; err != nil {
			return f, err
		}
		if n == 0 {
			return f, apperr.Validation("category_id", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", in.CategoryID.Value))
		}
		f.categoryID = in.CategoryID.Ptr()
	}
	if in.IsActive.Set {
		if in.IsActive.Null {
			return f, apperr.Validation("is_active", "This field may not be null.")
		}
		f.active = in.IsActive.Ptr()
	}

	if in.Name.Set {
		q := tx.Model(&models.Product{}).Where("seller_id = ? AND name = ?", sellerID, f.name)
		if exceptID != 0 {
			q = q.Where("id <> ?", exceptID)
		}
		var n int64
		if err := q.Count(&n).Error; err != nil {
			return f, err
		}
		if n > 0 {
			return f, errDuplicateName
		}
	}
	return f, nil
}

var errDuplicateName = apperr.Validation("name", "The fields seller, name must make a unique set.")

func validatePrice(p decimal.Decimal) error {
	if p.IsNegative() {
		return apperr.Validation("price", "Price cannot be negative")
	}
	if !p.Equal(p.Truncate(2)) {
		return apperr.Validation("price", "Ensure that there are no more than 2 decimal places.")
	}
	if p.GreaterThan(maxPrice) {
		return apperr.Validation("price", "Ensure that there are no more than 10 digits in total.")
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errDuplicateName
	}
	return err
}

var termSep = regexp.MustCompile(`[\s,]+`)

func searchTerms(s string) []string {
	var out []string
	for _, t := range termSep.Split(strings.ReplaceAll(s, "\x00", ""), -1) {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

var orderColumns = map[string]string{
	"price":       "products.price",
	"created_at":  "products.created_at",
	"sales_count": "products.sales_count",
}

// orderBy turns "-price,created_at" into ORDER BY terms. Unknown fields
// are ignored; with nothing valid left, newest first.
func orderBy(param string) []string {
	var out []string
	for _, raw := range strings.Split(param, ",") {
		raw = strings.TrimSpace(raw)
		dir := "asc"
		if strings.HasPrefix(raw, "-") {
			dir, raw = "desc", raw[1:]
		}
		if col, ok := orderColumns[raw]; ok {
			out = append(out, col+" "+dir)
		}
	}
	if len(out) == 0 {
		out = append(out, "products.created_at desc")
	}
	return append(out, "products.id desc")
}
