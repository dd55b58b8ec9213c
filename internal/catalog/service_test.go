package catalog

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"marketplace-backend/internal/apperr"
	"marketplace-backend/internal/dbtest"
	"marketplace-backend/internal/events"
	"marketplace-backend/internal/models"
	"marketplace-backend/internal/patch"
	"marketplace-backend/internal/storage"
)

type fixture struct {
	svc    *Service
	db     *gorm.DB
	events *events.Recorder
	blobs  *storage.Local
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := dbtest.Open(t)
	rec := &events.Recorder{}
	blobs := storage.NewLocal(t.TempDir(), "/uploads")
	return &fixture{svc: NewService(gdb, rec, blobs), db: gdb, events: rec, blobs: blobs}
}

// seller creates a user holding seller status and its profile.
func (f *fixture) seller(t *testing.T, name string) (*models.User, *models.Seller) {
	t.Helper()
	u := dbtest.CreateUser(t, f.db, strings.ToLower(name)+"-owner")
	if err := f.db.Model(u).Update("is_seller", true).Error; err != nil {
		t.Fatalf("flag seller: %v", err)
	}
	u.IsSeller = true
	s := &models.Seller{UserID: u.ID, StoreName: name}
	if err := f.db.Create(s).Error; err != nil {
		t.Fatalf("create seller %s: %v", name, err)
	}
	return u, s
}

func (f *fixture) category(t *testing.T, name string) *models.Category {
	t.Helper()
	c, err := f.svc.CreateCategory(context.Background(), CategoryInput{Name: patch.Of(name)})
	if err != nil {
		t.Fatalf("CreateCategory(%s): %v", name, err)
	}
	return c
}

func widget(name, price string, stock int) ProductInput {
	return ProductInput{
		Name:          patch.Of(name),
		Description:   patch.Of(name + " description"),
		Price:         patch.Of(decimal.RequireFromString(price)),
		StockQuantity: patch.Of(stock),
	}
}

func (f *fixture) create(t *testing.T, caller *models.User, in ProductInput) *models.Product {
	t.Helper()
	p, err := f.svc.CreateProduct(context.Background(), caller, in)
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	return p
}

func wantKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if !apperr.Is(err, kind) {
		t.Fatalf("err = %v, want %s", err, kind)
	}
}

func wantField(t *testing.T, err error, field string) {
	t.Helper()
	e, ok := apperr.As(err)
	if !ok || e.Kind != apperr.KindValidation || e.Field != field {
		t.Fatalf("err = %v, want validation on %s", err, field)
	}
}

func TestCreateProduct(t *testing.T) {
	f := newFixture(t)
	owner, acme := f.seller(t, "Acme")
	cat := f.category(t, "Tools")

	in := widget("Widget", "9.99", 10)
	in.CategoryID = patch.Of(cat.ID)
	p := f.create(t, owner, in)

	if p.SellerID != acme.ID || p.Seller == nil || p.Seller.StoreName != "Acme" {
		t.Errorf("owner = %d/%v, want Acme", p.SellerID, p.Seller)
	}
	if !p.Price.Equal(decimal.RequireFromString("9.99")) || p.StockQuantity != 10 {
		t.Errorf("price/stock = %s/%d", p.Price, p.StockQuantity)
	}
	if !p.IsActive || p.ViewsCount != 0 || p.SalesCount != 0 {
		t.Errorf("defaults = active %v views %d sales %d", p.IsActive, p.ViewsCount, p.SalesCount)
	}
	if p.Category == nil || p.Category.ID != cat.ID {
		t.Errorf("category = %v, want %d", p.Category, cat.ID)
	}
	if got := f.events.Types(); len(got) != 1 || got[0] != events.ProductCreated {
		t.Errorf("events = %v", got)
	}
}

func TestCreateProductStockDefaultsToZero(t *testing.T) {
	f := newFixture(t)
	owner, _ := f.seller(t, "Acme")
	in := widget("Widget", "1", 0)
	in.StockQuantity = patch.Field[int]{}
	in.IsActive = patch.Of(false)
	p := f.create(t, owner, in)
	if p.StockQuantity != 0 || p.IsActive {
		t.Errorf("stock/active = %d/%v, want 0/false", p.StockQuantity, p.IsActive)
	}
}

func TestCreateProductValidation(t *testing.T) {
	f := newFixture(t)
	owner, _ := f.seller(t, "Acme")

	tests := []struct {
		name  string
		edit  func(*ProductInput)
		field string
	}{
		{"negative price", func(in *ProductInput) { in.Price = patch.Of(decimal.RequireFromString("-5")) }, "price"},
		{"three decimals", func(in *ProductInput) { in.Price = patch.Of(decimal.RequireFromString("1.999")) }, "price"},
		{"price too large", func(in *ProductInput) { in.Price = patch.Of(decimal.RequireFromString("100000000")) }, "price"},
		{"null price", func(in *ProductInput) { in.Price = patch.Null[decimal.Decimal]() }, "price"},
		{"missing price", func(in *ProductInput) { in.Price = patch.Field[decimal.Decimal]{} }, "price"},
		{"negative stock", func(in *ProductInput) { in.StockQuantity = patch.Of(-1) }, "stock_quantity"},
		{"blank name", func(in *ProductInput) { in.Name = patch.Of("  ") }, "name"},
		{"long name", func(in *ProductInput) { in.Name = patch.Of(strings.Repeat("n", 201)) }, "name"},
		{"missing description", func(in *ProductInput) { in.Description = patch.Field[string]{} }, "description"},
		{"unknown category", func(in *ProductInput) { in.CategoryID = patch.Of(uint(404)) }, "category_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := widget("Widget", "9.99", 10)
			tt.edit(&in)
			_, err := f.svc.CreateProduct(context.Background(), owner, in)
			wantField(t, err, tt.field)
		})
	}

	var n int64
	f.db.Model(&models.Product{}).Count(&n)
	if n != 0 {
		t.Errorf("%d products written by rejected creates", n)
	}
}

func TestCreateProductDuplicateNamePerSeller(t *testing.T) {
	f := newFixture(t)
	acme, _ := f.seller(t, "Acme")
	other, _ := f.seller(t, "Other")

	f.create(t, acme, widget("Widget", "9.99", 10))
	_, err := f.svc.CreateProduct(context.Background(), acme, widget("Widget", "1.00", 1))
	wantField(t, err, "name")

	// The same name under another seller is fine.
	f.create(t, other, widget("Widget", "9.99", 10))
}

func TestCreateProductRequiresSeller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateProduct(ctx, nil, widget("Widget", "1", 1))
	wantKind(t, err, apperr.KindUnauthorized)

	buyer := dbtest.CreateUser(t, f.db, "buyer")
	_, err = f.svc.CreateProduct(ctx, buyer, widget("Widget", "1", 1))
	wantKind(t, err, apperr.KindForbidden)

	// Flag set but no profile row.
	flagged := dbtest.CreateUser(t, f.db, "flagged")
	flagged.IsSeller = true
	_, err = f.svc.CreateProduct(ctx, flagged, widget("Widget", "1", 1))
	wantKind(t, err, apperr.KindNotSeller)
}

func TestGetProductCountsEveryRead(t *testing.T) {
	f := newFixture(t)
	owner, _ := f.seller(t, "Acme")
	p := f.create(t, owner, widget("Widget", "9.99", 10))
	var stored models.Product
	if err := f.db.First(&stored, p.ID).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	before := stored.UpdatedAt

	const n = 5
	var got *models.Product
	for i := 0; i < n; i++ {
		var err error
		got, err = f.svc.GetProduct(context.Background(), p.ID)
		if err != nil {
			t.Fatalf("GetProduct: %v", err)
		}
		if got.ViewsCount != i+1 {
			t.Fatalf("read %d: views = %d, want %d", i+1, got.ViewsCount, i+1)
		}
	}
	if !got.UpdatedAt.Equal(before) {
		t.Errorf("updated_at moved from %v to %v on read", before, got.UpdatedAt)
	}
}

func TestGetProductMissingAndInactive(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GetProduct(context.Background(), 12345)
	wantKind(t, err, apperr.KindNotFound)

	owner, _ := f.seller(t, "Acme")
	in := widget("Hidden", "1", 1)
	in.IsActive = patch.Of(false)
	p := f.create(t, owner, in)
	if _, err := f.svc.GetProduct(context.Background(), p.ID); err != nil {
		t.Fatalf("inactive product detail: %v", err)
	}
}

func TestUpdateProductOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, _ := f.seller(t, "Acme")
	intruder, _ := f.seller(t, "Intruder")
	buyer := dbtest.CreateUser(t, f.db, "buyer")
	p := f.create(t, owner, widget("Widget", "9.99", 10))

	change := ProductInput{Price: patch.Of(decimal.RequireFromString("12.50"))}

	_, err := f.svc.UpdateProduct(ctx, intruder, p.ID, change)
	wantKind(t, err, apperr.KindForbidden)
	_, err = f.svc.UpdateProduct(ctx, buyer, p.ID, change)
	wantKind(t, err, apperr.KindForbidden)
	_, err = f.svc.UpdateProduct(ctx, nil, p.ID, change)
	wantKind(t, err, apperr.KindUnauthorized)
	_, err = f.svc.UpdateProduct(ctx, owner, 9999, change)
	wantKind(t, err, apperr.KindNotFound)

	got, err := f.svc.UpdateProduct(ctx, owner, p.ID, change)
	if err != nil {
		t.Fatalf("owner UpdateProduct: %v", err)
	}
	if !got.Price.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("price = %s, want 12.50", got.Price)
	}
	if got.Name != "Widget" || got.StockQuantity != 10 {
		t.Errorf("partial update touched other fields: %+v", got)
	}
	if got.Seller == nil || got.Seller.StoreName != "Acme" {
		t.Errorf("update did not return the full product")
	}
}

func TestUpdateProductValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, _ := f.seller(t, "Acme")
	p := f.create(t, owner, widget("Widget", "9.99", 10))
	f.create(t, owner, widget("Gadget", "1", 1))

	_, err := f.svc.UpdateProduct(ctx, owner, p.ID, ProductInput{Price: patch.Of(decimal.RequireFromString("-5"))})
	wantField(t, err, "price")
	_, err = f.svc.UpdateProduct(ctx, owner, p.ID, ProductInput{StockQuantity: patch.Of(-3)})
	wantField(t, err, "stock_quantity")
	_, err = f.svc.UpdateProduct(ctx, owner, p.ID, ProductInput{Name: patch.Of("Gadget")})
	wantField(t, err, "name")

	// Renaming to its own name is not a conflict.
	if _, err := f.svc.UpdateProduct(ctx, owner, p.ID, ProductInput{Name: patch.Of("Widget")}); err != nil {
		t.Fatalf("same-name update: %v", err)
	}

	var stored models.Product
	f.db.First(&stored, p.ID)
	if !stored.Price.Equal(decimal.RequireFromString("9.99")) || stored.StockQuantity != 10 {
		t.Errorf("rejected updates were persisted: %s/%d", stored.Price, stored.StockQuantity)
	}
}

func TestUpdateProductCategoryNull(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, _ := f.seller(t, "Acme")
	cat := f.category(t, "Tools")
	in := widget("Widget", "9.99", 10)
	in.CategoryID = patch.Of(cat.ID)
	p := f.create(t, owner, in)

	got, err := f.svc.UpdateProduct(ctx, owner, p.ID, ProductInput{CategoryID: patch.Null[uint]()})
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if got.CategoryID != nil || got.Category != nil {
		t.Errorf("category = %v, want none", got.CategoryID)
	}
}

func TestDeleteProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, _ := f.seller(t, "Acme")
	intruder, _ := f.seller(t, "Intruder")
	p := f.create(t, owner, widget("Widget", "9.99", 10))
	img, err := f.svc.AddImage(ctx, owner, p.ID, "front.png", strings.NewReader("png"), true)
	if err != nil {
		t.Fatalf("AddImage: %v", err)
	}

	wantKind(t, f.svc.DeleteProduct(ctx, intruder, p.ID), apperr.KindForbidden)
	if err := f.svc.DeleteProduct(ctx, owner, p.ID); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	wantKind(t, f.svc.DeleteProduct(ctx, owner, p.ID), apperr.KindNotFound)

	var n int64
	f.db.Model(&models.ProductImage{}).Where("id = ?", img.ID).Count(&n)
	if n != 0 {
		t.Errorf("image row survived product delete")
	}
}

func TestSellerDeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, acme := f.seller(t, "Acme")
	p := f.create(t, owner, widget("Widget", "9.99", 10))
	if _, err := f.svc.AddImage(ctx, owner, p.ID, "a.jpg", strings.NewReader("jpg"), false); err != nil {
		t.Fatalf("AddImage: %v", err)
	}

	if err := f.db.Delete(&models.Seller{}, acme.ID).Error; err != nil {
		t.Fatalf("delete seller: %v", err)
	}
	var products, images int64
	f.db.Model(&models.Product{}).Count(&products)
	f.db.Model(&models.ProductImage{}).Count(&images)
	if products != 0 || images != 0 {
		t.Errorf("after seller delete: %d products, %d images, want 0/0", products, images)
	}
}

func TestCategoryDeleteNullsProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, _ := f.seller(t, "Acme")
	cat := f.category(t, "Tools")
	in := widget("Widget", "9.99", 10)
	in.CategoryID = patch.Of(cat.ID)
	p := f.create(t, owner, in)

	if err := f.svc.DeleteCategory(ctx, cat.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	var stored models.Product
	if err := f.db.First(&stored, p.ID).Error; err != nil {
		t.Fatalf("product gone after category delete: %v", err)
	}
	if stored.CategoryID != nil {
		t.Errorf("category_id = %d, want NULL", *stored.CategoryID)
	}
	wantKind(t, f.svc.DeleteCategory(ctx, cat.ID), apperr.KindNotFound)
}

func TestListCategoriesAlphabetical(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"Toys", "Books", "Garden"} {
		f.category(t, name)
	}
	got, err := f.svc.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	var names []string
	for _, c := range got {
		names = append(names, c.Name)
	}
	if strings.Join(names, ",") != "Books,Garden,Toys" {
		t.Errorf("order = %v", names)
	}
}

func TestCreateCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.category(t, "Home & Garden")
	if c.Slug != "home-garden" {
		t.Errorf("slug = %q, want home-garden", c.Slug)
	}
	_, err := f.svc.CreateCategory(ctx, CategoryInput{Name: patch.Of("Home & Garden")})
	wantField(t, err, "name")
	_, err = f.svc.CreateCategory(ctx, CategoryInput{Name: patch.Of("Other"), Slug: patch.Of("home-garden")})
	wantField(t, err, "slug")
	_, err = f.svc.CreateCategory(ctx, CategoryInput{Name: patch.Of("Bad"), Slug: patch.Of("bad slug")})
	wantField(t, err, "slug")

	up, err := f.svc.UpdateCategory(ctx, c.ID, CategoryInput{Description: patch.Of("Outdoors")})
	if err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	if up.Description != "Outdoors" || up.Name != "Home & Garden" {
		t.Errorf("category = %+v", up)
	}
	_, err = f.svc.UpdateCategory(ctx, 999, CategoryInput{})
	wantKind(t, err, apperr.KindNotFound)
}

func names(ps []models.Product) string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return strings.Join(out, ",")
}

func TestListProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acmeUser, acme := f.seller(t, "Acme")
	otherUser, _ := f.seller(t, "Other")
	tools := f.category(t, "Tools")

	mk := func(u *models.User, name, desc, price string, cat *uint, active bool) *models.Product {
		in := ProductInput{
			Name:        patch.Of(name),
			Description: patch.Of(desc),
			Price:       patch.Of(decimal.RequireFromString(price)),
			IsActive:    patch.Of(active),
		}
		if cat != nil {
			in.CategoryID = patch.Of(*cat)
		}
		p := f.create(t, u, in)
		time.Sleep(2 * time.Millisecond)
		return p
	}
	mk(acmeUser, "Hammer", "Steel claw hammer", "25.00", &tools.ID, true)
	mk(acmeUser, "Nails", "Box of 100_pieces", "3.50", &tools.ID, true)
	mk(otherUser, "Teapot", "Porcelain, holds 1L", "40.00", nil, true)
	mk(otherUser, "Retired", "Old hammer", "1.00", nil, false)

	tests := []struct {
		name   string
		filter ProductFilter
		want   string
	}{
		{"default newest first, active only", ProductFilter{}, "Teapot,Nails,Hammer"},
		{"by category", ProductFilter{CategoryID: &tools.ID}, "Nails,Hammer"},
		{"by seller", ProductFilter{SellerID: &acme.ID}, "Nails,Hammer"},
		{"search is case-insensitive over name and description", ProductFilter{Search: "HAMMER"}, "Hammer"},
		{"every term must match", ProductFilter{Search: "steel, claw"}, "Hammer"},
		{"wildcards are literal", ProductFilter{Search: "100_"}, "Nails"},
		{"percent matches nothing", ProductFilter{Search: "%"}, ""},
		{"price ascending", ProductFilter{Ordering: "price"}, "Nails,Hammer,Teapot"},
		{"price descending", ProductFilter{Ordering: "-price"}, "Teapot,Hammer,Nails"},
		{"unknown ordering ignored", ProductFilter{Ordering: "name"}, "Teapot,Nails,Hammer"},
		{"oldest first", ProductFilter{Ordering: "created_at"}, "Hammer,Nails,Teapot"},
		{"inactive filter on active-only list", ProductFilter{IsActive: boolPtr(false)}, ""},
		{"admin sees inactive", ProductFilter{IncludeInactive: true, IsActive: boolPtr(false)}, "Retired"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.ListProducts(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListProducts: %v", err)
			}
			if names(got) != tt.want {
				t.Errorf("got %q, want %q", names(got), tt.want)
			}
		})
	}
}

func boolPtr(b bool) *bool { return &b }

func TestAdminUpdateProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, _ := f.seller(t, "Acme")
	p := f.create(t, owner, widget("Widget", "9.99", 10))

	off, stock := false, 0
	got, err := f.svc.AdminUpdateProduct(ctx, p.ID, AdminStockUpdate{IsActive: &off, StockQuantity: &stock})
	if err != nil {
		t.Fatalf("AdminUpdateProduct: %v", err)
	}
	if got.IsActive || got.StockQuantity != 0 {
		t.Errorf("active/stock = %v/%d", got.IsActive, got.StockQuantity)
	}
}

func TestImages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, _ := f.seller(t, "Acme")
	intruder, _ := f.seller(t, "Intruder")
	p := f.create(t, owner, widget("Widget", "9.99", 10))

	if _, err := f.svc.AddImage(ctx, owner, p.ID, "doc.pdf", strings.NewReader("x"), false); err == nil {
		t.Fatal("AddImage accepted a pdf")
	} else {
		wantField(t, err, "image")
	}
	_, err := f.svc.AddImage(ctx, intruder, p.ID, "a.png", strings.NewReader("x"), false)
	wantKind(t, err, apperr.KindForbidden)

	first, err := f.svc.AddImage(ctx, owner, p.ID, "a.png", strings.NewReader("a"), false)
	if err != nil {
		t.Fatalf("AddImage: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	primary, err := f.svc.AddImage(ctx, owner, p.ID, "b.png", strings.NewReader("b"), true)
	if err != nil {
		t.Fatalf("AddImage: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	newest, err := f.svc.AddImage(ctx, owner, p.ID, "c.png", strings.NewReader("c"), false)
	if err != nil {
		t.Fatalf("AddImage: %v", err)
	}

	got, err := f.svc.GetProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	wantOrder := []uint{primary.ID, newest.ID, first.ID}
	if len(got.Images) != len(wantOrder) {
		t.Fatalf("images = %d, want %d", len(got.Images), len(wantOrder))
	}
	for i, id := range wantOrder {
		if got.Images[i].ID != id {
			t.Errorf("images[%d] = %d, want %d", i, got.Images[i].ID, id)
		}
	}

	wantKind(t, f.svc.DeleteImage(ctx, intruder, p.ID, first.ID), apperr.KindForbidden)
	if err := f.svc.DeleteImage(ctx, owner, p.ID, first.ID); err != nil {
		t.Fatalf("DeleteImage: %v", err)
	}
	wantKind(t, f.svc.DeleteImage(ctx, owner, p.ID, first.ID), apperr.KindNotFound)
}
