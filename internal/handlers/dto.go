package handlers

import (
	"time"

	"marketplace-backend/internal/models"
)

// UserResponse is the public view of an account.
type UserResponse struct {
	ID         uint      `json:"id"`
	Username   string    `json:"username"`
	Email      *string   `json:"email"`
	IsSeller   bool      `json:"is_seller"`
	DateJoined time.Time `json:"date_joined"`
}

func newUser(u *models.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{ID: u.ID, Username: u.Username, Email: u.Email, IsSeller: u.IsSeller, DateJoined: u.CreatedAt}
}

// SellerResponse is a seller profile with its owner nested.
type SellerResponse struct {
	ID               uint          `json:"id"`
	User             *UserResponse `json:"user"`
	StoreName        string        `json:"store_name"`
	StoreDescription string        `json:"store_description"`
	StoreLogoURL     *string       `json:"store_logo_url"`
	TotalSales       string        `json:"total_sales"`
	TotalOrders      int           `json:"total_orders"`
	Rating           string        `json:"rating"`
	IsVerified       bool          `json:"is_verified"`
	JoinedDate       time.Time     `json:"joined_date"`
	LastSaleDate     *time.Time    `json:"last_sale_date"`
}

func newSeller(s *models.Seller) SellerResponse {
	return SellerResponse{
		ID:               s.ID,
		User:             newUser(s.User),
		StoreName:        s.StoreName,
		StoreDescription: s.StoreDescription,
		StoreLogoURL:     s.StoreLogoURL,
		TotalSales:       s.TotalSales.StringFixed(2),
		TotalOrders:      s.TotalOrders,
		Rating:           s.Rating.StringFixed(2),
		IsVerified:       s.IsVerified,
		JoinedDate:       s.JoinedDate,
		LastSaleDate:     s.LastSaleDate,
	}
}

// ImageResponse is one product image.
type ImageResponse struct {
	ID        uint      `json:"id"`
	Image     string    `json:"image"`
	IsPrimary bool      `json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
}

func newImage(img models.ProductImage) ImageResponse {
	return ImageResponse{ID: img.ID, Image: img.Image, IsPrimary: img.IsPrimary, CreatedAt: img.CreatedAt}
}

// ProductResponse is the single product shape used by list, detail and
// write responses.
type ProductResponse struct {
	ID            uint             `json:"id"`
	Seller        uint             `json:"seller"`
	SellerName    string           `json:"seller_name"`
	Category      *models.Category `json:"category"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         string           `json:"price"`
	StockQuantity int              `json:"stock_quantity"`
	Image         *string          `json:"image"`
	IsActive      bool             `json:"is_active"`
	ViewsCount    int              `json:"views_count"`
	SalesCount    int              `json:"sales_count"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	Images        []ImageResponse  `json:"images"`
}

func newProduct(p *models.Product) ProductResponse {
	out := ProductResponse{
		ID:            p.ID,
		Seller:        p.SellerID,
		Category:      p.Category,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price.StringFixed(2),
		StockQuantity: p.StockQuantity,
		Image:         p.Image,
		IsActive:      p.IsActive,
		ViewsCount:    p.ViewsCount,
		SalesCount:    p.SalesCount,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Images:        make([]ImageResponse, 0, len(p.Images)),
	}
	if p.Seller != nil {
		out.SellerName = p.Seller.StoreName
	}
	for _, img := range p.Images {
		out.Images = append(out.Images, newImage(img))
	}
	return out
}

func newProducts(ps []models.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(ps))
	for i := range ps {
		out = append(out, newProduct(&ps[i]))
	}
	return out
}

func newSellers(ss []models.Seller) []SellerResponse {
	out := make([]SellerResponse, 0, len(ss))
	for i := range ss {
		out = append(out, newSeller(&ss[i]))
	}
	return out
}
