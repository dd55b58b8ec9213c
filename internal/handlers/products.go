package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-backend/internal/catalog"
	"marketplace-backend/internal/metrics"
	"marketplace-backend/internal/middleware"
)

// productFilter reads the list query string shared by the public and
// admin product listings.
func productFilter(c *gin.Context) (catalog.ProductFilter, error) {
	f := catalog.ProductFilter{
		Search:   c.Query("search"),
		Ordering: c.Query("ordering"),
	}
	var err error
	if f.CategoryID, err = queryUint(c, "category"); err != nil {
		return f, err
	}
	if f.SellerID, err = queryUint(c, "seller"); err != nil {
		return f, err
	}
	if f.IsActive, err = queryBool(c, "is_active"); err != nil {
		return f, err
	}
	return f, nil
}

// ListCategories returns every category by name.
func ListCategories(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats, err := svc.ListCategories(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cats)
	}
}

// ListProducts returns active products matching the query string.
func ListProducts(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := productFilter(c)
		if err != nil {
			respondError(c, err)
			return
		}
		products, err := svc.ListProducts(c.Request.Context(), f)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, newProducts(products))
	}
}

// CreateProduct adds a product to the caller's store.
func CreateProduct(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in catalog.ProductInput
		if !bindJSON(c, &in) {
			return
		}
		p, err := svc.CreateProduct(c.Request.Context(), middleware.CurrentUser(c), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, newProduct(p))
	}
}

// GetProduct serves the detail view. Every successful call counts as a view.
func GetProduct(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id", "Product")
		if !ok {
			return
		}
		p, err := svc.GetProduct(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		metrics.RecordProductView()
		c.JSON(http.StatusOK, newProduct(p))
	}
}

// UpdateProduct serves both PUT and PATCH; both are partial.
func UpdateProduct(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id", "Product")
		if !ok {
			return
		}
		var in catalog.ProductInput
		if !bindJSON(c, &in) {
			return
		}
		p, err := svc.UpdateProduct(c.Request.Context(), middleware.CurrentUser(c), id, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, newProduct(p))
	}
}

// DeleteProduct removes one of the caller's products.
func DeleteProduct(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id", "Product")
		if !ok {
			return
		}
		if err := svc.DeleteProduct(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// AddProductImage takes a multipart upload in field "image" and an
// optional "is_primary" form value.
func AddProductImage(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id", "Product")
		if !ok {
			return
		}
		fh, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"image": []string{"No file was submitted."}})
			return
		}
		file, err := fh.Open()
		if err != nil {
			respondError(c, err)
			return
		}
		defer file.Close()

		primary := false
		switch c.PostForm("is_primary") {
		case "true", "True", "1", "on":
			primary = true
		}
		img, err := svc.AddImage(c.Request.Context(), middleware.CurrentUser(c), id, fh.Filename, file, primary)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, newImage(*img))
	}
}

// DeleteProductImage removes an image and its stored file.
func DeleteProductImage(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id", "Product")
		if !ok {
			return
		}
		imageID, ok := pathID(c, "imageId", "ProductImage")
		if !ok {
			return
		}
		if err := svc.DeleteImage(c.Request.Context(), middleware.CurrentUser(c), id, imageID); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
