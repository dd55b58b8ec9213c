package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-backend/internal/catalog"
	"marketplace-backend/internal/export"
	"marketplace-backend/internal/sellers"
)

// AdminCreateCategory adds a category, deriving the slug from the name
// when none is given.
func AdminCreateCategory(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in catalog.CategoryInput
		if !bindJSON(c, &in) {
			return
		}
		cat, err := svc.CreateCategory(c.Request.Context(), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, cat)
	}
}

// AdminUpdateCategory renames or re-slugs a category.
func AdminUpdateCategory(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id", "Category")
		if !ok {
			return
		}
		var in catalog.CategoryInput
		if !bindJSON(c, &in) {
			return
		}
		cat, err := svc.UpdateCategory(c.Request.Context(), id, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cat)
	}
}

// AdminDeleteCategory removes a category. Its products are left uncategorised.
func AdminDeleteCategory(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id", "Category")
		if !ok {
			return
		}
		if err := svc.DeleteCategory(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// AdminListSellers lists sellers filtered by search and is_verified.
func AdminListSellers(svc *sellers.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		verified, err := queryBool(c, "is_verified")
		if err != nil {
			respondError(c, err)
			return
		}
		list, err := svc.List(c.Request.Context(), sellers.Filter{Search: c.Query("search"), IsVerified: verified})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, newSellers(list))
	}
}

// AdminUpdateSeller sets verification and rating.
func AdminUpdateSeller(svc *sellers.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id", "Seller")
		if !ok {
			return
		}
		var in sellers.AdminUpdate
		if !bindJSON(c, &in) {
			return
		}
		seller, err := svc.AdminUpdate(c.Request.Context(), id, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, newSeller(seller))
	}
}

// AdminDeleteSeller removes a seller along with its products.
func AdminDeleteSeller(svc *sellers.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id", "Seller")
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// AdminListProducts lists every product, inactive ones included unless
// is_active narrows it.
func AdminListProducts(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := productFilter(c)
		if err != nil {
			respondError(c, err)
			return
		}
		f.IncludeInactive = true
		products, err := svc.ListProducts(c.Request.Context(), f)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, newProducts(products))
	}
}

// AdminUpdateProduct edits activity and stock on any product.
func AdminUpdateProduct(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id", "Product")
		if !ok {
			return
		}
		var in catalog.AdminStockUpdate
		if !bindJSON(c, &in) {
			return
		}
		p, err := svc.AdminUpdateProduct(c.Request.Context(), id, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, newProduct(p))
	}
}

// ExportProducts downloads the filtered admin product list as .xlsx.
func ExportProducts(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := productFilter(c)
		if err != nil {
			respondError(c, err)
			return
		}
		f.IncludeInactive = true
		products, err := svc.ListProducts(c.Request.Context(), f)
		if err != nil {
			respondError(c, err)
			return
		}

		var buf bytes.Buffer
		if err := export.WriteProducts(&buf, products); err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", "attachment; filename=products.xlsx")
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	}
}
