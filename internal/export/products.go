// Package export renders catalog data as spreadsheets for staff.
package export

import (
	"fmt"
	"io"

	"github.com/tealeg/xlsx"

	"marketplace-backend/internal/models"
)

const timeLayout = "2006-01-02 15:04:05"

var productHeaders = []string{
	"ID", "Seller", "Store", "Category", "Name", "Description",
	"Price", "Stock", "Active", "Views", "Sales", "CreatedAt", "UpdatedAt",
}

// WriteProducts writes one sheet with a header row and a row per product.
// Seller and Category are read from the preloaded associations when set.
func WriteProducts(w io.Writer, products []models.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range productHeaders {
		header.AddCell().SetString(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(p.ID))
		row.AddCell().SetInt(int(p.SellerID))
		store := ""
		if p.Seller != nil {
			store = p.Seller.StoreName
		}
		row.AddCell().SetString(store)
		category := ""
		if p.Category != nil {
			category = p.Category.Name
		}
		row.AddCell().SetString(category)
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Description)
		price, _ := p.Price.Float64()
		row.AddCell().SetFloatWithFormat(price, "0.00")
		row.AddCell().SetInt(p.StockQuantity)
		row.AddCell().SetBool(p.IsActive)
		row.AddCell().SetInt(p.ViewsCount)
		row.AddCell().SetInt(p.SalesCount)
		row.AddCell().SetString(p.CreatedAt.Format(timeLayout))
		row.AddCell().SetString(p.UpdatedAt.Format(timeLayout))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
