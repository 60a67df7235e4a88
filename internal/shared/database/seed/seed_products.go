package seed

import (
	"context"
	"database/sql"

	"campus-marketplace/internal/shared/database/dbgen"
	"campus-marketplace/internal/shared/database/helper"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type productSeed struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Image       string
}

var products = []productSeed{
	{Name: "Calculus Early Transcendentals (used)", Description: "Some highlighting in chapters 1-3.", Price: decimal.RequireFromString("125000"), Image: "books/calculus"},
	{Name: "TI-84 Plus Calculator", Description: "Works fine, batteries included.", Price: decimal.RequireFromString("350000"), Image: "electronics/ti84"},
	{Name: "Desk Lamp", Description: "Warm white LED, USB powered.", Price: decimal.RequireFromString("80000")},
	{Name: "Lab Coat (M)", Description: "Worn for one semester.", Price: decimal.RequireFromString("100000"), Image: "apparel/lab-coat"},
}

// productID is stable per name so reseeding does not duplicate listings.
func productID(name string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("campus-marketplace/products/"+name))
}

// SeedProducts lists the demo products under sellerID. Existing rows are
// skipped.
func SeedProducts(ctx context.Context, db *sql.DB, sellerID uuid.UUID, logger *zap.Logger) error {
	q := dbgen.New(db)

	for _, p := range products {
		id := productID(p.Name)
		if _, err := q.GetProductByID(ctx, id); err == nil {
			logger.Info("skip seed product", zap.String("name", p.Name))
			continue
		}

		_, err := q.CreateProduct(ctx, dbgen.CreateProductParams{
			ID:          id,
			SellerID:    uuid.NullUUID{UUID: sellerID, Valid: true},
			Name:        p.Name,
			Description: p.Description,
			Price:       helper.DecimalToNumeric(p.Price),
			ImageUrl:    sql.NullString{String: p.Image, Valid: p.Image != ""},
			Status:      "AVAILABLE",
		})
		if err != nil {
			// usually a soft-deleted row with the same id
			logger.Warn("skip seed product", zap.String("name", p.Name), zap.Error(err))
			continue
		}

		logger.Info("seeded product", zap.String("name", p.Name), zap.String("id", id.String()))
	}

	return nil
}
