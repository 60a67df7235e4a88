package product

import (
	"context"

	"campus-marketplace/internal/shared/database/dbgen"
	"campus-marketplace/internal/shared/database/helper"

	"github.com/google/uuid"
)

//go:generate mockgen -source=product_repo.go -destination=../mock/product/product_repo_mock.go -package=mock
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (dbgen.Product, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]dbgen.Product, error)
}

type repository struct {
	queries *dbgen.Queries
}

func NewRepository(q *dbgen.Queries) Repository {
	return &repository{queries: q}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (dbgen.Product, error) {
	return r.queries.GetProductByID(ctx, id)
}

func (r *repository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]dbgen.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.queries.ListProductsByIDs(ctx, helper.UUIDsToStrings(ids))
}
