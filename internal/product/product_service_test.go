package product_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	cloudinarymock "campus-marketplace/internal/mock/cloudinary"
	mock "campus-marketplace/internal/mock/product"
	"campus-marketplace/internal/product"
	producterrors "campus-marketplace/internal/product/errors"
	"campus-marketplace/internal/shared/database/dbgen"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func productRow(id uuid.UUID, price, image string) dbgen.Product {
	return dbgen.Product{
		ID:          id,
		SellerID:    uuid.NullUUID{UUID: uuid.New(), Valid: true},
		Name:        "Calculus textbook",
		Description: "Lightly used",
		Price:       price,
		ImageUrl:    sql.NullString{String: image, Valid: image != ""},
		Status:      product.StatusAvailable,
		CreatedAt:   time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestProductService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves image reference", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock.NewMockRepository(ctrl)
		images := cloudinarymock.NewMockService(ctrl)
		svc := product.NewService(repo, images, nil)
		id := uuid.New()

		repo.EXPECT().GetByID(gomock.Any(), id).Return(productRow(id, "45.90", "calc-book"), nil)
		images.EXPECT().ImageURL("calc-book").Return("https://res.cloudinary.com/demo/image/upload/calc-book", nil)

		p, err := svc.GetByID(ctx, id)

		require.NoError(t, err)
		assert.Equal(t, id, p.ID)
		assert.True(t, decimal.RequireFromString("45.90").Equal(p.Price))
		assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/calc-book", p.ImageURL)
	})

	t.Run("image failure falls back to the raw reference", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock.NewMockRepository(ctrl)
		images := cloudinarymock.NewMockService(ctrl)
		svc := product.NewService(repo, images, nil)
		id := uuid.New()

		repo.EXPECT().GetByID(gomock.Any(), id).Return(productRow(id, "10.00", "calc-book"), nil)
		images.EXPECT().ImageURL("calc-book").Return("", errors.New("bad transformation"))

		p, err := svc.GetByID(ctx, id)

		require.NoError(t, err)
		assert.Equal(t, "calc-book", p.ImageURL)
	})

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock.NewMockRepository(ctrl)
		svc := product.NewService(repo, nil, nil)
		id := uuid.New()

		repo.EXPECT().GetByID(gomock.Any(), id).Return(dbgen.Product{}, sql.ErrNoRows)

		_, err := svc.GetByID(ctx, id)

		assert.ErrorIs(t, err, producterrors.ErrProductNotFound)
	})

	t.Run("storage failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock.NewMockRepository(ctrl)
		svc := product.NewService(repo, nil, nil)
		id := uuid.New()

		repo.EXPECT().GetByID(gomock.Any(), id).Return(dbgen.Product{}, errors.New("timeout"))

		_, err := svc.GetByID(ctx, id)

		assert.ErrorIs(t, err, producterrors.ErrProductFailed)
	})
}

func TestProductService_GetByIDs(t *testing.T) {
	ctx := context.Background()

	t.Run("omits ids that do not resolve", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock.NewMockRepository(ctrl)
		svc := product.NewService(repo, nil, nil)
		found, missing := uuid.New(), uuid.New()

		repo.EXPECT().ListByIDs(gomock.Any(), []uuid.UUID{found, missing}).
			Return([]dbgen.Product{productRow(found, "3.50", "https://cdn.test/a.jpg")}, nil)

		got, err := svc.GetByIDs(ctx, []uuid.UUID{found, missing})

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "https://cdn.test/a.jpg", got[found].ImageURL)
		_, ok := got[missing]
		assert.False(t, ok)
	})

	t.Run("no ids skips the query", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := product.NewService(mock.NewMockRepository(ctrl), nil, nil)

		got, err := svc.GetByIDs(ctx, nil)

		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestProductService_Detail(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock.NewMockRepository(ctrl)
		svc := product.NewService(repo, nil, nil)
		id := uuid.New()
		row := productRow(id, "12.00", "")

		repo.EXPECT().GetByID(gomock.Any(), id).Return(row, nil)

		res, err := svc.Detail(ctx, id.String())

		require.NoError(t, err)
		assert.Equal(t, id.String(), res.ID)
		assert.Equal(t, row.SellerID.UUID.String(), res.SellerID)
		assert.Equal(t, "Lightly used", res.Description)
		assert.Empty(t, res.ImageURL)
		assert.Equal(t, "2026-02-01T09:00:00Z", res.CreatedAt)
	})

	t.Run("invalid id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := product.NewService(mock.NewMockRepository(ctrl), nil, nil)

		_, err := svc.Detail(ctx, "not-a-uuid")

		assert.ErrorIs(t, err, producterrors.ErrInvalidProductID)
	})
}
