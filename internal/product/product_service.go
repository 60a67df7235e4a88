package product

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"campus-marketplace/internal/cloudinary"
	producterrors "campus-marketplace/internal/product/errors"
	"campus-marketplace/internal/shared/database/dbgen"
	"campus-marketplace/internal/shared/database/helper"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Catalog is the read-only lookup the cart and checkout resolve products
// through. Prices are always read live.
//
//go:generate mockgen -source=product_service.go -destination=../mock/product/product_service_mock.go -package=mock
type Catalog interface {
	GetByID(ctx context.Context, id uuid.UUID) (Product, error)
	// GetByIDs silently omits ids that no longer resolve.
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Product, error)
}

type Service interface {
	Catalog
	Detail(ctx context.Context, id string) (ProductResponse, error)
}

type service struct {
	repo   Repository
	images cloudinary.Service
	logger *zap.Logger
}

func NewService(repo Repository, images cloudinary.Service, logger *zap.Logger) Service {
	if images == nil {
		images = cloudinary.NewPassthrough()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		repo:   repo,
		images: images,
		logger: logger.Named("product.service"),
	}
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (Product, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, producterrors.ErrProductNotFound
		}
		s.logger.Error("failed to load product", zap.String("product_id", id.String()), zap.Error(err))
		return Product{}, producterrors.ErrProductFailed.WithCause(err)
	}
	return s.toProduct(row)
}

func (s *service) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Product, error) {
	out := make(map[uuid.UUID]Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := s.repo.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("failed to load products", zap.Int("count", len(ids)), zap.Error(err))
		return nil, producterrors.ErrProductFailed.WithCause(err)
	}

	for _, row := range rows {
		p, err := s.toProduct(row)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, nil
}

func (s *service) Detail(ctx context.Context, id string) (ProductResponse, error) {
	pid, err := uuid.Parse(id)
	if err != nil {
		return ProductResponse{}, producterrors.ErrInvalidProductID
	}

	row, err := s.repo.GetByID(ctx, pid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ProductResponse{}, producterrors.ErrProductNotFound
		}
		return ProductResponse{}, producterrors.ErrProductFailed.WithCause(err)
	}

	p, err := s.toProduct(row)
	if err != nil {
		return ProductResponse{}, err
	}

	res := ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: row.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Status:      p.Status,
		CreatedAt:   row.CreatedAt.Format(time.RFC3339),
	}
	if row.SellerID.Valid {
		res.SellerID = row.SellerID.UUID.String()
	}
	return res, nil
}

func (s *service) toProduct(row dbgen.Product) (Product, error) {
	price, err := helper.NumericToDecimal(row.Price)
	if err != nil {
		return Product{}, producterrors.ErrProductFailed.WithCause(err)
	}

	return Product{
		ID:       row.ID,
		Name:     row.Name,
		Price:    price,
		ImageURL: s.resolveImage(row),
		Status:   row.Status,
	}, nil
}

// resolveImage never fails the lookup; a bad reference falls back to the raw value.
func (s *service) resolveImage(row dbgen.Product) string {
	ref := helper.NullStringValue(row.ImageUrl)
	if ref == "" {
		return ""
	}
	url, err := s.images.ImageURL(ref)
	if err != nil {
		s.logger.Warn("image resolve failed", zap.String("product_id", row.ID.String()), zap.Error(err))
		return ref
	}
	return url
}
