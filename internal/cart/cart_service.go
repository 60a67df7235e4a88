package cart

import (
	"context"
	"errors"
	"time"

	autherrors "campus-marketplace/internal/auth/errors"
	carterrors "campus-marketplace/internal/cart/errors"
	"campus-marketplace/internal/pkg/apperror"
	"campus-marketplace/internal/product"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

//go:generate mockgen -source=cart_service.go -destination=../mock/cart/cart_service_mock.go -package=mock
type Service interface {
	GetOrCreateCart(ctx context.Context, userID string) (Cart, error)
	GetCart(ctx context.Context, userID string) (CartResponse, error)
	AddItem(ctx context.Context, userID string, req AddItemRequest) (CartResponse, error)
	RemoveItem(ctx context.Context, userID, productID string) (CartResponse, error)
	ClearCart(ctx context.Context, userID string) (CartResponse, error)
	Count(ctx context.Context, userID string) (int64, error)
	// Snapshot returns the stored cart without joining products and never creates one.
	Snapshot(ctx context.Context, userID string) (Cart, error)
}

type service struct {
	repo     Repository
	catalog  product.Catalog
	cache    Cache
	validate *validator.Validate
	logger   *zap.Logger
	sfg      singleflight.Group
}

type Deps struct {
	Repo    Repository
	Catalog product.Catalog
	Cache   Cache
	Logger  *zap.Logger
}

func NewService(deps Deps) Service {
	if deps.Repo == nil {
		panic("cart repository cannot be nil")
	}
	if deps.Catalog == nil {
		panic("product catalog cannot be nil")
	}
	if deps.Cache == nil {
		deps.Cache = NewNoopCache()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &service{
		repo:     deps.Repo,
		catalog:  deps.Catalog,
		cache:    deps.Cache,
		validate: validator.New(),
		logger:   deps.Logger.Named("cart.service"),
	}
}

// ========================
// helpers
// ========================

func (s *service) parseUserID(userID string) (uuid.UUID, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, autherrors.ErrInvalidUserID
	}
	return id, nil
}

func (s *service) parseProductID(productID string) (uuid.UUID, error) {
	id, err := uuid.Parse(productID)
	if err != nil {
		return uuid.Nil, carterrors.ErrInvalidProductID
	}
	return id, nil
}

// storageError passes typed errors through and hides everything else
// behind ErrCartFailed.
func (s *service) storageError(logger *zap.Logger, op string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	logger.Error("cart storage failure", zap.String("op", op), zap.Error(err))
	return carterrors.ErrCartFailed.WithCause(err)
}

// load reads through the cache; concurrent misses for one user share a
// single repository call. The cache version is read before the
// repository so a mutation landing mid-read keeps the result uncached.
func (s *service) load(ctx context.Context, uid uuid.UUID) (Cart, error) {
	v, err, _ := s.sfg.Do(uid.String(), func() (interface{}, error) {
		c, err := s.cache.Get(ctx, uid)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn("cache get error", zap.String("user_id", uid.String()), zap.Error(err))
		}

		version, verErr := s.cache.Version(ctx, uid)
		if verErr != nil {
			s.logger.Warn("cache version error", zap.String("user_id", uid.String()), zap.Error(verErr))
		}

		c, err = s.repo.GetOrCreate(ctx, uid)
		if err != nil {
			return Cart{}, err
		}

		if verErr != nil {
			return c, nil
		}
		switch err := s.cache.Set(ctx, c, version); {
		case errors.Is(err, ErrStaleCart):
			s.logger.Debug("cart changed during load, not cached", zap.String("user_id", uid.String()))
		case err != nil:
			s.logger.Warn("cache set error", zap.String("user_id", uid.String()), zap.Error(err))
		}
		return c, nil
	})
	if err != nil {
		return Cart{}, err
	}
	return v.(Cart), nil
}

// invalidate runs after every write. Callers arriving afterwards start a
// fresh flight instead of joining one that read the old cart.
func (s *service) invalidate(uid uuid.UUID) {
	s.sfg.Forget(uid.String())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, uid); err != nil {
		s.logger.Warn("cache invalidate error", zap.String("user_id", uid.String()), zap.Error(err))
	}
}

// ========================
// operations
// ========================

func (s *service) GetOrCreateCart(ctx context.Context, userID string) (Cart, error) {
	uid, err := s.parseUserID(userID)
	if err != nil {
		return Cart{}, err
	}

	c, err := s.load(ctx, uid)
	if err != nil {
		return Cart{}, s.storageError(s.logger.With(zap.String("user_id", userID)), "get_or_create", err)
	}
	return c, nil
}

func (s *service) GetCart(ctx context.Context, userID string) (CartResponse, error) {
	c, err := s.GetOrCreateCart(ctx, userID)
	if err != nil {
		return CartResponse{}, err
	}
	return s.toResponse(ctx, c)
}

func (s *service) AddItem(ctx context.Context, userID string, req AddItemRequest) (CartResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return CartResponse{}, carterrors.MapValidationError(err)
	}

	uid, err := s.parseUserID(userID)
	if err != nil {
		return CartResponse{}, err
	}

	pid, err := s.parseProductID(req.ProductID)
	if err != nil {
		return CartResponse{}, err
	}

	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}

	logger := s.logger.With(zap.String("user_id", userID), zap.String("product_id", req.ProductID))

	// unknown product: fail before touching any cart
	if _, err := s.catalog.GetByID(ctx, pid); err != nil {
		return CartResponse{}, err
	}

	c, err := s.repo.UpsertItem(ctx, uid, pid, qty)
	if err != nil {
		return CartResponse{}, s.storageError(logger, "add_item", err)
	}
	s.invalidate(uid)

	logger.Debug("item added", zap.Int32("quantity", qty))
	return s.toResponse(ctx, c)
}

func (s *service) RemoveItem(ctx context.Context, userID, productID string) (CartResponse, error) {
	uid, err := s.parseUserID(userID)
	if err != nil {
		return CartResponse{}, err
	}

	pid, err := s.parseProductID(productID)
	if err != nil {
		return CartResponse{}, err
	}

	c, err := s.repo.RemoveItem(ctx, uid, pid)
	if err != nil {
		return CartResponse{}, s.storageError(s.logger.With(zap.String("user_id", userID)), "remove_item", err)
	}
	s.invalidate(uid)

	return s.toResponse(ctx, c)
}

func (s *service) ClearCart(ctx context.Context, userID string) (CartResponse, error) {
	uid, err := s.parseUserID(userID)
	if err != nil {
		return CartResponse{}, err
	}

	c, err := s.repo.ClearItems(ctx, uid)
	if err != nil {
		return CartResponse{}, s.storageError(s.logger.With(zap.String("user_id", userID)), "clear", err)
	}
	s.invalidate(uid)

	return s.toResponse(ctx, c)
}

func (s *service) Count(ctx context.Context, userID string) (int64, error) {
	uid, err := s.parseUserID(userID)
	if err != nil {
		return 0, err
	}

	if c, err := s.cache.Get(ctx, uid); err == nil {
		return c.TotalQuantity(), nil
	}

	c, err := s.repo.GetByUserID(ctx, uid)
	if errors.Is(err, carterrors.ErrCartNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, s.storageError(s.logger.With(zap.String("user_id", userID)), "count", err)
	}
	return c.TotalQuantity(), nil
}

func (s *service) Snapshot(ctx context.Context, userID string) (Cart, error) {
	uid, err := s.parseUserID(userID)
	if err != nil {
		return Cart{}, err
	}

	c, err := s.repo.GetByUserID(ctx, uid)
	if err != nil {
		return Cart{}, s.storageError(s.logger.With(zap.String("user_id", userID)), "snapshot", err)
	}
	return c, nil
}

// toResponse joins live product data. Lines whose product no longer
// resolves are kept with a nil product and a zero line total.
func (s *service) toResponse(ctx context.Context, c Cart) (CartResponse, error) {
	res := CartResponse{
		ID:            c.ID.String(),
		UserID:        c.UserID.String(),
		Items:         make([]CartItemResponse, 0, len(c.Items)),
		TotalQuantity: c.TotalQuantity(),
		Subtotal:      decimal.Zero,
		UpdatedAt:     c.UpdatedAt.Format(time.RFC3339),
	}
	if len(c.Items) == 0 {
		return res, nil
	}

	products, err := s.catalog.GetByIDs(ctx, c.ProductIDs())
	if err != nil {
		return CartResponse{}, err
	}

	for _, it := range c.Items {
		item := CartItemResponse{
			ID:        it.ID.String(),
			ProductID: it.ProductID.String(),
			Quantity:  it.Quantity,
			LineTotal: decimal.Zero,
			AddedAt:   it.AddedAt.Format(time.RFC3339),
		}

		if p, ok := products[it.ProductID]; ok {
			item.Product = &CartProductResponse{
				ID:       p.ID.String(),
				Name:     p.Name,
				Price:    p.Price,
				ImageURL: p.ImageURL,
				Status:   p.Status,
			}
			item.LineTotal = p.Price.Mul(decimal.NewFromInt32(it.Quantity))
			res.Subtotal = res.Subtotal.Add(item.LineTotal)
		}

		res.Items = append(res.Items, item)
	}

	return res, nil
}
