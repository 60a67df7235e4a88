package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	carterrors "campus-marketplace/internal/cart/errors"
	"campus-marketplace/internal/shared/database/dbgen"

	"github.com/google/uuid"
)

// Repository persists carts. Every mutation is a single atomic storage
// operation keyed by (user, product); there is no load-modify-save.
// Not-found conditions come back as carterrors sentinels.
//
//go:generate mockgen -source=cart_repo.go -destination=../mock/cart/cart_repo_mock.go -package=mock
type Repository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (Cart, error)
	GetOrCreate(ctx context.Context, userID uuid.UUID) (Cart, error)
	// UpsertItem increments the quantity of an existing line or inserts a new one.
	UpsertItem(ctx context.Context, userID, productID uuid.UUID, qty int32) (Cart, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (Cart, error)
	// ClearItems empties the cart, creating it when missing.
	ClearItems(ctx context.Context, userID uuid.UUID) (Cart, error)
}

type repository struct {
	db      *sql.DB
	queries *dbgen.Queries
}

func NewRepository(db *sql.DB) Repository {
	return &repository{
		db:      db,
		queries: dbgen.New(db),
	}
}

func (r *repository) GetByUserID(ctx context.Context, userID uuid.UUID) (Cart, error) {
	c, err := r.queries.GetCartByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Cart{}, carterrors.ErrCartNotFound
		}
		return Cart{}, fmt.Errorf("get cart: %w", err)
	}
	return r.load(ctx, r.queries, c)
}

func (r *repository) GetOrCreate(ctx context.Context, userID uuid.UUID) (Cart, error) {
	c, err := r.queries.UpsertCart(ctx, dbgen.UpsertCartParams{
		ID:     uuid.New(),
		UserID: userID,
	})
	if err != nil {
		return Cart{}, fmt.Errorf("upsert cart: %w", err)
	}
	return r.load(ctx, r.queries, c)
}

func (r *repository) UpsertItem(ctx context.Context, userID, productID uuid.UUID, qty int32) (Cart, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Cart{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)

	c, err := q.UpsertCart(ctx, dbgen.UpsertCartParams{ID: uuid.New(), UserID: userID})
	if err != nil {
		return Cart{}, fmt.Errorf("upsert cart: %w", err)
	}

	// ON CONFLICT (cart_id, product_id) adds to the stored quantity; no row
	// comes back when the merged quantity would pass MaxItemQuantity
	if _, err := q.UpsertCartItem(ctx, dbgen.UpsertCartItemParams{
		ID:        uuid.New(),
		CartID:    c.ID,
		ProductID: productID,
		Quantity:  qty,
	}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Cart{}, carterrors.ErrQuantityLimit
		}
		return Cart{}, fmt.Errorf("upsert cart item: %w", err)
	}

	if err := q.TouchCart(ctx, c.ID); err != nil {
		return Cart{}, fmt.Errorf("touch cart: %w", err)
	}

	out, err := r.load(ctx, q, c)
	if err != nil {
		return Cart{}, err
	}

	if err := tx.Commit(); err != nil {
		return Cart{}, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

func (r *repository) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (Cart, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Cart{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)

	c, err := q.GetCartByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Cart{}, carterrors.ErrCartNotFound
		}
		return Cart{}, fmt.Errorf("get cart: %w", err)
	}

	n, err := q.DeleteCartItem(ctx, dbgen.DeleteCartItemParams{CartID: c.ID, ProductID: productID})
	if err != nil {
		return Cart{}, fmt.Errorf("delete cart item: %w", err)
	}
	if n == 0 {
		return Cart{}, carterrors.ErrCartItemNotFound
	}

	if err := q.TouchCart(ctx, c.ID); err != nil {
		return Cart{}, fmt.Errorf("touch cart: %w", err)
	}

	out, err := r.load(ctx, q, c)
	if err != nil {
		return Cart{}, err
	}

	if err := tx.Commit(); err != nil {
		return Cart{}, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

func (r *repository) ClearItems(ctx context.Context, userID uuid.UUID) (Cart, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Cart{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)

	c, err := q.UpsertCart(ctx, dbgen.UpsertCartParams{ID: uuid.New(), UserID: userID})
	if err != nil {
		return Cart{}, fmt.Errorf("upsert cart: %w", err)
	}

	if err := q.DeleteAllCartItems(ctx, c.ID); err != nil {
		return Cart{}, fmt.Errorf("delete cart items: %w", err)
	}

	if err := q.TouchCart(ctx, c.ID); err != nil {
		return Cart{}, fmt.Errorf("touch cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Cart{}, fmt.Errorf("commit: %w", err)
	}

	return toCart(c, nil), nil
}

func (r *repository) load(ctx context.Context, q *dbgen.Queries, c dbgen.Cart) (Cart, error) {
	items, err := q.ListCartItems(ctx, c.ID)
	if err != nil {
		return Cart{}, fmt.Errorf("list cart items: %w", err)
	}
	return toCart(c, items), nil
}

func toCart(c dbgen.Cart, rows []dbgen.CartItem) Cart {
	items := make([]LineItem, 0, len(rows))
	for _, it := range rows {
		items = append(items, LineItem{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			AddedAt:   it.CreatedAt,
		})
	}
	return Cart{
		ID:        c.ID,
		UserID:    c.UserID,
		Items:     items,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
