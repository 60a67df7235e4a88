package checkout

import (
	"context"
	"database/sql"

	"campus-marketplace/internal/shared/database/dbgen"
	"campus-marketplace/internal/shared/database/helper"

	"github.com/google/uuid"
)

//go:generate mockgen -source=checkout_repo.go -destination=../mock/checkout/checkout_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx dbgen.DBTX) Repository

	CreateSession(ctx context.Context, arg dbgen.CreateCheckoutSessionParams) (dbgen.CheckoutSession, error)
	SetRedirect(ctx context.Context, id uuid.UUID, redirectURL string) error
	GetByOrderNumber(ctx context.Context, orderNumber string) (dbgen.CheckoutSession, error)
	// MarkPaid only moves PENDING sessions; it returns the affected row count.
	MarkPaid(ctx context.Context, orderNumber, paymentType string) (int64, error)
	// UpdateStatus only moves PENDING sessions; it returns the affected row count.
	UpdateStatus(ctx context.Context, orderNumber, status string) (int64, error)
	GetUser(ctx context.Context, id uuid.UUID) (dbgen.User, error)
}

type repository struct {
	queries *dbgen.Queries
}

func NewRepository(q *dbgen.Queries) Repository {
	return &repository{queries: q}
}

func (r *repository) WithTx(tx dbgen.DBTX) Repository {
	if sqlTx, ok := tx.(*sql.Tx); ok {
		return &repository{
			queries: r.queries.WithTx(sqlTx),
		}
	}
	return r
}

func (r *repository) CreateSession(ctx context.Context, arg dbgen.CreateCheckoutSessionParams) (dbgen.CheckoutSession, error) {
	return r.queries.CreateCheckoutSession(ctx, arg)
}

func (r *repository) SetRedirect(ctx context.Context, id uuid.UUID, redirectURL string) error {
	return r.queries.UpdateCheckoutSessionRedirect(ctx, dbgen.UpdateCheckoutSessionRedirectParams{
		ID:          id,
		RedirectUrl: helper.RawStringToNull(redirectURL),
	})
}

func (r *repository) GetByOrderNumber(ctx context.Context, orderNumber string) (dbgen.CheckoutSession, error) {
	return r.queries.GetCheckoutSessionByOrderNumber(ctx, orderNumber)
}

func (r *repository) MarkPaid(ctx context.Context, orderNumber, paymentType string) (int64, error) {
	return r.queries.MarkCheckoutSessionPaid(ctx, dbgen.MarkCheckoutSessionPaidParams{
		OrderNumber: orderNumber,
		PaymentType: helper.RawStringToNull(paymentType),
	})
}

func (r *repository) UpdateStatus(ctx context.Context, orderNumber, status string) (int64, error) {
	return r.queries.UpdateCheckoutSessionStatus(ctx, dbgen.UpdateCheckoutSessionStatusParams{
		OrderNumber: orderNumber,
		Status:      status,
	})
}

func (r *repository) GetUser(ctx context.Context, id uuid.UUID) (dbgen.User, error) {
	return r.queries.GetUserByID(ctx, id)
}
