package checkout_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"campus-marketplace/internal/cart"
	carterrors "campus-marketplace/internal/cart/errors"
	"campus-marketplace/internal/checkout"
	checkouterrors "campus-marketplace/internal/checkout/errors"
	mock "campus-marketplace/internal/mock/checkout"
	outboxmock "campus-marketplace/internal/mock/outbox"
	productmock "campus-marketplace/internal/mock/product"
	"campus-marketplace/internal/outbox"
	"campus-marketplace/internal/product"
	"campus-marketplace/internal/shared/database/dbgen"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var fixedNow = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	db       sqlmock.Sqlmock
	repo     *mock.MockRepository
	outbox   *outboxmock.MockRepository
	cart     *mock.MockCartReader
	catalog  *productmock.MockCatalog
	provider *mock.MockPaymentProvider
	svc      checkout.Service
}

func newFixture(t *testing.T, timeout time.Duration) fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := fixture{
		db:       sqlMock,
		repo:     mock.NewMockRepository(ctrl),
		outbox:   outboxmock.NewMockRepository(ctrl),
		cart:     mock.NewMockCartReader(ctrl),
		catalog:  productmock.NewMockCatalog(ctrl),
		provider: mock.NewMockPaymentProvider(ctrl),
	}
	f.svc = checkout.NewService(checkout.Deps{
		DB:              db,
		Repo:            f.repo,
		OutboxRepo:      f.outbox,
		Cart:            f.cart,
		Catalog:         f.catalog,
		Provider:        f.provider,
		SuccessURL:      "https://campus.test/checkout/success",
		CancelURL:       "https://campus.test/cart",
		Currency:        "IDR",
		ProviderTimeout: timeout,
		Now:             func() time.Time { return fixedNow },
	})
	return f
}

func stored(userID uuid.UUID, lines map[uuid.UUID]int32, order ...uuid.UUID) cart.Cart {
	c := cart.Cart{ID: uuid.New(), UserID: userID}
	for _, pid := range order {
		c.Items = append(c.Items, cart.LineItem{ID: uuid.New(), ProductID: pid, Quantity: lines[pid]})
	}
	return c
}

func priced(id uuid.UUID, name, price string) product.Product {
	return product.Product{ID: id, Name: name, Price: decimal.RequireFromString(price), Status: product.StatusAvailable}
}

func TestCheckoutService_CreateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("prices the cart and returns the redirect", func(t *testing.T) {
		f := newFixture(t, time.Second)
		userID := uuid.New()
		book, pen := uuid.New(), uuid.New()
		c := stored(userID, map[uuid.UUID]int32{book: 2, pen: 1}, book, pen)
		sessionID := uuid.New()

		f.cart.EXPECT().Snapshot(gomock.Any(), userID.String()).Return(c, nil)
		f.catalog.EXPECT().GetByIDs(gomock.Any(), []uuid.UUID{book, pen}).Return(map[uuid.UUID]product.Product{
			book: priced(book, "Organic chemistry", "12.50"),
			pen:  priced(pen, "Pen set", "3.00"),
		}, nil)
		f.repo.EXPECT().CreateSession(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, arg dbgen.CreateCheckoutSessionParams) (dbgen.CheckoutSession, error) {
				assert.Equal(t, userID, arg.UserID)
				assert.Equal(t, int64(2800), arg.GrossAmount)
				assert.Equal(t, "IDR", arg.Currency)
				assert.True(t, strings.HasPrefix(arg.OrderNumber, "CM-1767225600-"))
				return dbgen.CheckoutSession{ID: sessionID, OrderNumber: arg.OrderNumber, UserID: userID, GrossAmount: arg.GrossAmount, Status: checkout.StatusPending}, nil
			})
		f.repo.EXPECT().GetUser(gomock.Any(), userID).Return(dbgen.User{ID: userID, Name: "Ana", Email: "ana@campus.test"}, nil)
		f.provider.EXPECT().CreateSession(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, req checkout.PaymentSessionRequest) (checkout.PaymentSession, error) {
				_, hasDeadline := ctx.Deadline()
				assert.True(t, hasDeadline)
				require.Len(t, req.Items, 2)
				assert.Equal(t, int64(1250), req.Items[0].UnitAmount)
				assert.Equal(t, int32(2), req.Items[0].Quantity)
				assert.Equal(t, int64(300), req.Items[1].UnitAmount)
				assert.Equal(t, int64(2800), req.GrossAmount)
				assert.Equal(t, "https://campus.test/checkout/success", req.SuccessURL)
				assert.Equal(t, "https://campus.test/cart", req.CancelURL)
				require.NotNil(t, req.Customer)
				assert.Equal(t, "ana@campus.test", req.Customer.Email)
				return checkout.PaymentSession{Token: "tok", RedirectURL: "https://pay.test/tok"}, nil
			})
		f.repo.EXPECT().SetRedirect(gomock.Any(), sessionID, "https://pay.test/tok").Return(nil)

		res, err := f.svc.CreateSession(ctx, userID.String())

		require.NoError(t, err)
		assert.Equal(t, "https://pay.test/tok", res.URL)
		assert.True(t, strings.HasPrefix(res.OrderID, "CM-1767225600-"))
		assert.Len(t, res.OrderID, len("CM-1767225600-")+4)
	})

	t.Run("no cart", func(t *testing.T) {
		f := newFixture(t, time.Second)
		userID := uuid.New()

		f.cart.EXPECT().Snapshot(gomock.Any(), userID.String()).Return(cart.Cart{}, carterrors.ErrCartNotFound)

		_, err := f.svc.CreateSession(ctx, userID.String())

		assert.ErrorIs(t, err, checkouterrors.ErrEmptyCart)
	})

	t.Run("cart without lines", func(t *testing.T) {
		f := newFixture(t, time.Second)
		userID := uuid.New()

		f.cart.EXPECT().Snapshot(gomock.Any(), userID.String()).Return(cart.Cart{ID: uuid.New(), UserID: userID}, nil)

		_, err := f.svc.CreateSession(ctx, userID.String())

		assert.ErrorIs(t, err, checkouterrors.ErrEmptyCart)
	})

	t.Run("every product gone", func(t *testing.T) {
		f := newFixture(t, time.Second)
		userID := uuid.New()
		gone := uuid.New()

		f.cart.EXPECT().Snapshot(gomock.Any(), userID.String()).
			Return(stored(userID, map[uuid.UUID]int32{gone: 1}, gone), nil)
		f.catalog.EXPECT().GetByIDs(gomock.Any(), []uuid.UUID{gone}).Return(map[uuid.UUID]product.Product{}, nil)

		_, err := f.svc.CreateSession(ctx, userID.String())

		assert.ErrorIs(t, err, checkouterrors.ErrEmptyCart)
	})

	t.Run("provider failure marks the session failed", func(t *testing.T) {
		f := newFixture(t, time.Second)
		userID := uuid.New()
		book := uuid.New()

		f.cart.EXPECT().Snapshot(gomock.Any(), userID.String()).
			Return(stored(userID, map[uuid.UUID]int32{book: 1}, book), nil)
		f.catalog.EXPECT().GetByIDs(gomock.Any(), gomock.Any()).
			Return(map[uuid.UUID]product.Product{book: priced(book, "Atlas", "20")}, nil)
		f.repo.EXPECT().CreateSession(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, arg dbgen.CreateCheckoutSessionParams) (dbgen.CheckoutSession, error) {
				return dbgen.CheckoutSession{ID: arg.ID, OrderNumber: arg.OrderNumber}, nil
			})
		f.repo.EXPECT().GetUser(gomock.Any(), userID).Return(dbgen.User{}, sql.ErrNoRows)
		f.provider.EXPECT().CreateSession(gomock.Any(), gomock.Any()).
			Return(checkout.PaymentSession{}, errors.New("503 service unavailable"))
		f.repo.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), checkout.StatusFailed).Return(int64(1), nil)

		_, err := f.svc.CreateSession(ctx, userID.String())

		assert.ErrorIs(t, err, checkouterrors.ErrPaymentUpstream)
	})

	t.Run("provider timeout is bounded", func(t *testing.T) {
		f := newFixture(t, 20*time.Millisecond)
		userID := uuid.New()
		book := uuid.New()

		f.cart.EXPECT().Snapshot(gomock.Any(), userID.String()).
			Return(stored(userID, map[uuid.UUID]int32{book: 1}, book), nil)
		f.catalog.EXPECT().GetByIDs(gomock.Any(), gomock.Any()).
			Return(map[uuid.UUID]product.Product{book: priced(book, "Atlas", "20")}, nil)
		f.repo.EXPECT().CreateSession(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, arg dbgen.CreateCheckoutSessionParams) (dbgen.CheckoutSession, error) {
				return dbgen.CheckoutSession{ID: arg.ID, OrderNumber: arg.OrderNumber}, nil
			})
		f.repo.EXPECT().GetUser(gomock.Any(), userID).Return(dbgen.User{}, nil)
		f.provider.EXPECT().CreateSession(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ checkout.PaymentSessionRequest) (checkout.PaymentSession, error) {
				<-ctx.Done()
				return checkout.PaymentSession{}, ctx.Err()
			})
		f.repo.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), checkout.StatusFailed).Return(int64(1), nil)

		start := time.Now()
		_, err := f.svc.CreateSession(ctx, userID.String())

		assert.ErrorIs(t, err, checkouterrors.ErrPaymentUpstream)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("session insert failure", func(t *testing.T) {
		f := newFixture(t, time.Second)
		userID := uuid.New()
		book := uuid.New()

		f.cart.EXPECT().Snapshot(gomock.Any(), userID.String()).
			Return(stored(userID, map[uuid.UUID]int32{book: 1}, book), nil)
		f.catalog.EXPECT().GetByIDs(gomock.Any(), gomock.Any()).
			Return(map[uuid.UUID]product.Product{book: priced(book, "Atlas", "20")}, nil)
		f.repo.EXPECT().CreateSession(gomock.Any(), gomock.Any()).Return(dbgen.CheckoutSession{}, errors.New("disk full"))

		_, err := f.svc.CreateSession(ctx, userID.String())

		assert.ErrorIs(t, err, checkouterrors.ErrCheckoutFailed)
	})
}

func notification(status string) checkout.NotificationRequest {
	return checkout.NotificationRequest{
		OrderID:           "CM-1767225600-AB12",
		StatusCode:        "200",
		GrossAmount:       "28000.00",
		SignatureKey:      "sig",
		TransactionStatus: status,
		PaymentType:       "bank_transfer",
	}
}

func pendingSession() dbgen.CheckoutSession {
	return dbgen.CheckoutSession{
		ID:          uuid.New(),
		OrderNumber: "CM-1767225600-AB12",
		UserID:      uuid.New(),
		GrossAmount: 2_800_000,
		Currency:    "IDR",
		Status:      checkout.StatusPending,
	}
}

func TestCheckoutService_HandleNotification(t *testing.T) {
	ctx := context.Background()

	t.Run("settlement marks paid and queues cart clear", func(t *testing.T) {
		f := newFixture(t, time.Second)
		session := pendingSession()
		n := notification("settlement")

		f.provider.EXPECT().VerifyNotification(n).Return(nil)
		f.repo.EXPECT().GetByOrderNumber(gomock.Any(), n.OrderID).Return(session, nil)
		f.db.ExpectBegin()
		f.repo.EXPECT().WithTx(gomock.Any()).Return(f.repo)
		f.repo.EXPECT().MarkPaid(gomock.Any(), session.OrderNumber, "bank_transfer").Return(int64(1), nil)
		f.outbox.EXPECT().WithTx(gomock.Any()).Return(f.outbox)
		f.outbox.EXPECT().CreateOutboxEvent(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, arg dbgen.CreateOutboxEventParams) error {
				assert.Equal(t, outbox.EventCartClear, arg.EventType)
				assert.Equal(t, outbox.AggregateCheckout, arg.AggregateType)
				assert.Equal(t, session.ID, arg.AggregateID)

				var payload outbox.CartClearPayload
				require.NoError(t, json.Unmarshal(arg.Payload, &payload))
				assert.Equal(t, session.UserID.String(), payload.UserID)
				assert.Equal(t, session.OrderNumber, payload.OrderNumber)
				return nil
			})
		f.db.ExpectCommit()

		res, err := f.svc.HandleNotification(ctx, n)

		require.NoError(t, err)
		assert.Equal(t, checkout.StatusPaid, res.Status)
		assert.NoError(t, f.db.ExpectationsWereMet())
	})

	t.Run("capture accepted counts as paid", func(t *testing.T) {
		f := newFixture(t, time.Second)
		session := pendingSession()
		n := notification("capture")
		n.FraudStatus = "accept"

		f.provider.EXPECT().VerifyNotification(n).Return(nil)
		f.repo.EXPECT().GetByOrderNumber(gomock.Any(), n.OrderID).Return(session, nil)
		f.db.ExpectBegin()
		f.repo.EXPECT().WithTx(gomock.Any()).Return(f.repo)
		f.repo.EXPECT().MarkPaid(gomock.Any(), session.OrderNumber, "bank_transfer").Return(int64(1), nil)
		f.outbox.EXPECT().WithTx(gomock.Any()).Return(f.outbox)
		f.outbox.EXPECT().CreateOutboxEvent(gomock.Any(), gomock.Any()).Return(nil)
		f.db.ExpectCommit()

		res, err := f.svc.HandleNotification(ctx, n)

		require.NoError(t, err)
		assert.Equal(t, checkout.StatusPaid, res.Status)
	})

	t.Run("replayed settlement is a no-op", func(t *testing.T) {
		f := newFixture(t, time.Second)
		session := pendingSession()
		session.Status = checkout.StatusPaid
		n := notification("settlement")

		f.provider.EXPECT().VerifyNotification(n).Return(nil)
		f.repo.EXPECT().GetByOrderNumber(gomock.Any(), n.OrderID).Return(session, nil)
		f.db.ExpectBegin()
		f.repo.EXPECT().WithTx(gomock.Any()).Return(f.repo)
		f.repo.EXPECT().MarkPaid(gomock.Any(), session.OrderNumber, "bank_transfer").Return(int64(0), nil)
		f.db.ExpectRollback()

		res, err := f.svc.HandleNotification(ctx, n)

		require.NoError(t, err)
		assert.Equal(t, checkout.StatusPaid, res.Status)
		assert.NoError(t, f.db.ExpectationsWereMet())
	})

	t.Run("gross amount mismatch", func(t *testing.T) {
		f := newFixture(t, time.Second)
		n := notification("settlement")
		n.GrossAmount = "1.00"

		f.provider.EXPECT().VerifyNotification(n).Return(nil)
		f.repo.EXPECT().GetByOrderNumber(gomock.Any(), n.OrderID).Return(pendingSession(), nil)

		_, err := f.svc.HandleNotification(ctx, n)

		assert.ErrorIs(t, err, checkouterrors.ErrGrossAmountMismatch)
	})

	t.Run("gross amount in minor units rejected", func(t *testing.T) {
		f := newFixture(t, time.Second)
		n := notification("settlement")
		n.GrossAmount = "2800000.00"

		f.provider.EXPECT().VerifyNotification(n).Return(nil)
		f.repo.EXPECT().GetByOrderNumber(gomock.Any(), n.OrderID).Return(pendingSession(), nil)

		_, err := f.svc.HandleNotification(ctx, n)

		assert.ErrorIs(t, err, checkouterrors.ErrGrossAmountMismatch)
	})

	t.Run("expire", func(t *testing.T) {
		f := newFixture(t, time.Second)
		n := notification("expire")

		f.provider.EXPECT().VerifyNotification(n).Return(nil)
		f.repo.EXPECT().GetByOrderNumber(gomock.Any(), n.OrderID).Return(pendingSession(), nil)
		f.repo.EXPECT().UpdateStatus(gomock.Any(), n.OrderID, checkout.StatusExpired).Return(int64(1), nil)

		res, err := f.svc.HandleNotification(ctx, n)

		require.NoError(t, err)
		assert.Equal(t, checkout.StatusExpired, res.Status)
	})

	t.Run("deny", func(t *testing.T) {
		f := newFixture(t, time.Second)
		n := notification("deny")

		f.provider.EXPECT().VerifyNotification(n).Return(nil)
		f.repo.EXPECT().GetByOrderNumber(gomock.Any(), n.OrderID).Return(pendingSession(), nil)
		f.repo.EXPECT().UpdateStatus(gomock.Any(), n.OrderID, checkout.StatusFailed).Return(int64(1), nil)

		res, err := f.svc.HandleNotification(ctx, n)

		require.NoError(t, err)
		assert.Equal(t, checkout.StatusFailed, res.Status)
	})

	t.Run("pending is acknowledged", func(t *testing.T) {
		f := newFixture(t, time.Second)
		n := notification("pending")

		f.provider.EXPECT().VerifyNotification(n).Return(nil)
		f.repo.EXPECT().GetByOrderNumber(gomock.Any(), n.OrderID).Return(pendingSession(), nil)

		res, err := f.svc.HandleNotification(ctx, n)

		require.NoError(t, err)
		assert.Equal(t, checkout.StatusPending, res.Status)
	})

	t.Run("bad signature", func(t *testing.T) {
		f := newFixture(t, time.Second)
		n := notification("settlement")

		f.provider.EXPECT().VerifyNotification(n).Return(checkouterrors.ErrInvalidSignature)

		_, err := f.svc.HandleNotification(ctx, n)

		assert.ErrorIs(t, err, checkouterrors.ErrInvalidSignature)
	})

	t.Run("unknown order", func(t *testing.T) {
		f := newFixture(t, time.Second)
		n := notification("settlement")

		f.provider.EXPECT().VerifyNotification(n).Return(nil)
		f.repo.EXPECT().GetByOrderNumber(gomock.Any(), n.OrderID).Return(dbgen.CheckoutSession{}, sql.ErrNoRows)

		_, err := f.svc.HandleNotification(ctx, n)

		assert.ErrorIs(t, err, checkouterrors.ErrSessionNotFound)
	})

	t.Run("incomplete payload", func(t *testing.T) {
		f := newFixture(t, time.Second)

		_, err := f.svc.HandleNotification(ctx, checkout.NotificationRequest{OrderID: "CM-1"})

		assert.ErrorIs(t, err, checkouterrors.ErrInvalidNotification)
	})
}
