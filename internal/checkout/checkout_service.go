package checkout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	carterrors "campus-marketplace/internal/cart/errors"
	checkouterrors "campus-marketplace/internal/checkout/errors"
	"campus-marketplace/internal/outbox"
	"campus-marketplace/internal/pkg/apperror"
	"campus-marketplace/internal/product"
	"campus-marketplace/internal/shared/database/dbgen"
	"campus-marketplace/internal/shared/database/helper"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultProviderTimeout = 10 * time.Second

//go:generate mockgen -source=checkout_service.go -destination=../mock/checkout/checkout_service_mock.go -package=mock
type Service interface {
	CreateSession(ctx context.Context, userID string) (CheckoutSessionResponse, error)
	HandleNotification(ctx context.Context, req NotificationRequest) (NotificationResponse, error)
}

type service struct {
	db              *sql.DB
	repo            Repository
	outboxRepo      outbox.Repository
	cart            CartReader
	catalog         product.Catalog
	provider        PaymentProvider
	successURL      string
	cancelURL       string
	currency        string
	providerTimeout time.Duration
	validate        *validator.Validate
	now             func() time.Time
	logger          *zap.Logger
}

type Deps struct {
	DB         *sql.DB
	Repo       Repository
	OutboxRepo outbox.Repository
	Cart       CartReader
	Catalog    product.Catalog
	Provider   PaymentProvider

	SuccessURL      string
	CancelURL       string
	Currency        string
	ProviderTimeout time.Duration

	Now    func() time.Time
	Logger *zap.Logger
}

func NewService(deps Deps) Service {
	if deps.DB == nil {
		panic("db cannot be nil")
	}
	if deps.Repo == nil || deps.OutboxRepo == nil {
		panic("checkout repositories cannot be nil")
	}
	if deps.Cart == nil || deps.Catalog == nil || deps.Provider == nil {
		panic("checkout collaborators cannot be nil")
	}
	if deps.ProviderTimeout <= 0 {
		deps.ProviderTimeout = defaultProviderTimeout
	}
	if deps.Currency == "" {
		deps.Currency = "IDR"
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &service{
		db:              deps.DB,
		repo:            deps.Repo,
		outboxRepo:      deps.OutboxRepo,
		cart:            deps.Cart,
		catalog:         deps.Catalog,
		provider:        deps.Provider,
		successURL:      deps.SuccessURL,
		cancelURL:       deps.CancelURL,
		currency:        deps.Currency,
		providerTimeout: deps.ProviderTimeout,
		validate:        validator.New(),
		now:             deps.Now,
		logger:          deps.Logger.Named("checkout.service"),
	}
}

// CreateSession prices the cart at current catalog prices and opens a hosted
// payment session. The cart itself is never modified here.
func (s *service) CreateSession(ctx context.Context, userID string) (CheckoutSessionResponse, error) {
	logger := s.logger.With(zap.String("user_id", userID))

	c, err := s.cart.Snapshot(ctx, userID)
	if err != nil {
		if errors.Is(err, carterrors.ErrCartNotFound) {
			return CheckoutSessionResponse{}, checkouterrors.ErrEmptyCart
		}
		return CheckoutSessionResponse{}, err
	}
	if len(c.Items) == 0 {
		return CheckoutSessionResponse{}, checkouterrors.ErrEmptyCart
	}

	products, err := s.catalog.GetByIDs(ctx, c.ProductIDs())
	if err != nil {
		return CheckoutSessionResponse{}, s.storageError(logger, "catalog", err)
	}

	items := make([]PaymentItem, 0, len(c.Items))
	var gross int64
	for _, it := range c.Items {
		p, ok := products[it.ProductID]
		if !ok {
			logger.Warn("skipping unresolvable cart item", zap.String("product_id", it.ProductID.String()))
			continue
		}
		unit := helper.ToMinorUnits(p.Price)
		items = append(items, PaymentItem{
			ID:         p.ID.String(),
			Name:       p.Name,
			UnitAmount: unit,
			Quantity:   it.Quantity,
		})
		gross += unit * int64(it.Quantity)
	}
	if len(items) == 0 {
		return CheckoutSessionResponse{}, checkouterrors.ErrEmptyCart
	}

	orderNumber := s.newOrderNumber()
	session, err := s.repo.CreateSession(ctx, dbgen.CreateCheckoutSessionParams{
		ID:          uuid.New(),
		OrderNumber: orderNumber,
		UserID:      c.UserID,
		GrossAmount: gross,
		Currency:    s.currency,
	})
	if err != nil {
		return CheckoutSessionResponse{}, s.storageError(logger, "create session", err)
	}

	logger = logger.With(zap.String("order_number", orderNumber))

	pctx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()

	ps, err := s.provider.CreateSession(pctx, PaymentSessionRequest{
		OrderID:     orderNumber,
		Items:       items,
		Currency:    s.currency,
		GrossAmount: gross,
		Customer:    s.customer(ctx, logger, c.UserID),
		SuccessURL:  s.successURL,
		CancelURL:   s.cancelURL,
	})
	if err == nil && ps.RedirectURL == "" {
		err = errors.New("payment provider returned no redirect url")
	}
	if err != nil {
		logger.Error("payment provider failed", zap.Error(err))
		if _, mErr := s.repo.UpdateStatus(context.WithoutCancel(ctx), orderNumber, StatusFailed); mErr != nil {
			logger.Warn("failed to mark session failed", zap.Error(mErr))
		}
		return CheckoutSessionResponse{}, checkouterrors.ErrPaymentUpstream.WithCause(err)
	}

	if err := s.repo.SetRedirect(ctx, session.ID, ps.RedirectURL); err != nil {
		logger.Warn("failed to store redirect url", zap.Error(err))
	}

	logger.Info("checkout session created", zap.Int64("gross_amount", gross), zap.Int("items", len(items)))

	return CheckoutSessionResponse{
		URL:     ps.RedirectURL,
		OrderID: orderNumber,
	}, nil
}

// HandleNotification applies a verified provider notification to its session.
// Notifications for sessions that already left PENDING change nothing.
func (s *service) HandleNotification(ctx context.Context, req NotificationRequest) (NotificationResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return NotificationResponse{}, checkouterrors.ErrInvalidNotification
	}

	if err := s.provider.VerifyNotification(req); err != nil {
		return NotificationResponse{}, err
	}

	logger := s.logger.With(
		zap.String("order_number", req.OrderID),
		zap.String("transaction_status", req.TransactionStatus),
	)

	session, err := s.repo.GetByOrderNumber(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NotificationResponse{}, checkouterrors.ErrSessionNotFound
		}
		return NotificationResponse{}, s.storageError(logger, "get session", err)
	}

	status := strings.ToLower(strings.TrimSpace(req.TransactionStatus))
	switch {
	case status == "settlement" || (status == "capture" && strings.EqualFold(req.FraudStatus, "accept")):
		return s.markPaid(ctx, logger, session, req)
	case status == "expire":
		return s.transition(ctx, logger, session, StatusExpired)
	case status == "cancel" || status == "deny":
		return s.transition(ctx, logger, session, StatusFailed)
	default:
		logger.Info("notification acknowledged without change")
		return NotificationResponse{OrderID: session.OrderNumber, Status: session.Status}, nil
	}
}

func (s *service) markPaid(ctx context.Context, logger *zap.Logger, session dbgen.CheckoutSession, req NotificationRequest) (NotificationResponse, error) {
	gross, err := decimal.NewFromString(strings.TrimSpace(req.GrossAmount))
	if err != nil {
		return NotificationResponse{}, checkouterrors.ErrInvalidNotification
	}
	// the provider notifies in major units; sessions store minor units
	if helper.ToMinorUnits(gross) != session.GrossAmount {
		logger.Warn("gross amount mismatch",
			zap.String("notified", req.GrossAmount),
			zap.Int64("stored", session.GrossAmount),
		)
		return NotificationResponse{}, checkouterrors.ErrGrossAmountMismatch
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return NotificationResponse{}, s.storageError(logger, "begin tx", err)
	}
	defer tx.Rollback()

	rows, err := s.repo.WithTx(tx).MarkPaid(ctx, session.OrderNumber, req.PaymentType)
	if err != nil {
		return NotificationResponse{}, s.storageError(logger, "mark paid", err)
	}
	if rows == 0 {
		logger.Info("session already finalised", zap.String("status", session.Status))
		return NotificationResponse{OrderID: session.OrderNumber, Status: session.Status}, nil
	}

	event, err := outbox.NewEvent(outbox.AggregateCheckout, session.ID, outbox.EventCartClear, outbox.CartClearPayload{
		UserID:      session.UserID.String(),
		OrderID:     session.ID.String(),
		OrderNumber: session.OrderNumber,
	})
	if err != nil {
		return NotificationResponse{}, s.storageError(logger, "build outbox event", err)
	}

	if err := s.outboxRepo.WithTx(tx).CreateOutboxEvent(ctx, event); err != nil {
		return NotificationResponse{}, s.storageError(logger, "create outbox event", err)
	}

	if err := tx.Commit(); err != nil {
		return NotificationResponse{}, s.storageError(logger, "commit", err)
	}

	logger.Info("checkout session paid", zap.String("payment_type", req.PaymentType))
	return NotificationResponse{OrderID: session.OrderNumber, Status: StatusPaid}, nil
}

func (s *service) transition(ctx context.Context, logger *zap.Logger, session dbgen.CheckoutSession, next string) (NotificationResponse, error) {
	rows, err := s.repo.UpdateStatus(ctx, session.OrderNumber, next)
	if err != nil {
		return NotificationResponse{}, s.storageError(logger, "update status", err)
	}
	if rows == 0 {
		logger.Info("session already finalised", zap.String("status", session.Status))
		return NotificationResponse{OrderID: session.OrderNumber, Status: session.Status}, nil
	}

	logger.Info("checkout session closed", zap.String("status", next))
	return NotificationResponse{OrderID: session.OrderNumber, Status: next}, nil
}

// customer is best effort; checkout proceeds without customer details.
func (s *service) customer(ctx context.Context, logger *zap.Logger, userID uuid.UUID) *Customer {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		logger.Warn("customer lookup failed", zap.Error(err))
		return nil
	}
	return &Customer{Name: u.Name, Email: u.Email}
}

func (s *service) newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return fmt.Sprintf("CM-%d-%s", s.now().Unix(), suffix)
}

func (s *service) storageError(logger *zap.Logger, op string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	logger.Error("checkout storage failure", zap.String("op", op), zap.Error(err))
	return checkouterrors.ErrCheckoutFailed.WithCause(err)
}
