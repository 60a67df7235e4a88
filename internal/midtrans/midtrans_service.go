package midtrans

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campus-marketplace/internal/checkout"
	checkouterrors "campus-marketplace/internal/checkout/errors"

	midtransgo "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const (
	// snap rejects item names longer than this
	maxItemNameLength = 50

	minorPerRupiah = 100
)

// ErrFractionalAmount is returned for amounts snap cannot charge: it only
// accepts whole rupiah.
var ErrFractionalAmount = errors.New("amount is not a whole rupiah")

type Config struct {
	ServerKey    string
	IsProduction bool
}

type snapClient interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtransgo.Error)
}

// Adapter is the snap-backed checkout.PaymentProvider.
type Adapter struct {
	client    snapClient
	serverKey string
	breaker   *gobreaker.CircuitBreaker[*snap.Response]
	logger    *zap.Logger
}

var _ checkout.PaymentProvider = (*Adapter)(nil)

func NewAdapter(cfg Config, logger *zap.Logger) *Adapter {
	env := midtransgo.Sandbox
	if cfg.IsProduction {
		env = midtransgo.Production
	}

	c := &snap.Client{}
	c.New(cfg.ServerKey, env)

	return newAdapter(c, cfg.ServerKey, logger)
}

func newAdapter(client snapClient, serverKey string, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("midtrans")

	breaker := gobreaker.NewCircuitBreaker[*snap.Response](gobreaker.Settings{
		Name:        "midtrans-snap",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Adapter{
		client:    client,
		serverKey: serverKey,
		breaker:   breaker,
		logger:    logger,
	}
}

func (a *Adapter) CreateSession(ctx context.Context, req checkout.PaymentSessionRequest) (checkout.PaymentSession, error) {
	snapReq, err := toSnapRequest(req)
	if err != nil {
		return checkout.PaymentSession{}, fmt.Errorf("midtrans create transaction %s: %w", req.OrderID, err)
	}

	resp, err := a.breaker.Execute(func() (*snap.Response, error) {
		return a.createTransaction(ctx, snapReq)
	})
	if err != nil {
		return checkout.PaymentSession{}, fmt.Errorf("midtrans create transaction %s: %w", req.OrderID, err)
	}

	return checkout.PaymentSession{
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
	}, nil
}

// createTransaction bounds the blocking snap call by ctx. A call that outlives
// ctx finishes in the background and its result is dropped.
func (a *Adapter) createTransaction(ctx context.Context, req *snap.Request) (*snap.Response, error) {
	type result struct {
		resp *snap.Response
		err  error
	}

	done := make(chan result, 1)
	go func() {
		resp, mErr := a.client.CreateTransaction(req)
		if mErr != nil {
			done <- result{err: mErr}
			return
		}
		done <- result{resp: resp}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.resp, r.err
	}
}

func (a *Adapter) VerifyNotification(n checkout.NotificationRequest) error {
	if a.serverKey == "" {
		return checkouterrors.ErrServerKeyNotConfigured
	}
	if !VerifySignature(n.OrderID, n.StatusCode, n.GrossAmount, a.serverKey, n.SignatureKey) {
		a.logger.Warn("invalid notification signature", zap.String("order_number", n.OrderID))
		return checkouterrors.ErrInvalidSignature
	}
	return nil
}

// toRupiah converts checkout minor units into the whole rupiah snap charges.
func toRupiah(minor int64) (int64, error) {
	if minor%minorPerRupiah != 0 {
		return 0, fmt.Errorf("%w: %d", ErrFractionalAmount, minor)
	}
	return minor / minorPerRupiah, nil
}

func toSnapRequest(req checkout.PaymentSessionRequest) (*snap.Request, error) {
	items := make([]midtransgo.ItemDetails, 0, len(req.Items))
	for _, it := range req.Items {
		price, err := toRupiah(it.UnitAmount)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", it.ID, err)
		}
		items = append(items, midtransgo.ItemDetails{
			ID:    it.ID,
			Name:  truncate(it.Name, maxItemNameLength),
			Price: price,
			Qty:   it.Quantity,
		})
	}

	gross, err := toRupiah(req.GrossAmount)
	if err != nil {
		return nil, fmt.Errorf("gross amount: %w", err)
	}

	snapReq := &snap.Request{
		TransactionDetails: midtransgo.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: gross,
		},
		Items: &items,
	}

	if req.Customer != nil {
		snapReq.CustomerDetail = &midtransgo.CustomerDetails{
			FName: req.Customer.Name,
			Email: req.Customer.Email,
		}
	}

	// snap takes only a finish redirect; the unfinish and error redirects
	// are set on the merchant dashboard, so CancelURL is not sent.
	if req.SuccessURL != "" {
		snapReq.Callbacks = &snap.Callbacks{Finish: req.SuccessURL}
	}

	return snapReq, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
