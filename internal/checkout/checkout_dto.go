package checkout

const (
	StatusPending = "PENDING"
	StatusPaid    = "PAID"
	StatusExpired = "EXPIRED"
	StatusFailed  = "FAILED"
)

// PaymentItem amounts are in minor currency units.
type PaymentItem struct {
	ID         string
	Name       string
	UnitAmount int64
	Quantity   int32
}

type Customer struct {
	Name  string
	Email string
}

type PaymentSessionRequest struct {
	OrderID     string
	Items       []PaymentItem
	Currency    string
	GrossAmount int64
	Customer    *Customer
	SuccessURL  string
	CancelURL   string
}

type PaymentSession struct {
	Token       string
	RedirectURL string
}

type CheckoutSessionResponse struct {
	URL     string `json:"url"`
	OrderID string `json:"orderId"`
}

// NotificationRequest is the payment provider's HTTP notification body.
type NotificationRequest struct {
	OrderID           string `json:"order_id" validate:"required"`
	StatusCode        string `json:"status_code" validate:"required"`
	GrossAmount       string `json:"gross_amount" validate:"required"`
	SignatureKey      string `json:"signature_key" validate:"required"`
	TransactionStatus string `json:"transaction_status" validate:"required"`
	TransactionTime   string `json:"transaction_time"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"`
}

type NotificationResponse struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}
