package midtrans

// Snap transaction request, as documented by Midtrans. Field names follow
// the wire format exactly; the builder in services fills these in.
type SnapRequest struct {
	TransactionDetails TransactionDetails `json:"transaction_details" validate:"required"`
	ItemDetails        []ItemDetail       `json:"item_details,omitempty"`
	CustomerDetails    *CustomerDetails   `json:"customer_details,omitempty" validate:"required"`

	// Free-form metadata echoed back in the notification. Used by class
	// registrations to carry student details to the webhook.
	CustomField1 string `json:"custom_field1,omitempty"`
	CustomField2 string `json:"custom_field2,omitempty"`
	CustomField3 string `json:"custom_field3,omitempty"`
}

type TransactionDetails struct {
	OrderID string `json:"order_id" validate:"required"`
	// Integer rupiah; Snap rejects fractional amounts for IDR.
	GrossAmount int64 `json:"gross_amount" validate:"required,gt=0"`
}

type ItemDetail struct {
	ID       string `json:"id"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

type CustomerDetails struct {
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	BillingAddress  *Address `json:"billing_address,omitempty"`
	ShippingAddress *Address `json:"shipping_address,omitempty"`
}

type Address struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	City        string `json:"city,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
}

// SnapResponse is the part of the Snap create-transaction response we use.
type SnapResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// Notification is the asynchronous payment notification Midtrans POSTs to
// the webhook endpoint. transaction_status is an open enum; unknown values
// must be tolerated.
type Notification struct {
	TransactionTime   string `json:"transaction_time"`
	TransactionStatus string `json:"transaction_status"`
	TransactionID     string `json:"transaction_id"`
	StatusMessage     string `json:"status_message"`
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	PaymentType       string `json:"payment_type"`
	OrderID           string `json:"order_id"`
	MerchantID        string `json:"merchant_id"`
	GrossAmount       string `json:"gross_amount"`
	FraudStatus       string `json:"fraud_status"`
	Currency          string `json:"currency"`

	CustomerDetails *NotificationCustomer `json:"customer_details"`

	CustomField1 string `json:"custom_field1"`
	CustomField2 string `json:"custom_field2"`
	CustomField3 string `json:"custom_field3"`
}

type NotificationCustomer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Known transaction_status values.
const (
	StatusCapture    = "capture"
	StatusSettlement = "settlement"
	StatusPending    = "pending"
	StatusCancel     = "cancel"
	StatusDeny       = "deny"
	StatusExpire     = "expire"
)

// fraud_status values accompanying "capture".
const (
	FraudAccept    = "accept"
	FraudChallenge = "challenge"
)
