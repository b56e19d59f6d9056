package models

import "time"

// AccessCode is one issued premium-access code, keyed by the Midtrans
// transaction id. Rows are never deleted; the table doubles as the audit
// trail of every settled purchase.
type AccessCode struct {
	ID            uint   `json:"-" gorm:"primaryKey"`
	TransactionID string `json:"transaction_id" gorm:"size:255;uniqueIndex;not null"`
	OrderID       string `json:"order_id" gorm:"size:255;index;not null"`
	Code          string `json:"code" gorm:"size:50;uniqueIndex;not null"`

	CustomerFirstName string `json:"customer_first_name"`
	CustomerLastName  string `json:"customer_last_name"`
	CustomerEmail     string `json:"customer_email"`
	CustomerPhone     string `json:"customer_phone" gorm:"size:50"`

	// Provenance only (webhook | manual | manual-fix | migration | test);
	// never consulted for authorization.
	Source string `json:"source" gorm:"size:50;default:webhook"`

	SavedAt   time.Time `json:"saved_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the table the legacy scripts and the WA bot already query.
func (AccessCode) TableName() string {
	return "grasp_guide_access"
}

// Customer is the contact block stored alongside a code, used for support
// lookups only.
type Customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Customer returns the record's contact block.
func (a *AccessCode) Customer() Customer {
	return Customer{
		FirstName: a.CustomerFirstName,
		LastName:  a.CustomerLastName,
		Email:     a.CustomerEmail,
		Phone:     a.CustomerPhone,
	}
}
