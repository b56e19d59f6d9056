package services

import (
	"context"
	"fmt"
	"time"

	"nala-backend/midtrans"
	"nala-backend/utils"
)

// SnapGateway is the outbound surface of the Midtrans client. Tests stub it.
type SnapGateway interface {
	CreateTransaction(ctx context.Context, req *midtrans.SnapRequest) (*midtrans.SnapResponse, error)
}

// BuyerDetails is what the storefront forms collect. Stored-as-entered; the
// client-side form owns field validation beyond presence.
type BuyerDetails struct {
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Province   string `json:"province"`
}

// BookCheckout is a physical book purchase: shipped, so the gross amount is
// price + shipping and the request carries address blocks.
type BookCheckout struct {
	BookID       string       `json:"book_id" validate:"required"`
	BookTitle    string       `json:"book_title" validate:"required"`
	Price        int64        `json:"price" validate:"required,gt=0"`
	ShippingCost int64        `json:"shipping_cost" validate:"gte=0"`
	Customer     BuyerDetails `json:"customer" validate:"required"`
}

// ClassRegistration is the extra data a parent enters when booking a class.
// Forwarded through Midtrans custom fields so the webhook (and the Telegram
// alert) can see it without another storage round trip.
type ClassRegistration struct {
	ChildName           string `json:"child_name"`
	ChildDOB            string `json:"child_dob"`
	ParentWhatsapp      string `json:"parent_whatsapp"`
	DomicileAddress     string `json:"domicile_address"`
	SocialMediaUsername string `json:"social_media_username"`
	ClassDay            string `json:"class_day"`
}

type ClassCheckout struct {
	ClassID      string             `json:"class_id" validate:"required"`
	ClassName    string             `json:"class_name" validate:"required"`
	Price        int64              `json:"price" validate:"required,gt=0"`
	Customer     BuyerDetails       `json:"customer" validate:"required"`
	Registration *ClassRegistration `json:"registration"`
}

// SketchCheckout is a digital guide purchase; nothing ships.
type SketchCheckout struct {
	SketchID    string       `json:"sketch_id" validate:"required"`
	SketchTitle string       `json:"sketch_title" validate:"required"`
	Price       int64        `json:"price" validate:"required,gt=0"`
	Customer    BuyerDetails `json:"customer" validate:"required"`
}

// PaymentLink is what the storefront needs to hand the buyer off to Snap.
type PaymentLink struct {
	PaymentURL string `json:"payment_url"`
	OrderID    string `json:"order_id"`
	Token      string `json:"token"`
}

// CheckoutService turns purchase intents into Snap sessions.
type CheckoutService struct {
	gateway SnapGateway
	now     func() time.Time
}

func NewCheckoutService(gateway SnapGateway) *CheckoutService {
	return &CheckoutService{gateway: gateway, now: time.Now}
}

func (s *CheckoutService) BookPaymentLink(ctx context.Context, req *BookCheckout) (*PaymentLink, error) {
	return s.create(ctx, s.BuildBookRequest(req))
}

func (s *CheckoutService) ClassPaymentLink(ctx context.Context, req *ClassCheckout) (*PaymentLink, error) {
	return s.create(ctx, s.BuildClassRequest(req))
}

func (s *CheckoutService) SketchPaymentLink(ctx context.Context, req *SketchCheckout) (*PaymentLink, error) {
	return s.create(ctx, s.BuildSketchRequest(req))
}

func (s *CheckoutService) create(ctx context.Context, snapReq *midtrans.SnapRequest) (*PaymentLink, error) {
	resp, err := s.gateway.CreateTransaction(ctx, snapReq)
	if err != nil {
		return nil, err
	}
	return &PaymentLink{
		PaymentURL: resp.RedirectURL,
		OrderID:    snapReq.TransactionDetails.OrderID,
		Token:      resp.Token,
	}, nil
}

// BuildBookRequest assembles the Snap document for a shipped book. Billing
// and shipping blocks are the same buyer-entered address.
func (s *CheckoutService) BuildBookRequest(req *BookCheckout) *midtrans.SnapRequest {
	addr := &midtrans.Address{
		FirstName:   req.Customer.FirstName,
		LastName:    req.Customer.LastName,
		Phone:       req.Customer.Phone,
		Address:     req.Customer.Address,
		City:        req.Customer.City,
		PostalCode:  req.Customer.PostalCode,
		CountryCode: "IDN",
	}
	return &midtrans.SnapRequest{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:     s.newOrderID("BOOK", utils.RandomAlnum(9)),
			GrossAmount: req.Price + req.ShippingCost,
		},
		ItemDetails: []midtrans.ItemDetail{
			{ID: req.BookID, Price: req.Price, Quantity: 1, Name: req.BookTitle},
			{ID: "shipping", Price: req.ShippingCost, Quantity: 1, Name: "Ongkir"},
		},
		CustomerDetails: &midtrans.CustomerDetails{
			FirstName:       req.Customer.FirstName,
			LastName:        req.Customer.LastName,
			Email:           req.Customer.Email,
			Phone:           req.Customer.Phone,
			BillingAddress:  addr,
			ShippingAddress: addr,
		},
	}
}

// BuildClassRequest assembles the Snap document for a class booking. The
// BELAJAR order id doubles as the access code after settlement.
func (s *CheckoutService) BuildClassRequest(req *ClassCheckout) *midtrans.SnapRequest {
	snapReq := &midtrans.SnapRequest{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:     s.newOrderID("BELAJAR", utils.RandomAlnumUpper(6)),
			GrossAmount: req.Price,
		},
		ItemDetails: []midtrans.ItemDetail{
			{ID: req.ClassID, Price: req.Price, Quantity: 1, Name: req.ClassName},
		},
		CustomerDetails: &midtrans.CustomerDetails{
			FirstName: req.Customer.FirstName,
			LastName:  req.Customer.LastName,
			Email:     req.Customer.Email,
			Phone:     req.Customer.Phone,
		},
	}
	if r := req.Registration; r != nil {
		// Child name in billing makes registrations easy to spot in the
		// Midtrans dashboard.
		snapReq.CustomerDetails.BillingAddress = &midtrans.Address{
			FirstName:   r.ChildName,
			Address:     r.DomicileAddress,
			Phone:       r.ParentWhatsapp,
			CountryCode: "IDN",
		}
		snapReq.CustomField1 = fmt.Sprintf("Anak: %s (%s)", r.ChildName, r.ChildDOB)
		snapReq.CustomField2 = fmt.Sprintf("IG: %s | WA: %s", r.SocialMediaUsername, r.ParentWhatsapp)
		snapReq.CustomField3 = fmt.Sprintf("Kelas: %s | Hari: %s", req.ClassName, r.ClassDay)
	}
	return snapReq
}

// BuildSketchRequest assembles the Snap document for a digital guide.
func (s *CheckoutService) BuildSketchRequest(req *SketchCheckout) *midtrans.SnapRequest {
	return &midtrans.SnapRequest{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:     s.newOrderID("SKET", utils.RandomAlnum(9)),
			GrossAmount: req.Price,
		},
		ItemDetails: []midtrans.ItemDetail{
			{ID: req.SketchID, Price: req.Price, Quantity: 1, Name: req.SketchTitle},
		},
		CustomerDetails: &midtrans.CustomerDetails{
			FirstName: req.Customer.FirstName,
			LastName:  req.Customer.LastName,
			Email:     req.Customer.Email,
			Phone:     req.Customer.Phone,
		},
	}
}

// newOrderID builds PREFIX-<unixms>-<random>. No collision check against the
// store; the random tail keeps the odds negligible and the code column's
// unique constraint catches the rest.
func (s *CheckoutService) newOrderID(prefix, random string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, s.now().UnixMilli(), random)
}
