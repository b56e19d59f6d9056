package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"nala-backend/middlewares"
	"nala-backend/midtrans"
	"nala-backend/services"
)

// PaymentController exposes the checkout endpoints the storefront calls to
// open a hosted Snap session.
type PaymentController struct {
	checkout *services.CheckoutService
}

func NewPaymentController(checkout *services.CheckoutService) *PaymentController {
	return &PaymentController{checkout: checkout}
}

func (pc *PaymentController) CreateBookPaymentLink(c *fiber.Ctx) error {
	var req services.BookCheckout
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	link, err := pc.checkout.BookPaymentLink(c.Context(), &req)
	if err != nil {
		return gatewayError(c, err)
	}
	return c.JSON(link)
}

func (pc *PaymentController) CreateClassPaymentLink(c *fiber.Ctx) error {
	var req services.ClassCheckout
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	link, err := pc.checkout.ClassPaymentLink(c.Context(), &req)
	if err != nil {
		return gatewayError(c, err)
	}
	return c.JSON(link)
}

func (pc *PaymentController) CreateSketchPaymentLink(c *fiber.Ctx) error {
	var req services.SketchCheckout
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	link, err := pc.checkout.SketchPaymentLink(c.Context(), &req)
	if err != nil {
		return gatewayError(c, err)
	}
	return c.JSON(link)
}

// gatewayError maps Snap failures to the error codes the storefront renders.
// Auth failures need operator action, so they never collapse into a generic
// 500.
func gatewayError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, midtrans.ErrNotConfigured):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"message":    "Payment system is temporarily unavailable. Please contact support.",
			"error_code": "MIDTRANS_NOT_CONFIGURED",
		})
	case errors.Is(err, midtrans.ErrAuthFailed):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message":    "Payment gateway authentication failed.",
			"error_code": "MIDTRANS_AUTH_FAILED",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to create payment link",
		})
	}
}
