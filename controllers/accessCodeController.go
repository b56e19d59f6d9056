package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"nala-backend/middlewares"
	"nala-backend/models"
	"nala-backend/services"
)

// AccessCodeController serves the unlock flow's read paths and the admin
// issuance surface.
type AccessCodeController struct {
	codes *services.AccessCodeService
}

func NewAccessCodeController(codes *services.AccessCodeService) *AccessCodeController {
	return &AccessCodeController{codes: codes}
}

type verifyCodeRequest struct {
	Code string `json:"code" validate:"required"`
}

// VerifyCode exchanges a previously issued code for access. Validity is
// binary: the code either exists or it does not.
func (ac *AccessCodeController) VerifyCode(c *fiber.Ctx) error {
	var req verifyCodeRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}

	rec, err := ac.codes.VerifyCode(c.Context(), req.Code)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "code lookup failed")
	}
	if rec == nil {
		return c.JSON(fiber.Map{"valid": false, "message": "code not found"})
	}
	return c.JSON(fiber.Map{
		"valid": true,
		"record": fiber.Map{
			"transaction_id": rec.TransactionID,
			"order_id":       rec.OrderID,
			"code":           rec.Code,
			"customer":       rec.Customer(),
		},
	})
}

// CodeByOrder is the endpoint the storefront polls after checkout while the
// settlement webhook is still in flight.
func (ac *AccessCodeController) CodeByOrder(c *fiber.Ctx) error {
	orderID := c.Params("orderId")
	rec, err := ac.codes.CodeForOrder(c.Context(), orderID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "code lookup failed")
	}
	if rec == nil {
		return fiber.NewError(fiber.StatusNotFound, "no code for this order yet")
	}
	return c.JSON(fiber.Map{
		"code":           rec.Code,
		"transaction_id": rec.TransactionID,
	})
}

type saveAccessCodeRequest struct {
	OrderID       string          `json:"order_id" validate:"required"`
	TransactionID string          `json:"transaction_id"`
	Code          string          `json:"code"`
	Customer      models.Customer `json:"customer"`
}

// SaveAccessCode is the admin path for orders the webhook missed. With an
// explicit code the record is tagged "manual"; when the server mints one it
// is tagged "manual-fix". Idempotent like the webhook path: an existing
// record for the order/transaction wins.
func (ac *AccessCodeController) SaveAccessCode(c *fiber.Ctx) error {
	var req saveAccessCodeRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}

	source := services.SourceManualFix
	if req.Code != "" {
		source = services.SourceManual
	}
	rec, created, err := ac.codes.EnsureAccessCode(c.Context(), services.Issue{
		OrderID:       req.OrderID,
		TransactionID: req.TransactionID,
		Code:          req.Code,
		Customer:      req.Customer,
		Source:        source,
	})
	if err != nil {
		log.Printf("[admin] manual issuance failed for %s: %v", req.OrderID, err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not save access code")
	}
	return c.JSON(fiber.Map{
		"created": created,
		"record":  rec,
	})
}

// ListAccessCodes dumps every issued code, newest first.
func (ac *AccessCodeController) ListAccessCodes(c *fiber.Ctx) error {
	recs, err := ac.codes.ListAll(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not list access codes")
	}
	return c.JSON(fiber.Map{
		"count":        len(recs),
		"access_codes": recs,
	})
}
