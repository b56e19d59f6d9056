package routes

import (
	"github.com/gofiber/fiber/v2"

	"nala-backend/controllers"
	"nala-backend/middlewares"
)

// Handlers bundles the controllers the router wires up.
type Handlers struct {
	Payment    *controllers.PaymentController
	Webhook    *controllers.WebhookController
	AccessCode *controllers.AccessCodeController
	Auth       *controllers.AuthController

	AdminJWTSecret string
}

// Register wires all HTTP routes.
func Register(app *fiber.App, h Handlers) {
	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "message": "API is running"})
	})

	// Checkout (storefront → hosted Snap session)
	api.Post("/checkout/book", h.Payment.CreateBookPaymentLink)
	api.Post("/checkout/class", h.Payment.CreateClassPaymentLink)
	api.Post("/checkout/sketch", h.Payment.CreateSketchPaymentLink)

	// Midtrans asynchronous payment notification
	api.Post("/midtrans/notification", h.Webhook.HandleNotification)

	// Unlock flow (public; codes are bearer credentials)
	api.Post("/grasp-guide/verify-code", h.AccessCode.VerifyCode)
	api.Get("/transaction/:orderId/code", h.AccessCode.CodeByOrder)

	// Admin surface (JWT auth)
	api.Post("/admin/login", h.Auth.AdminLogin)

	requireAdmin := middlewares.RequireAdmin(h.AdminJWTSecret)
	// Path kept from the legacy client; issuance is operator-only now.
	api.Post("/grasp-guide/access-code", requireAdmin, h.AccessCode.SaveAccessCode)
	api.Get("/admin/access-codes", requireAdmin, h.AccessCode.ListAccessCodes)
}
