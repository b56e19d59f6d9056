package controllers

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"nala-backend/config"
	"nala-backend/middlewares"
)

// AuthController handles the single-operator admin login.
type AuthController struct {
	cfg config.AdminConfig
}

func NewAuthController(cfg config.AdminConfig) *AuthController {
	return &AuthController{cfg: cfg}
}

type adminLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// AdminLogin checks the operator password against the configured bcrypt hash
// and issues a bearer token for the admin endpoints.
func (a *AuthController) AdminLogin(c *fiber.Ctx) error {
	var req adminLoginRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}

	if a.cfg.PasswordHash == "" {
		return fiber.NewError(fiber.StatusServiceUnavailable, "admin login not configured")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.cfg.PasswordHash), []byte(req.Password)); err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid password")
	}

	token, err := middlewares.GenerateAdminJWT(a.cfg.JWTSecret)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not issue token")
	}
	return c.JSON(fiber.Map{"token": token})
}
