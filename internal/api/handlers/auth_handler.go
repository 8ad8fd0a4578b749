package handlers

import (
	"context"
	"errors"
	"time"

	"fin-extractor/internal/dto"
	"fin-extractor/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
	SetActiveOrganization(ctx context.Context, userID, organizationID uuid.UUID) (*dto.AuthResponse, error)
	Logout(tokenID string, expiresAt time.Time) error
}

type AuthHandler struct {
	authService AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register godoc
// @Summary Register a new user
// @Description Sign up with email and password, create a personal workspace and log in. Repeating the call with the same credentials logs in again.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration request"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return errorJSON(c, fiber.StatusBadRequest, "Email and password are required")
	}
	if err := dto.Validate(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid email or password too short")
	}

	resp, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			return errorJSON(c, fiber.StatusConflict, "User already exists")
		}
		h.logger.Error("Registration failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Registration failed")
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login godoc
// @Summary Login user
// @Description Login with email and password. The oldest membership becomes the active organization.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login request"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := dto.Validate(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Email and password are required")
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return errorJSON(c, fiber.StatusUnauthorized, "Invalid credentials")
		case errors.Is(err, service.ErrNoMembership):
			return errorJSON(c, fiber.StatusForbidden, "No organization membership found")
		}
		h.logger.Error("Login failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Login failed")
	}

	return c.JSON(resp)
}

// RefreshToken godoc
// @Summary Refresh access token
// @Description Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token request"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} map[string]string
// @Router /api/auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := dto.Validate(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Refresh token is required")
	}

	resp, err := h.authService.RefreshToken(c.UserContext(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrUserNotFound):
			return errorJSON(c, fiber.StatusUnauthorized, "Invalid refresh token")
		case errors.Is(err, service.ErrNoMembership):
			return errorJSON(c, fiber.StatusForbidden, "No organization membership found")
		}
		h.logger.Error("Token refresh failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Token refresh failed")
	}

	return c.JSON(resp)
}

// Logout godoc
// @Summary Logout user
// @Description Revoke the presented access token
// @Tags auth
// @Produce json
// @Security Bearer
// @Success 200 {object} map[string]bool
// @Failure 401 {object} map[string]string
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	tokenID, expiresAt := getToken(c)
	if tokenID == "" {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	if err := h.authService.Logout(tokenID, expiresAt); err != nil {
		h.logger.Error("Logout failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Logout failed")
	}

	return c.JSON(fiber.Map{"success": true})
}

// SetActiveOrganization godoc
// @Summary Switch active organization
// @Description Issue tokens scoped to another organization the user belongs to
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SetActiveOrganizationRequest true "Organization"
// @Security Bearer
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/auth/organization/set-active [post]
func (h *AuthHandler) SetActiveOrganization(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.SetActiveOrganizationRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := dto.Validate(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid organization ID")
	}
	orgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid organization ID")
	}

	resp, err := h.authService.SetActiveOrganization(c.UserContext(), userID, orgID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotMember):
			return errorJSON(c, fiber.StatusForbidden, "Forbidden: not a member of this organization")
		case errors.Is(err, service.ErrUserNotFound):
			return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
		}
		h.logger.Error("Set active organization failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to set active organization")
	}

	return c.JSON(resp)
}
