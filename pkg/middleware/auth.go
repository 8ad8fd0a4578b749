package middleware

import (
	"context"
	"strings"
	"time"

	"fin-extractor/pkg/auth"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Locals keys set by SessionMiddleware.
const (
	LocalUserID         = "userID"
	LocalOrgID          = "orgID"
	LocalTokenID        = "tokenID"
	LocalTokenExpiresAt = "tokenExpiresAt"
)

// MembershipChecker reports whether a user belongs to an organization.
type MembershipChecker interface {
	IsMember(ctx context.Context, userID, organizationID string) (bool, error)
}

// RevocationChecker reports whether a token ID was revoked by logout.
type RevocationChecker interface {
	IsRevoked(tokenID string) (bool, error)
}

// BearerMiddleware accepts any valid, unrevoked access token.
func BearerMiddleware(jwtManager *auth.JWTManager, revocations RevocationChecker, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := authenticate(c, jwtManager, revocations, logger)
		if !ok {
			return unauthorized(c)
		}
		setLocals(c, claims)
		return c.Next()
	}
}

// SessionMiddleware additionally requires an active organization the user
// still belongs to. Transaction routes are scoped to that organization.
func SessionMiddleware(jwtManager *auth.JWTManager, revocations RevocationChecker, members MembershipChecker, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := authenticate(c, jwtManager, revocations, logger)
		if !ok {
			return unauthorized(c)
		}

		if claims.ActiveOrganizationID == "" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "No active organization selected",
			})
		}

		isMember, err := members.IsMember(c.UserContext(), claims.UserID, claims.ActiveOrganizationID)
		if err != nil {
			logger.Error("Membership check failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal server error",
			})
		}
		if !isMember {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: not a member of this organization",
			})
		}

		setLocals(c, claims)
		return c.Next()
	}
}

func authenticate(c *fiber.Ctx, jwtManager *auth.JWTManager, revocations RevocationChecker, logger *zap.Logger) (*auth.Claims, bool) {
	token, found := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	token = strings.TrimSpace(token)
	if !found || token == "" {
		return nil, false
	}

	claims, err := jwtManager.ValidateToken(token)
	if err != nil {
		logger.Warn("Invalid token", zap.Error(err))
		return nil, false
	}
	if claims.TokenType != auth.TokenTypeAccess {
		logger.Warn("Non-access token presented", zap.String("token_type", claims.TokenType))
		return nil, false
	}

	revoked, err := revocations.IsRevoked(claims.ID)
	if err != nil {
		logger.Error("Revocation check failed", zap.Error(err))
		return nil, false
	}
	if revoked {
		return nil, false
	}

	return claims, true
}

func setLocals(c *fiber.Ctx, claims *auth.Claims) {
	c.Locals(LocalUserID, claims.UserID)
	c.Locals(LocalOrgID, claims.ActiveOrganizationID)
	c.Locals(LocalTokenID, claims.ID)
	if claims.ExpiresAt != nil {
		c.Locals(LocalTokenExpiresAt, claims.ExpiresAt.Time)
	} else {
		c.Locals(LocalTokenExpiresAt, time.Time{})
	}
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Unauthorized",
	})
}
