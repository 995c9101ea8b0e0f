package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/rsvphub/rsvp-api/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// AuthMiddleware guards admin-only routes with a bearer JWT signed by the
// process-wide secret. Tokens are self-issued by the login endpoint; there
// is no server-side session state or revocation.
type AuthMiddleware struct {
	config *config.JWTConfig
	secret []byte
	logger *logrus.Logger
}

func NewAuthMiddleware(cfg *config.JWTConfig, logger *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		config: cfg,
		secret: []byte(cfg.Secret),
		logger: logger,
	}
}

// Authenticate is the JWT authentication middleware for admin routes
func (a *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Extract token from Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return a.unauthorizedError(c, "MISSING_AUTHORIZATION", "Authorization header is required")
		}

		// Check Bearer token format
		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			return a.unauthorizedError(c, "INVALID_TOKEN_FORMAT", "Authorization header must be Bearer token")
		}

		tokenString := authHeader[len(bearerPrefix):]
		if tokenString == "" {
			return a.unauthorizedError(c, "MISSING_TOKEN", "Token is required")
		}

		// Validate JWT token
		claims, err := a.validateToken(tokenString)
		if err != nil {
			a.logger.WithError(err).WithField("path", c.Path()).Debug("Token validation failed")
			return a.unauthorizedError(c, "INVALID_TOKEN", "Token validation failed")
		}

		// Set admin context
		c.Locals("admin_claims", claims)
		if adminID, ok := claims["sub"].(string); ok {
			c.Locals("admin_id", adminID)
		}
		if username, ok := claims["username"].(string); ok {
			c.Locals("admin_username", username)
		}

		return c.Next()
	}
}

// validateToken verifies the signature and standard claims of a bearer token
func (a *AuthMiddleware) validateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString,
		func(token *jwt.Token) (interface{}, error) {
			return a.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(a.config.Issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("token parsing failed: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("failed to get token claims")
	}

	return claims, nil
}

// IssueToken signs a bearer token for an authenticated admin. Validity is a
// fixed window from issuance; logout is client-local token disposal.
func (a *AuthMiddleware) IssueToken(adminID, username string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      adminID,
		"username": username,
		"iss":      a.config.Issuer,
		"iat":      now.Unix(),
		"exp":      now.Add(a.config.TokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// unauthorizedError returns a standardized unauthorized error response
func (a *AuthMiddleware) unauthorizedError(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// GetAdminID extracts the authenticated admin id from context
func GetAdminID(c *fiber.Ctx) string {
	if adminID, ok := c.Locals("admin_id").(string); ok {
		return adminID
	}
	return ""
}

// GetAdminUsername extracts the authenticated admin username from context
func GetAdminUsername(c *fiber.Ctx) string {
	if username, ok := c.Locals("admin_username").(string); ok {
		return username
	}
	return ""
}
