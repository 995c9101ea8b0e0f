package routes

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/rsvphub/rsvp-api/internal/middleware"
	"github.com/rsvphub/rsvp-api/internal/models"
	"github.com/rsvphub/rsvp-api/internal/storage"
	apperrors "github.com/rsvphub/rsvp-api/pkg/errors"
)

// AuthHandler handles admin authentication
type AuthHandler struct {
	store  *storage.Store
	auth   *middleware.AuthMiddleware
	logger *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(store *storage.Store, auth *middleware.AuthMiddleware, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		store:  store,
		auth:   auth,
		logger: logger,
	}
}

// Login handles admin login
// @Summary Admin login
// @Description Authenticate an organizer and return a time-limited bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 401 {object} apperrors.ErrorResponse "Invalid credentials"
// @Router /admin/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondAppError(c, apperrors.NewAppError(apperrors.CodeBadRequest, "Invalid request body", err))
	}

	// An unknown username and a wrong password produce the identical
	// response so the login form leaks neither.
	admin, err := h.store.GetAdminByUsername(c.Context(), req.Username)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			h.logger.WithError(err).Error("Admin lookup failed")
			return respondAppError(c, apperrors.NewAppError(apperrors.CodeInternalError, "Login failed", err))
		}
		h.logger.WithField("username", req.Username).Warn("Login attempt for unknown admin")
		return h.invalidCredentials(c)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		h.logger.WithField("username", req.Username).Warn("Login attempt with wrong password")
		return h.invalidCredentials(c)
	}

	token, err := h.auth.IssueToken(admin.ID, admin.Username)
	if err != nil {
		h.logger.WithError(err).Error("Failed to sign token")
		return respondAppError(c, apperrors.NewAppError(apperrors.CodeInternalError, "Failed to generate token", err))
	}

	h.logger.WithFields(logrus.Fields{
		"admin_id": admin.ID,
		"username": admin.Username,
	}).Info("Admin logged in")

	return c.JSON(models.LoginResponse{Token: token})
}

func (h *AuthHandler) invalidCredentials(c *fiber.Ctx) error {
	return respondAppError(c, apperrors.NewAppError(apperrors.CodeUnauthenticated, "Invalid credentials", nil))
}
