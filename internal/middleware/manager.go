package middleware

import (
	"github.com/rsvphub/rsvp-api/internal/config"

	"github.com/sirupsen/logrus"
)

// Manager holds all middleware instances
type Manager struct {
	Auth        *AuthMiddleware
	ErrorLogger *ErrorLoggerMiddleware
	Config      *config.Config
	Logger      *logrus.Logger
}

// NewManager creates a new middleware manager with all middleware initialized
func NewManager(cfg *config.Config, logger *logrus.Logger) *Manager {
	return &Manager{
		Auth:        NewAuthMiddleware(&cfg.JWT, logger),
		ErrorLogger: NewErrorLoggerMiddleware(logger),
		Config:      cfg,
		Logger:      logger,
	}
}
