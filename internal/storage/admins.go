package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rsvphub/rsvp-api/internal/metrics"
	"github.com/rsvphub/rsvp-api/internal/models"
)

// GetAdminByUsername looks up an admin credential by exact username.
func (s *Store) GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error) {
	start := time.Now()
	defer func() { metrics.RecordDBOperation("get_admin", time.Since(start)) }()

	var admin models.Admin
	var createdAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM admins WHERE username = ?`,
		username,
	).Scan(&admin.ID, &admin.Username, &admin.PasswordHash, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("admin lookup failed: %w", err)
	}

	admin.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &admin, nil
}

// SeedAdmin creates the initial admin credential when the table is empty.
// A no-op when an admin already exists or no credentials are configured,
// so restarting the process never rewrites a live credential.
func (s *Store) SeedAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count); err != nil {
		return fmt.Errorf("admin count failed: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO admins (id, username, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		uuid.New().String(), username, string(hash), formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}

	s.logger.WithField("username", username).Info("Seeded initial admin credential")
	return nil
}
