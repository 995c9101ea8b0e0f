package models

import "time"

// Admin represents an organizer credential. There is no self-service
// registration; rows are seeded out of band.
type Admin struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // bcrypt hash, never in JSON
	CreatedAt    time.Time `json:"created_at"`
}

// LoginRequest represents login request payload
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents a successful login
type LoginResponse struct {
	Token string `json:"token"`
}
