package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=1"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RegisterRequest creates a user of any role. Address and Zone are
// required for residents only — the rest of the form ignores them.
type RegisterRequest struct {
	Username string  `json:"username" validate:"required,min=1,max=150"`
	Password string  `json:"password" validate:"required,min=3"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Role     string  `json:"role"     validate:"required,oneof=Resident Collector Admin"`
	Address  string  `json:"address"  validate:"omitempty,max=300"`
	Zone     string  `json:"zone"     validate:"omitempty,max=40"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UserResponse struct {
	ID           string  `json:"id"`
	Username     string  `json:"username"`
	Email        *string `json:"email"`
	Role         string  `json:"role"`
	AssignedZone *string `json:"assigned_zone"`
	Active       bool    `json:"active"`
	// Resident-only fields; zero for staff
	Zone    string `json:"zone,omitempty"`
	Address string `json:"address,omitempty"`
	Points  int    `json:"points"`
}

type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"` // seconds
	User         UserResponse `json:"user"`
}
