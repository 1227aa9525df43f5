package models

import (
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	RoleClient   = "client"
	RoleProvider = "provider"
	RoleAdmin    = "admin"
)

type User struct {
	ID         int        `json:"id"`
	Name       string     `json:"name"`
	Phone      string     `json:"phone,omitempty"`
	Email      string     `json:"email,omitempty"`
	Password   string     `json:"password,omitempty"`
	Role       string     `json:"role"`
	AvatarPath *string    `json:"avatar_path,omitempty"`
	Provider   *Provider  `json:"provider,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// Provider holds the extra fields that only exist for users with the
// provider role. Resolved once at sign-in, nil for clients.
type Provider struct {
	Bio          string  `json:"bio"`
	YearsOfExp   int     `json:"years_of_exp"`
	Governorate  string  `json:"governorate"`
	ReviewRating float64 `json:"review_rating"`
	ReviewsCount int     `json:"reviews_count"`
}

type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Session struct {
	UserID       int       `json:"user_id"`
	Role         string    `json:"role"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type SignUpRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}
