package models

import "github.com/golang-jwt/jwt/v5"

// LoginRequest holds credentials for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the data part of a successful login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Claims is the payload of the bearer tokens the backend issues.
type Claims struct {
	UserID      string `json:"userId"`
	Role        Role   `json:"role"`
	Institution string `json:"institution,omitempty"`
	jwt.RegisteredClaims
}
