package models

import "time"

// User is a console account.
type User struct {
	ID          string     `json:"_id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        Role       `json:"role"`
	Institution Ref        `json:"institution"`
	Department  Ref        `json:"department"`
	Phone       string     `json:"phone,omitempty"`
	IsActive    bool       `json:"isActive"`
	LastLogin   *time.Time `json:"lastLogin,omitempty"`
}
