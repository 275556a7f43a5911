package models

import (
	"time"
)

// Admin user profile as returned by the BeHub API on login
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	FullName       string    `json:"fullName"`
	Role           string    `json:"role"`
	IsActive       bool      `json:"isActive"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	AverageRating  *float64  `json:"averageRating,omitempty"`
	TotalReviews   *int      `json:"totalReviews,omitempty"`
	PhoneNumber    string    `json:"phoneNumber,omitempty"`
	IsVerified     bool      `json:"isVerified"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
