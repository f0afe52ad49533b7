package user

import "time"

// Profile is one registered user of the service
type Profile struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	DateOfBirth string    `json:"dateOfBirth,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateRequest is the payload for registering a new user
type CreateRequest struct {
	Username    string `json:"username"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
}
