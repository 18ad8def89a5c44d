package models

import "time"

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Doctor holds the doctor profile row joined onto a user.
type Doctor struct {
	UserID      string `json:"user_id"`
	Specialties string `json:"specialties"`
	IsAvailable bool   `json:"is_available"`
}
