package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string    `json:"id" bson:"_id"`
	GoogleID     string    `json:"-" bson:"google_id"`
	DisplayName  string    `json:"displayName" bson:"display_name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Role         string    `json:"role" bson:"role"`
	CreatedAt    time.Time `json:"-" bson:"created_at"`
	UpdatedAt    time.Time `json:"-" bson:"updated_at"`
}

func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
