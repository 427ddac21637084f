package models

import "time"

// Plan is the subscription tier of a user.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// User is an account owning funnels.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"passwordHash"`
	FirstName    string    `json:"firstName" bson:"firstName"`
	LastName     string    `json:"lastName" bson:"lastName"`
	Phone        string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Bio          string    `json:"bio,omitempty" bson:"bio,omitempty"`
	Plan         Plan      `json:"plan" bson:"plan"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}
