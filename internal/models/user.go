package models

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const RolePharmacist = "pharmacist"

// Claims identifies a staff member; shoppers are anonymous and never carry one.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}
