package auth

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleStudent   Role = "student"
	RoleRecruiter Role = "recruiter"
	RoleAdmin     Role = "admin"
)

// Account is a verified user. It only exists once its owner confirmed the
// signup code.
type Account struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	Verified     bool               `bson:"verified" json:"verified"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}

// UserSummary is the public view of an account returned to clients.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (a *Account) Summary() UserSummary {
	return UserSummary{ID: a.ID.Hex(), Name: a.Name, Email: a.Email, Role: a.Role}
}

// Candidate is the registration data held until the signup code is
// confirmed. The password stays in plaintext only for that window.
type Candidate struct {
	Name     string `bson:"name"`
	Password string `bson:"password"`
	Role     Role   `bson:"role"`
}

// LedgerEntry is an issued one-time code awaiting confirmation. Signup
// entries carry a Candidate payload, password reset entries do not.
type LedgerEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	Code      string             `bson:"code"`
	ExpiresAt time.Time          `bson:"expires_at"`
	Payload   *Candidate         `bson:"payload,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

// Expired reports whether the entry can no longer be confirmed at now. The
// TTL index removes such entries eventually, so readers must always check.
func (e *LedgerEntry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// AuthResult is returned by operations that open a session.
type AuthResult struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"`
}

type VerifyOtpRequest struct {
	Email string `json:"email" validate:"required"`
	Otp   string `json:"otp" validate:"required"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required"`
}

type Credential struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ResetPasswordRequest struct {
	ResetToken  string `json:"resetToken" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}
