package user

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID           string    `json:"id" db:"user_id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Bio          string    `json:"bio" db:"bio"`
	ImageURL     string    `json:"imageUrl" db:"image_url"`
	Role         string    `json:"role" db:"role"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

type UserSignup struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type UserLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileUp carries the fields a user may change on their own profile.
// Nil fields are left unchanged.
type ProfileUp struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=120"`
	Bio      *string `json:"bio" validate:"omitempty,max=2000"`
	ImageURL *string `json:"imageUrl" validate:"omitempty,url"`
}

func (up ProfileUp) Apply(u *User) {
	if up.Name != nil {
		u.Name = *up.Name
	}
	if up.Bio != nil {
		u.Bio = *up.Bio
	}
	if up.ImageURL != nil {
		u.ImageURL = *up.ImageURL
	}
}

type PasswordUp struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
}

type RoleUp struct {
	Role string `json:"role" validate:"required,oneof=ADMIN INSTRUCTOR USER"`
}

func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// CheckPassword reports whether password matches the stored hash. Users
// created through oauth have no hash and never match.
func (u User) CheckPassword(password string) bool {
	if len(u.PasswordHash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) == nil
}
