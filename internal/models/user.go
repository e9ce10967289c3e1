// internal/models/user.go
package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsVip        bool      `json:"is_vip"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type RegistrationForm struct {
	Username    string `form:"username" validate:"required,min=3,max=50,username_chars"`
	Email       string `form:"email" validate:"required,email"`
	Password    string `form:"password" validate:"required,min=8,complex_password"`
	ConfirmPass string `form:"confirm_password" validate:"required,eqfield=Password"`
	Honeypot    string `form:"website"`
}

type OtpVerifyForm struct {
	Ticket string `form:"ticket" validate:"required,uuid4"`
	Otp    string `form:"otp" validate:"required,len=6,numeric"`
}

type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}
