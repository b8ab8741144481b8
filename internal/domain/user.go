package domain

import "time"

// User is an account record. Users are created at registration and are
// immutable afterwards — there are no update or delete operations.
type User struct {
	UserID       string    `json:"id" dynamodbav:"user_id"`
	Username     string    `json:"username" dynamodbav:"username"`
	Email        string    `json:"email" dynamodbav:"email"`
	PasswordHash string    `json:"password_hash" dynamodbav:"password_hash"`
	CreatedAt    time.Time `json:"created_at" dynamodbav:"created_at"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type VerifyLoginRequest struct {
	Username         string `json:"username" validate:"required"`
	VerificationCode string `json:"verification_code" validate:"required"`
}
