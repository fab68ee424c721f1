package domain

import "time"

type User struct {
	UserID       string    `json:"id" dynamodbav:"user_id"`
	Username     string    `json:"username" dynamodbav:"username"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	DisplayName  string    `json:"display_name" dynamodbav:"display_name"`
	Phone        string    `json:"phone,omitempty" dynamodbav:"phone"`
	PhotoURL     string    `json:"photo_url,omitempty" dynamodbav:"photo_url"`
	Timezone     string    `json:"timezone" dynamodbav:"timezone"`
	Enable       bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt    time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=50"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"display_name" validate:"required,max=50"`
	Phone       string `json:"phone" validate:"omitempty,e164"`
	Timezone    string `json:"timezone" validate:"omitempty,max=100"`
}

type UpdateUserRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,max=50"`
	Phone       *string `json:"phone" validate:"omitempty,e164"`
	PhotoURL    *string `json:"photo_url"`
	Timezone    *string `json:"timezone" validate:"omitempty,max=100"`
}
