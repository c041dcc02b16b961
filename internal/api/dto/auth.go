package dto

import "github.com/hugh/rally/internal/database/models"

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message string       `json:"message"`
	Status  int          `json:"status"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}
