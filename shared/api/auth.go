package api

// Request DTOs

type RegisterRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,max=64"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required"`
}

// Response DTOs

type MessageResponse struct {
	Message string `json:"message"`
}

type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type MeResponse struct {
	AccountId string `json:"account_id"`
	Email     string `json:"email"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
