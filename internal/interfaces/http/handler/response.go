package handler

import "github.com/storefront/backend/internal/interfaces/http/dto"

// APIResponse represents a generic API response for OpenAPI documentation
// @Description Standard API response wrapper with typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// ErrorResponse represents an error API response for OpenAPI documentation
// @Description Standard error response
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Message string         `json:"message" example:"Sync already in progress"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// MessageResponse represents a success response without data
// @Description Success response carrying only a message
type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Manual sync triggered successfully"`
}
