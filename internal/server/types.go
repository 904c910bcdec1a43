package server

import "encoding/json"

// MessageResponse represents a generic message payload used for success responses.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents a generic error payload used for error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CreateUserRequest represents the request body for creating a user.
type CreateUserRequest struct {
	ConnectionName string `json:"connectionName" binding:"required"`
	BucketName     string `json:"bucketName" binding:"required"`
	Email          string `json:"email" binding:"required"`
	Username       string `json:"username"`
	Role           string `json:"role" binding:"required"`
	FHIRUser       string `json:"fhirUser"`
	Password       string `json:"password" binding:"required"`
}

// EnsureIndexRequest represents the request body for provisioning a search index.
type EnsureIndexRequest struct {
	ConnectionName string          `json:"connectionName" binding:"required"`
	BucketName     string          `json:"bucketName" binding:"required"`
	Definition     json.RawMessage `json:"definition" binding:"required"`
}
