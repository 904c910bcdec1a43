package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jdoherty/fhir-admin/internal/users"
)

// createUser godoc
// @Summary Create an admin user
// @Tags Users
// @Accept json
// @Produce json
// @Param request body CreateUserRequest true "User parameters"
// @Success 201 {object} users.User
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/users [post]
func (s *Server) createUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	user := users.User{
		ID:         req.Email,
		Email:      req.Email,
		Username:   req.Username,
		Role:       req.Role,
		AuthMethod: "local",
		Status:     "active",
		FHIRUser:   req.FHIRUser,
	}

	err := s.users.Create(c.Request.Context(), req.ConnectionName, req.BucketName, user, req.Password, "admin")
	switch {
	case errors.Is(err, users.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user.PasswordHash = ""
	c.JSON(http.StatusCreated, user)
}

// getUser godoc
// @Summary Get one admin user
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Param connection query string true "Connection name"
// @Param bucket query string true "Bucket name"
// @Success 200 {object} users.User
// @Failure 404 {object} ErrorResponse
// @Router /api/users/{id} [get]
func (s *Server) getUser(c *gin.Context) {
	user, err := s.users.Get(c.Request.Context(), c.Query("connection"), c.Query("bucket"), c.Param("id"))
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, user)
}

// listUsers godoc
// @Summary List admin users
// @Tags Users
// @Produce json
// @Param connection query string true "Connection name"
// @Param bucket query string true "Bucket name"
// @Success 200 {array} users.User
// @Failure 400 {object} ErrorResponse
// @Router /api/users [get]
func (s *Server) listUsers(c *gin.Context) {
	list, err := s.users.List(c.Request.Context(), c.Query("connection"), c.Query("bucket"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, list)
}
