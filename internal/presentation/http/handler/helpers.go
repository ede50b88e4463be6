package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) *uuid.UUID {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &userID
}

// GetUserRoles extracts the user roles from the Gin context
func GetUserRoles(c *gin.Context) []string {
	roles, exists := c.Get("user_roles")
	if !exists {
		return nil
	}
	return roles.([]string)
}

// IsElevated reports whether the operator carries an elevated role.
// Elevated operators may cancel returns past pending approval.
func IsElevated(c *gin.Context) bool {
	for _, role := range GetUserRoles(c) {
		if role == "manager" || role == "super-admin" {
			return true
		}
	}
	return false
}
