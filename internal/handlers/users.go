package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/neurascan/neurascan-api/internal/auth"
	"github.com/neurascan/neurascan-api/internal/store"
)

type registerRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	UserType  string `json:"user_type"`
}

var userTypes = map[string]bool{
	"healthcare": true,
	"researcher": true,
	"student":    true,
	"other":      true,
}

// Register creates a new account and returns an access token.
func (h *Handler) Register(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Registration unavailable",
			"message": "User accounts require database storage.",
		})
		return
	}

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": err.Error(),
		})
		return
	}
	userType := strings.ToLower(strings.TrimSpace(req.UserType))
	if userType == "" {
		userType = "healthcare"
	}
	if !userTypes[userType] {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid user type",
			"message": "Allowed types: healthcare, researcher, student, other.",
		})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("failed to hash password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Failed to create account.",
		})
		return
	}

	user := &store.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		UserType:     userType,
	}
	if err := h.store.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "Email already registered",
				"message": "An account with this email already exists.",
			})
			return
		}
		h.logger.Error("failed to create user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Failed to create account.",
		})
		return
	}

	token, err := h.auth.IssueToken(user.ID)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Account created but login failed, please log in.",
		})
		return
	}

	h.logger.Info("user registered",
		zap.Int64("user_id", user.ID),
		zap.String("user_type", user.UserType))
	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"access_token": token,
		"user":         user,
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and returns an access token.
func (h *Handler) Login(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Login unavailable",
			"message": "User accounts require database storage.",
		})
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": "Email and password are required.",
		})
		return
	}

	user, err := h.store.UserByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Invalid credentials",
			"message": "Email or password is incorrect.",
		})
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Account disabled",
			"message": "This account has been deactivated.",
		})
		return
	}

	token, err := h.auth.IssueToken(user.ID)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Login failed.",
		})
		return
	}

	if err := h.store.TouchLastLogin(c.Request.Context(), user.ID); err != nil {
		h.logger.Warn("failed to record last login", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"access_token": token,
		"user":         user,
	})
}

type updateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	UserType  *string `json:"user_type"`
}

// UpdateProfile changes name and user type on the authenticated account.
// Absent fields keep their current value.
func (h *Handler) UpdateProfile(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Profile unavailable",
			"message": "User accounts require database storage.",
		})
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": "Request body must contain JSON data.",
		})
		return
	}
	if req.FirstName == nil && req.LastName == nil && req.UserType == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "No valid fields to update",
			"message": "Provide at least one of first_name, last_name, user_type.",
		})
		return
	}

	user, err := h.store.UserByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "User not found",
			"message": "The account no longer exists.",
		})
		return
	}

	if req.FirstName != nil {
		name := strings.TrimSpace(*req.FirstName)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid first name",
				"message": "First name must not be empty.",
			})
			return
		}
		user.FirstName = name
	}
	if req.LastName != nil {
		name := strings.TrimSpace(*req.LastName)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid last name",
				"message": "Last name must not be empty.",
			})
			return
		}
		user.LastName = name
	}
	if req.UserType != nil {
		userType := strings.ToLower(strings.TrimSpace(*req.UserType))
		if !userTypes[userType] {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid user type",
				"message": "Allowed types: healthcare, researcher, student, other.",
			})
			return
		}
		user.UserType = userType
	}

	if err := h.store.UpdateUser(c.Request.Context(), user); err != nil {
		h.logger.Error("failed to update profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Failed to update profile.",
		})
		return
	}

	h.logger.Info("user profile updated", zap.Int64("user_id", user.ID))
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

type changePasswordRequest struct {
	OldPassword     string `json:"old_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// ChangePassword re-hashes the account password after verifying the old one.
func (h *Handler) ChangePassword(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Password change unavailable",
			"message": "User accounts require database storage.",
		})
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Missing required fields",
			"message": "Old password, new password (min 8 chars), and confirmation are required.",
		})
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Password mismatch",
			"message": "New password and confirmation do not match.",
		})
		return
	}

	user, err := h.store.UserByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "User not found",
			"message": "The account no longer exists.",
		})
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.OldPassword) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Password change failed",
			"message": "Old password is incorrect.",
		})
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.logger.Error("failed to hash password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Failed to change password.",
		})
		return
	}
	if err := h.store.UpdatePassword(c.Request.Context(), user.ID, hash); err != nil {
		h.logger.Error("failed to update password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Failed to change password.",
		})
		return
	}

	h.logger.Info("password changed", zap.Int64("user_id", user.ID))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password changed successfully.",
	})
}

// Profile returns the authenticated user's account.
func (h *Handler) Profile(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Profile unavailable",
			"message": "User accounts require database storage.",
		})
		return
	}
	user, err := h.store.UserByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "User not found",
			"message": "The account no longer exists.",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}
