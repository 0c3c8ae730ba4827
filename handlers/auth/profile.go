package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/schoolhub/records-api/model"
	authutil "github.com/schoolhub/records-api/utils/auth"
	"github.com/schoolhub/records-api/utils/middleware"
	"github.com/schoolhub/records-api/utils/response"
	"github.com/schoolhub/records-api/utils/validation"
)

// ProfileResponse carries the account plus its resolved affiliation
type ProfileResponse struct {
	User    UserResponse   `json:"user"`
	Scope   string         `json:"scope"` // admin, teacher, student, unaffiliated
	Teacher *model.Teacher `json:"teacher,omitempty"`
	Student *model.Student `json:"student,omitempty"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// GetProfile retrieves the current user's profile and affiliation
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.InternalServerError(c, "Failed to resolve account scope")
	}

	res := ProfileResponse{
		User:    userResponse(user),
		Scope:   string(principal.Role),
		Teacher: principal.Teacher,
		Student: principal.Student,
	}

	return response.Success(c, res)
}

// ChangePassword updates the current user's password and invalidates every
// previously issued token by bumping the token version
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	if err := authutil.VerifyPassword(user.PasswordHash, req.CurrentPassword); err != nil {
		return response.Unauthorized(c, "Current password is incorrect")
	}

	hash, err := authutil.HashPassword(req.NewPassword)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	if err := h.db.Model(user).Update("password_hash", hash).Error; err != nil {
		return response.InternalServerError(c, "Failed to update password")
	}

	if err := h.blacklistService.RevokeAllUserTokens(c.Context(), user.ID); err != nil {
		return response.InternalServerError(c, "Failed to invalidate existing sessions")
	}

	return response.SuccessWithMessage(c, "Password changed successfully. Please log in again.", nil)
}
