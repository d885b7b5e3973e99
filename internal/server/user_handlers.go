package server

import (
	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetCurrentUser handles GET /api/v1/users/me
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /users/me [get]
func (s *Server) GetCurrentUser(c *fiber.Ctx) error {
	user, err := s.userService.GetCurrentUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, user, "Current user fetched successfully")
}

// ChangePassword handles POST /api/v1/users/change-password
// @Summary Change password
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{oldPassword=string,newPassword=string} true "Passwords"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /users/change-password [post]
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	if err := s.userService.ChangePassword(c.UserContext(), middleware.UserID(c), req.OldPassword, req.NewPassword); err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{}, "Password changed successfully")
}

// UpdateAccount handles PATCH /api/v1/users/account
// @Summary Update account
// @Description Change profile fields. Replaced avatar and cover images are removed from storage.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{fullName=string,email=string,bio=string,avatar=models.MediaAsset,coverImage=models.MediaAsset} true "Changes"
// @Success 200 {object} models.APIResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/account [patch]
func (s *Server) UpdateAccount(c *fiber.Ctx) error {
	var req struct {
		FullName   *string            `json:"fullName"`
		Email      *string            `json:"email"`
		Bio        *string            `json:"bio"`
		Avatar     *models.MediaAsset `json:"avatar"`
		CoverImage *models.MediaAsset `json:"coverImage"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.UpdateAccount(c.UserContext(), service.UpdateAccountInput{
		UserID:     middleware.UserID(c),
		FullName:   req.FullName,
		Email:      req.Email,
		Bio:        req.Bio,
		Avatar:     req.Avatar,
		CoverImage: req.CoverImage,
	})
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, user, "Account details updated successfully")
}

// DeleteAccount handles DELETE /api/v1/users/account
// @Summary Delete account
// @Description Remove the account with its videos, comments, likes, tweets, playlists and subscriptions
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /users/account [delete]
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	if err := s.accountService.DeleteAccount(c.UserContext(), middleware.UserID(c)); err != nil {
		return respondError(c, err)
	}

	s.revoke(c, middleware.Claims(c))
	c.ClearCookie(middleware.AccessTokenCookie, middleware.RefreshTokenCookie)
	return models.Respond(c, fiber.StatusOK, fiber.Map{}, "Account deleted successfully")
}

// GetWatchHistory handles GET /api/v1/users/history
// @Summary Watch history
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} models.APIResponse
// @Router /users/history [get]
func (s *Server) GetWatchHistory(c *fiber.Ctx) error {
	page, err := s.userService.WatchHistory(c.UserContext(), middleware.UserID(c), parsePage(c))
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, page, "Watch history fetched successfully")
}

// ForgotPassword handles POST /api/v1/password/forgot
// @Summary Request a password reset code
// @Description Always succeeds for well-formed emails so account existence is not revealed
// @Tags password
// @Accept json
// @Produce json
// @Param request body object{email=string} true "Email"
// @Success 200 {object} models.APIResponse
// @Router /password/forgot [post]
func (s *Server) ForgotPassword(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	if err := s.passwordResetService.RequestReset(c.UserContext(), req.Email); err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{}, "If the email is registered, a reset code has been sent")
}

// ResetPassword handles POST /api/v1/password/reset
// @Summary Reset password with a one-time code
// @Tags password
// @Accept json
// @Produce json
// @Param request body object{email=string,otp=string,newPassword=string} true "Reset"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /password/reset [post]
func (s *Server) ResetPassword(c *fiber.Ctx) error {
	var req struct {
		Email       string `json:"email"`
		OTP         string `json:"otp"`
		NewPassword string `json:"newPassword"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	if err := s.passwordResetService.ResetPassword(c.UserContext(), req.Email, req.OTP, req.NewPassword); err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{}, "Password reset successfully")
}
