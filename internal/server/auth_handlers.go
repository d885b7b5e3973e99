package server

import (
	"time"

	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// session is returned by register, login and refresh.
type session struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// issueSession signs a token pair for user and mirrors it into cookies.
func (s *Server) issueSession(c *fiber.Ctx, user *models.User) (*session, error) {
	access, accessClaims, err := s.tokens.Issue(user.ID, user.Username, middleware.AccessToken)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	refresh, refreshClaims, err := s.tokens.Issue(user.ID, user.Username, middleware.RefreshToken)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	s.setTokenCookie(c, middleware.AccessTokenCookie, access, accessClaims.ExpiresAt)
	s.setTokenCookie(c, middleware.RefreshTokenCookie, refresh, refreshClaims.ExpiresAt)
	return &session{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Server) setTokenCookie(c *fiber.Ctx, name, value string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// revoke blacklists a token for the rest of its lifetime. Without Redis the
// token simply lives until it expires.
func (s *Server) revoke(c *fiber.Ctx, claims *middleware.TokenClaims) {
	if claims == nil {
		return
	}
	if err := s.blacklist.Revoke(c.UserContext(), claims.JTI, time.Until(claims.ExpiresAt)); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "failed to revoke token", "kind", claims.Kind, "error", err)
	}
}

func refreshTokenFrom(c *fiber.Ctx) string {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = c.BodyParser(&req)
	if req.RefreshToken != "" {
		return req.RefreshToken
	}
	return c.Cookies(middleware.RefreshTokenCookie)
}

// Register handles POST /api/v1/users/register
// @Summary Register
// @Description Create an account and start a session
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{username=string,email=string,fullName=string,password=string,avatar=models.MediaAsset,coverImage=models.MediaAsset} true "Registration"
// @Success 201 {object} models.APIResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Username   string            `json:"username"`
		Email      string            `json:"email"`
		FullName   string            `json:"fullName"`
		Password   string            `json:"password"`
		Avatar     models.MediaAsset `json:"avatar"`
		CoverImage models.MediaAsset `json:"coverImage"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Username:   req.Username,
		Email:      req.Email,
		FullName:   req.FullName,
		Password:   req.Password,
		Avatar:     req.Avatar,
		CoverImage: req.CoverImage,
	})
	if err != nil {
		return respondError(c, err)
	}

	sess, err := s.issueSession(c, user)
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, sess, "User registered successfully")
}

// Login handles POST /api/v1/users/login
// @Summary Login
// @Description Authenticate by username or email
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{username=string,email=string,password=string} true "Credentials"
// @Success 200 {object} models.APIResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /users/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	identifier := req.Email
	if identifier == "" {
		identifier = req.Username
	}
	user, err := s.userService.Authenticate(c.UserContext(), identifier, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	sess, err := s.issueSession(c, user)
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, sess, "User logged in successfully")
}

// RefreshToken handles POST /api/v1/users/refresh-token
// @Summary Refresh session
// @Description Exchange a refresh token for a new token pair
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{refreshToken=string} false "Refresh token (or cookie)"
// @Success 200 {object} models.APIResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /users/refresh-token [post]
func (s *Server) RefreshToken(c *fiber.Ctx) error {
	raw := refreshTokenFrom(c)
	if raw == "" {
		return respondError(c, models.NewUnauthorizedError("Unauthorized request"))
	}

	claims, err := s.tokens.Parse(raw, middleware.RefreshToken)
	if err != nil {
		return respondError(c, models.NewUnauthorizedError("Invalid or expired refresh token"))
	}
	revoked, err := s.blacklist.IsRevoked(c.UserContext(), claims.JTI)
	if err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "token revocation lookup failed", "error", err)
	}
	if revoked {
		return respondError(c, models.NewUnauthorizedError("Refresh token has been revoked"))
	}

	user, err := s.userService.GetCurrentUser(c.UserContext(), claims.UserID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return respondError(c, models.NewUnauthorizedError("Invalid or expired refresh token"))
		}
		return respondError(c, err)
	}

	s.revoke(c, claims)
	sess, err := s.issueSession(c, user)
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, sess, "Access token refreshed")
}

// Logout handles POST /api/v1/users/logout
// @Summary Logout
// @Description Revoke the current tokens and clear session cookies
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /users/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	s.revoke(c, middleware.Claims(c))

	if raw := refreshTokenFrom(c); raw != "" {
		if claims, err := s.tokens.Parse(raw, middleware.RefreshToken); err == nil && claims.UserID == middleware.UserID(c) {
			s.revoke(c, claims)
		}
	}

	c.ClearCookie(middleware.AccessTokenCookie, middleware.RefreshTokenCookie)
	return models.Respond(c, fiber.StatusOK, fiber.Map{}, "User logged out")
}
