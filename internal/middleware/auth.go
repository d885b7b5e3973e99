package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"vidtube/internal/config"
	"vidtube/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "vidtube-api"
	tokenAudience = "vidtube-client"

	// AccessTokenCookie is the cookie name browsers send the access token in.
	AccessTokenCookie = "accessToken"
	// RefreshTokenCookie is the cookie name browsers send the refresh token in.
	RefreshTokenCookie = "refreshToken"
)

// TokenKind separates short-lived access tokens from refresh tokens.
type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenClaims is the verified content of a token.
type TokenClaims struct {
	UserID    uint
	Username  string
	JTI       string
	Kind      TokenKind
	ExpiresAt time.Time
}

// RevocationChecker reports whether a token ID has been revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// TokenManager issues and verifies signed JWTs.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewTokenManager builds a TokenManager from config.
func NewTokenManager(cfg *config.Config) *TokenManager {
	refreshSecret := cfg.RefreshTokenSecret
	if refreshSecret == "" {
		refreshSecret = cfg.JWTSecret
	}
	return &TokenManager{
		accessSecret:  []byte(cfg.JWTSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     cfg.AccessTokenTTL(),
		refreshTTL:    cfg.RefreshTokenTTL(),
		now:           time.Now,
	}
}

func (m *TokenManager) secret(kind TokenKind) []byte {
	if kind == RefreshToken {
		return m.refreshSecret
	}
	return m.accessSecret
}

func (m *TokenManager) ttl(kind TokenKind) time.Duration {
	if kind == RefreshToken {
		return m.refreshTTL
	}
	return m.accessTTL
}

// Issue signs a new token of the given kind for a user.
func (m *TokenManager) Issue(userID uint, username string, kind TokenKind) (string, TokenClaims, error) {
	if len(m.secret(kind)) == 0 {
		return "", TokenClaims{}, fmt.Errorf("JWT secret not configured")
	}

	now := m.now()
	out := TokenClaims{
		UserID:    userID,
		Username:  username,
		JTI:       uuid.NewString(),
		Kind:      kind,
		ExpiresAt: now.Add(m.ttl(kind)),
	}
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"typ":      string(kind),
		"exp":      out.ExpiresAt.Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      out.JTI,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret(kind))
	if err != nil {
		return "", TokenClaims{}, err
	}
	return signed, out, nil
}

// Parse verifies a token of the expected kind and returns its claims.
func (m *TokenManager) Parse(tokenString string, kind TokenKind) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret(kind), nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if typ, _ := claims["typ"].(string); typ != string(kind) {
		return nil, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return nil, ErrInvalidToken
	}

	out := &TokenClaims{UserID: uint(userID), Kind: kind}
	out.Username, _ = claims["username"].(string)
	out.JTI, _ = claims["jti"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// tokenFromRequest reads a bearer token from the Authorization header, then
// the access token cookie, then (for sockets only) the token query parameter.
func tokenFromRequest(c *fiber.Ctx, allowQuery bool) string {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	if cookie := c.Cookies(AccessTokenCookie); cookie != "" {
		return cookie
	}
	if allowQuery {
		return c.Query("token")
	}
	return ""
}

func authenticate(c *fiber.Ctx, tokens *TokenManager, revoked RevocationChecker, allowQuery bool) (*TokenClaims, error) {
	raw := tokenFromRequest(c, allowQuery)
	if raw == "" {
		return nil, models.NewUnauthorizedError("Unauthorized request")
	}

	claims, err := tokens.Parse(raw, AccessToken)
	if err != nil {
		return nil, models.NewUnauthorizedError("Invalid or expired access token")
	}

	if revoked != nil && claims.JTI != "" {
		isRevoked, err := revoked.IsRevoked(c.UserContext(), claims.JTI)
		if err != nil {
			Logger.WarnContext(c.UserContext(), "token revocation lookup failed", "error", err)
		} else if isRevoked {
			return nil, models.NewUnauthorizedError("Token has been revoked")
		}
	}
	return claims, nil
}

func storeIdentity(c *fiber.Ctx, claims *TokenClaims) {
	c.Locals("userID", claims.UserID)
	c.Locals("tokenClaims", claims)
	// Sync to UserContext for logging and downstream services
	ctx := context.WithValue(c.UserContext(), UserIDKey, claims.UserID)
	c.SetUserContext(ctx)
}

// AuthRequired rejects requests without a valid, unrevoked access token.
func AuthRequired(tokens *TokenManager, revoked RevocationChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := authenticate(c, tokens, revoked, false)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}
		storeIdentity(c, claims)
		return c.Next()
	}
}

// WebSocketAuthRequired is AuthRequired that also accepts ?token= since
// browsers cannot set headers on socket upgrades.
func WebSocketAuthRequired(tokens *TokenManager, revoked RevocationChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := authenticate(c, tokens, revoked, true)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}
		storeIdentity(c, claims)
		return c.Next()
	}
}

// OptionalAuth identifies the viewer when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(tokens *TokenManager, revoked RevocationChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if claims, err := authenticate(c, tokens, revoked, false); err == nil {
			storeIdentity(c, claims)
		}
		return c.Next()
	}
}

// UserID returns the authenticated user's ID, or 0 for anonymous requests.
func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

// Claims returns the verified token claims stored by the auth middleware.
func Claims(c *fiber.Ctx) *TokenClaims {
	claims, _ := c.Locals("tokenClaims").(*TokenClaims)
	return claims
}
