package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kitaphana/kitaphana-backend/internal/logger"
)

const (
	userIDKey        = "identity_user_id"
	sessionKeyKey    = "identity_session_key"
	sessionCookie    = "kitaphana_session"
	sessionCookieAge = int(30 * 24 * time.Hour / time.Second)
)

// IdentityMiddleware resolves who the caller is: the user id from an
// externally issued bearer token when present, otherwise a stable anonymous
// session token minted on first contact. Token issuance itself is not this
// service's concern.
type IdentityMiddleware struct {
	log       *logger.Logger
	jwtSecret []byte
}

func NewIdentityMiddleware(log *logger.Logger, jwtSecret string) *IdentityMiddleware {
	return &IdentityMiddleware{
		log:       log.With("middleware", "IdentityMiddleware"),
		jwtSecret: []byte(jwtSecret),
	}
}

// Resolve attaches the caller identity to the request. Never aborts:
// anonymous callers are valid for view registration and search.
func (im *IdentityMiddleware) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := im.userFromToken(c); ok {
			c.Set(userIDKey, userID)
			c.Next()
			return
		}

		sessionKey, err := c.Cookie(sessionCookie)
		if err != nil || sessionKey == "" {
			sessionKey = uuid.NewString()
			c.SetCookie(sessionCookie, sessionKey, sessionCookieAge, "/", "", false, true)
		}
		c.Set(sessionKeyKey, sessionKey)
		c.Next()
	}
}

// RequireUser aborts with 401 unless the caller is authenticated.
func (im *IdentityMiddleware) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserID(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

func (im *IdentityMiddleware) userFromToken(c *gin.Context) (uuid.UUID, bool) {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) < 8 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return uuid.Nil, false
	}
	tokenString := authHeader[7:]

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return im.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		im.log.Debug("Token rejected", "error", err)
		return uuid.Nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, false
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		im.log.Debug("Token sub is not a user id", "sub", sub)
		return uuid.Nil, false
	}
	return userID, true
}

// UserID returns the authenticated user, if any.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// SessionKey returns the anonymous session token, if the caller has one.
func SessionKey(c *gin.Context) (string, bool) {
	v, exists := c.Get(sessionKeyKey)
	if !exists {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}
