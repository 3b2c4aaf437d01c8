package middleware

import (
	"net/http"
	"strings"

	"ecosort/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ClaimsKey is the gin context key under which JWTAuth stores the parsed
// token claims.
const ClaimsKey = "claims"

// JWTClaims are the custom claims carried by every access token. Zone is
// only set for collectors with an assigned route.
type JWTClaims struct {
	UserID   string  `json:"user_id"`
	Username string  `json:"username"`
	Role     string  `json:"role"`
	Zone     *string `json:"zone"`
	jwt.RegisteredClaims
}

// JWTAuth validates the Bearer token on protected routes and stores the
// claims on the context for handlers downstream.
func JWTAuth(secret string) gin.HandlerFunc {
	keyFn := func(*jwt.Token) (interface{}, error) { return []byte(secret), nil }
	validHMAC := jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})

	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("authentication required"))
			return
		}

		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, keyFn, validHMAC)
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("invalid or expired token"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

// RequireRole rejects requests whose token role is not in the allowed list.
// Must be mounted after JWTAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("authentication required"))
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("insufficient permissions"))
			return
		}
		c.Next()
	}
}

// GetClaims returns the claims stored by JWTAuth, or nil on routes that are
// not behind it.
func GetClaims(c *gin.Context) *JWTClaims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*JWTClaims)
	return claims
}
