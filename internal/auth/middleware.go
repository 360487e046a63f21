// Package auth guards moderator routes with bearer JWTs issued elsewhere.
package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const claimsKey = "claims"

var errSigningMethod = errors.New("invalid signing method")

// Claims are the moderator token claims.
type Claims struct {
	Sub string `json:"sub"`
	jwt.RegisteredClaims
}

// Middleware rejects requests without a valid HMAC-signed bearer token.
func Middleware(secret string) gin.HandlerFunc {
	key := []byte(secret)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || scheme != "Bearer" || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
			if _, isHMAC := token.Method.(*jwt.SigningMethodHMAC); !isHMAC {
				return nil, errSigningMethod
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// GetClaims returns the claims stored by Middleware.
func GetClaims(c *gin.Context) (*Claims, bool) {
	v, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	cl, ok := v.(*Claims)
	return cl, ok
}

// Subject returns the token subject, or "" on unauthenticated routes.
func Subject(c *gin.Context) string {
	if cl, ok := GetClaims(c); ok {
		return cl.Sub
	}
	return ""
}
