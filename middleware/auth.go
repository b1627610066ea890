package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Govind-619/EnrollSphere/models"
	"github.com/Govind-619/EnrollSphere/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// Claims are the fields read from access tokens issued by the hosted auth service.
type Claims struct {
	Email        string                 `json:"email"`
	Role         string                 `json:"role"`
	AppMetadata  map[string]interface{} `json:"app_metadata,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
	jwt.StandardClaims
}

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Email  string
	Role   string
}

// HasRole reports whether the principal carries role
func (p *Principal) HasRole(role string) bool {
	return p != nil && p.Role == role
}

// IsAdmin reports whether the principal is an administrator
func (p *Principal) IsAdmin() bool {
	return p.HasRole(models.RoleAdmin)
}

// Authenticate validates an HS256 access token and returns its principal.
func Authenticate(tokenString, secret string) (*Principal, error) {
	if tokenString == "" {
		return nil, utils.UnauthorizedError("Please login for access", nil)
	}
	if secret == "" {
		return nil, utils.InternalError("JWT secret not configured", nil)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, utils.UnauthorizedError("Please login for access", err)
	}
	if claims.Subject == "" {
		return nil, utils.UnauthorizedError("Invalid token claims", nil)
	}

	return &Principal{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   roleFromClaims(claims),
	}, nil
}

// RequireRole authenticates the token and checks the caller holds role.
// Missing or invalid tokens are 401, a valid token without the role is 403.
func RequireRole(tokenString, secret, role string) (*Principal, error) {
	principal, err := Authenticate(tokenString, secret)
	if err != nil {
		return nil, err
	}
	if !principal.HasRole(role) {
		return nil, utils.ForbiddenError(fmt.Sprintf("%s access required", role), nil)
	}
	return principal, nil
}

// roleFromClaims prefers app_metadata, which only the auth service can write.
func roleFromClaims(claims *Claims) string {
	if role, ok := claims.AppMetadata["role"].(string); ok && role != "" {
		return role
	}
	if role, ok := claims.UserMetadata["role"].(string); ok && role != "" {
		return role
	}
	return models.RoleStudent
}

// BearerToken extracts the token from an Authorization header
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// AuthMiddleware authenticates the request and stores the principal in the context
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := Authenticate(BearerToken(c.GetHeader("Authorization")), secret)
		if err != nil {
			utils.LogError("Authentication failed: %v", err)
			appErr := utils.GetAppError(err)
			utils.AbortWithError(c, appErr.Code, appErr.Message)
			return
		}

		c.Set(utils.ContextPrincipal, principal)
		utils.LogDebug("User %s authenticated", principal.UserID)
		c.Next()
	}
}

// RoleMiddleware requires the authenticated principal to hold role
func RoleMiddleware(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			utils.AbortWithError(c, http.StatusUnauthorized, "Please login for access")
			return
		}
		if !principal.HasRole(role) {
			utils.LogError("User %s attempted %s access", principal.UserID, role)
			utils.AbortWithError(c, http.StatusForbidden, fmt.Sprintf("%s access required", role))
			return
		}
		c.Next()
	}
}

// AdminMiddleware requires the admin role
func AdminMiddleware() gin.HandlerFunc {
	return RoleMiddleware(models.RoleAdmin)
}

// GetPrincipal returns the principal stored by AuthMiddleware
func GetPrincipal(c *gin.Context) (*Principal, bool) {
	v, exists := c.Get(utils.ContextPrincipal)
	if !exists {
		return nil, false
	}
	principal, ok := v.(*Principal)
	return principal, ok
}
