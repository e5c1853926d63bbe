package http

import (
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/lifeboard/internal/domain/auth"
	apperrors "github.com/yanqian/lifeboard/pkg/errors"
)

// AccessTokenVerifier turns a bearer token into a verified identity.
type AccessTokenVerifier interface {
	VerifyAccessToken(token string) (auth.Identity, error)
}

// authenticate rejects any request without a valid access token.
func authenticate(verifier AccessTokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, apperrors.CodeUnauthorized, "No authorization header provided", nil))
			return
		}
		token, ok := bearerToken(header)
		if !ok {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, apperrors.CodeUnauthorized, "Invalid authorization header format", nil))
			return
		}
		identity, err := verifier.VerifyAccessToken(token)
		if err != nil {
			code := apperrors.CodeOf(err)
			if code == "" {
				code = apperrors.CodeUnauthorized
			}
			message := "Token verification failed"
			if appErr, ok := apperrors.As(err); ok && appErr.Message != "" {
				message = appErr.Message
			}
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, code, message, err))
			return
		}
		setIdentity(c, identity)
		c.Next()
	}
}

// optionalAuth attaches an identity when a valid token is present and never blocks.
func optionalAuth(verifier AccessTokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
			if identity, err := verifier.VerifyAccessToken(token); err == nil {
				setIdentity(c, identity)
			}
		}
		c.Next()
	}
}

// bearerToken accepts exactly "Bearer <token>" with a single space.
func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	if strings.ContainsFunc(parts[1], unicode.IsSpace) {
		return "", false
	}
	return parts[1], true
}

func requireIdentity(c *gin.Context) (auth.Identity, bool) {
	identity, ok := getIdentity(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, apperrors.CodeUnauthorized, "User not authenticated", nil))
	}
	return identity, ok
}
