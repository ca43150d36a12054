package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var (
	ErrMissingHeader = errors.New("missing_authorization_header")
	ErrInvalidFormat = errors.New("invalid_authorization_header")
	ErrEmptyToken    = errors.New("empty_token")
	ErrForbidden     = errors.New("forbidden_insufficient_permissions")
)

const (
	ctxKeyActorID = "actor_id"
	ctxKeyRole    = "role"
)

// ExtractBearerToken 은 Authorization 헤더에서 Bearer 토큰을 꺼낸다.
func ExtractBearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", ErrMissingHeader
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", ErrInvalidFormat
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrEmptyToken
	}
	return token, nil
}

func AbortWithUnauthorized(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
}

// RequireActor 는 access token 을 검증하고 사용자 id 와 role 을 컨텍스트에 넣는다.
func RequireActor(m *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := ExtractBearerToken(c)
		if err != nil {
			AbortWithUnauthorized(c, err)
			return
		}
		claims, err := m.Parse(token)
		if err != nil {
			AbortWithUnauthorized(c, err)
			return
		}
		c.Set(ctxKeyActorID, claims.Subject)
		c.Set(ctxKeyRole, claims.Role)
		c.Next()
	}
}

// RequireRole 은 RequireActor 뒤에 붙어 role 을 검사한다.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxKeyRole) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": ErrForbidden.Error()})
			return
		}
		c.Next()
	}
}

// ActorID 는 RequireActor 가 넣어 둔 사용자 id 다.
func ActorID(c *gin.Context) string {
	return c.GetString(ctxKeyActorID)
}
