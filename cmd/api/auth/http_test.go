package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		header    string
		wantToken string
		wantErr   error
	}{
		{name: "missing header", wantErr: ErrMissingHeader},
		{name: "invalid scheme", header: "Basic abc", wantErr: ErrInvalidFormat},
		{name: "missing token part", header: "Bearer", wantErr: ErrInvalidFormat},
		{name: "empty token", header: "Bearer    ", wantErr: ErrEmptyToken},
		{name: "valid bearer token", header: "bearer token-123", wantToken: "token-123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestGinContext(tt.header)

			token, err := ExtractBearerToken(c)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func TestAbortWithUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, rec := newTestGinContext("")

	AbortWithUnauthorized(c, ErrInvalidFormat)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ErrInvalidFormat.Error(), body["error"])
}

func TestRequireActorAndRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewJWTManager("service-secret", "issuer", time.Hour)

	r := gin.New()
	r.GET("/me", RequireActor(m), func(c *gin.Context) {
		c.String(http.StatusOK, ActorID(c))
	})
	r.GET("/moderate", RequireActor(m), RequireRole(RoleModerator), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	userToken, err := m.Sign(testUserID, RoleUser)
	require.NoError(t, err)
	modToken, err := m.Sign(testUserID, RoleModerator)
	require.NoError(t, err)

	do := func(path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, do("/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do("/me", "garbage").Code)

	rec := do("/me", userToken)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testUserID, rec.Body.String())

	assert.Equal(t, http.StatusForbidden, do("/moderate", userToken).Code)
	assert.Equal(t, http.StatusNoContent, do("/moderate", modToken).Code)
}

func newTestGinContext(authorization string) (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	c.Request = req
	return c, rec
}
