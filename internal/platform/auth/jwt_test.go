package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func newTestRouter(v *Verifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", v.Middleware(), func(c *gin.Context) {
		principal, _ := PrincipalFrom(c)
		c.JSON(http.StatusOK, gin.H{"sub": principal.Subject, "admin": principal.IsAdmin()})
	})
	return router
}

func TestVerify_RoundTrip(t *testing.T) {
	v := NewVerifier("secret")
	token, err := v.Issue("user-1", RoleAdmin, time.Minute)
	require.NoError(t, err)

	principal, err := v.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", principal.Subject)
	require.True(t, principal.IsAdmin())
}

func TestVerify_UIDClaimFallback(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid": "firebase-uid",
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	principal, err := NewVerifier("secret").Verify(token)
	require.NoError(t, err)
	require.Equal(t, "firebase-uid", principal.Subject)
}

func TestVerify_Rejects(t *testing.T) {
	other, err := NewVerifier("other").Issue("user-1", "", time.Minute)
	require.NoError(t, err)
	_, err = NewVerifier("secret").Verify(other)
	require.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewVerifier("secret").Issue("user-1", "", -time.Minute)
	require.NoError(t, err)
	_, err = NewVerifier("secret").Verify(expired)
	require.ErrorIs(t, err, ErrInvalidToken)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "admin"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = NewVerifier("secret").Verify(noSubject)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddleware(t *testing.T) {
	v := NewVerifier("secret")
	router := newTestRouter(v)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")

	token, err := v.Issue("user-1", "", time.Minute)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"sub":"user-1","admin":false}`, rec.Body.String())
}
