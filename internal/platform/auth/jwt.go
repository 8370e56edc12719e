// Package auth authenticates bearer tokens on gin routes.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	apierrors "github.com/Apurer/dessert-delivery-api/internal/shared/errors"
)

const principalKey = "auth.principal"

// RoleAdmin may act on orders it does not own.
const RoleAdmin = "admin"

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// Principal is the authenticated caller.
type Principal struct {
	Subject string
	Role    string
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// Verifier validates HS256 tokens signed with a shared secret.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses the token and extracts the subject from "sub", falling back to "uid".
func (v *Verifier) Verify(token string) (Principal, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return Principal{}, ErrInvalidToken
	}
	subject, _ := claims["sub"].(string)
	if subject == "" {
		subject, _ = claims["uid"].(string)
	}
	if strings.TrimSpace(subject) == "" {
		return Principal{}, fmt.Errorf("%w: subject claim missing", ErrInvalidToken)
	}
	role, _ := claims["role"].(string)
	return Principal{Subject: subject, Role: role}, nil
}

// Issue signs a token for subject. Used by tooling and tests.
func (v *Verifier) Issue(subject, role string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}
	if role != "" {
		claims["role"] = role
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Middleware rejects requests without a valid "Authorization: Bearer <token>" header.
func (v *Verifier) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		parts := strings.Fields(c.GetHeader("Authorization"))
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			apierrors.Respond(c, apierrors.ErrUnauthorized.WithDetail(ErrMissingToken.Error()))
			c.Abort()
			return
		}
		principal, err := v.Verify(parts[1])
		if err != nil {
			apierrors.Respond(c, apierrors.ErrUnauthorized.WithDetail(ErrInvalidToken.Error()))
			c.Abort()
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// PrincipalFrom returns the caller stored by Middleware.
func PrincipalFrom(c *gin.Context) (Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	principal, ok := value.(Principal)
	return principal, ok
}
