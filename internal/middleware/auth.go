package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"drivenpass/internal/account"
	"drivenpass/internal/apperr"
)

const principalContextKey = "principal"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (account.Principal, error)
}

type gateOptions struct {
	queryToken bool
}

type GateOption func(*gateOptions)

// AllowQueryToken also accepts the token from the "token" query parameter.
// Browsers cannot set headers on websocket upgrades.
func AllowQueryToken() GateOption {
	return func(o *gateOptions) { o.queryToken = true }
}

// RequireAuth rejects requests without a valid signed-in bearer token and
// stores the resolved principal on the context.
func RequireAuth(a Authenticator, opts ...GateOption) gin.HandlerFunc {
	var o gateOptions
	for _, opt := range opts {
		opt(&o)
	}

	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok && o.queryToken {
			token = c.Query("token")
			ok = token != ""
		}
		if !ok {
			abortUnauthorized(c, "missing or malformed authorization header")
			return
		}

		p, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			kind, typed := apperr.KindOf(err)
			if !typed || kind != apperr.KindUnauthorized {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"name": "InternalServerError", "message": "internal server error"})
				_ = c.Error(err)
				return
			}
			abortUnauthorized(c, apperr.MessageOf(err))
			return
		}

		c.Set(principalContextKey, p)
		c.Next()
	}
}

func PrincipalFromContext(c *gin.Context) (account.Principal, bool) {
	v, ok := c.Get(principalContextKey)
	if !ok {
		return account.Principal{}, false
	}
	p, ok := v.(account.Principal)
	return p, ok
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"name": string(apperr.KindUnauthorized), "message": msg})
}
