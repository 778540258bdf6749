// README: Operator auth middleware (JWT bearer tokens).
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
)

// Principal is the authenticated dashboard operator.
type Principal struct {
	Operator string
	Account  string
}

const principalKey = "auth.principal"

// Auth validates the Authorization bearer JWT and stores the Principal in the
// request context. Tokens are HS256, signed with the shared dashboard secret.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		p, err := parseJWT(strings.TrimSpace(parts[1]), secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// Caller returns the Principal set by Auth.
func Caller(c *gin.Context) Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(Principal); ok {
			return p
		}
	}
	return Principal{}
}

type operatorClaims struct {
	Operator string `json:"operator"`
	Account  string `json:"account"`
	jwt.RegisteredClaims
}

func parseJWT(tokenStr, secret string) (Principal, error) {
	if secret == "" {
		return Principal{}, errors.New("jwt secret is empty")
	}
	tok, err := jwt.ParseWithClaims(tokenStr, &operatorClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}
		return Principal{}, err
	}
	c, _ := tok.Claims.(*operatorClaims)
	if c == nil || c.Operator == "" || c.Account == "" {
		return Principal{}, errors.New("invalid claims")
	}
	return Principal{Operator: c.Operator, Account: c.Account}, nil
}

// IssueToken mints a token for an operator. Used by the login flow and tests.
func IssueToken(secret, operator, account string) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, operatorClaims{
		Operator: operator,
		Account:  account,
	})
	return tok.SignedString([]byte(secret))
}
