// README: Tests for the JWT auth middleware.
package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"courierdash/internal/http/middleware"
)

const testSecret = "test-secret"

func newTestRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Auth(secret))
	r.GET("/test", func(c *gin.Context) {
		p := middleware.Caller(c)
		c.JSON(http.StatusOK, gin.H{"operator": p.Operator, "account": p.Account})
	})
	return r
}

func TestAuth_MissingHeader(t *testing.T) {
	r := newTestRouter(testSecret)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuth_InvalidBearerPrefix(t *testing.T) {
	r := newTestRouter(testSecret)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Token sometoken")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuth_BadSignature(t *testing.T) {
	token, err := middleware.IssueToken("other-secret", "op1", "acct1")
	if err != nil {
		t.Fatal(err)
	}
	r := newTestRouter(testSecret)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuth_ValidToken_PrincipalPopulated(t *testing.T) {
	token, err := middleware.IssueToken(testSecret, "op1", "acct1")
	if err != nil {
		t.Fatal(err)
	}
	r := newTestRouter(testSecret)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "op1") || !strings.Contains(body, "acct1") {
		t.Errorf("principal not populated: %s", body)
	}
}

func TestAuth_MissingClaims(t *testing.T) {
	token, err := middleware.IssueToken(testSecret, "op1", "")
	if err != nil {
		t.Fatal(err)
	}
	r := newTestRouter(testSecret)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}
