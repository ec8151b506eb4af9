package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, secret, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  "c1b9f6de-8f5a-4a6b-9a1f-0c78a1f2d3e4",
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func protectedRouter(roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/guarded", RequireRole(roles...), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"role": c.GetString("userRole")})
	})
	return router
}

func TestRequireRoleUsesConfiguredSecret(t *testing.T) {
	ConfigureJWTSecret("portal-unit-secret")
	router := protectedRouter("admin")

	// A token signed with the configured secret passes verification.
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "portal-unit-secret", "admin"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("configured-secret token: expected 200, got %d (%s)", rec.Code, rec.Body)
	}

	// A token signed with any other key is rejected.
	req = httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "some-other-key", "admin"))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("foreign-secret token: expected 401, got %d", rec.Code)
	}
}

func TestRequireRoleRejectsDisallowedRole(t *testing.T) {
	ConfigureJWTSecret("portal-unit-secret")
	router := protectedRouter("admin", "ga")

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "portal-unit-secret", "staff"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("staff on admin route: expected 403, got %d", rec.Code)
	}
}

func TestRequireRoleAcceptsCookieToken(t *testing.T) {
	ConfigureJWTSecret("portal-unit-secret")
	router := protectedRouter("kitchen")

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: signToken(t, "portal-unit-secret", "kitchen")})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("cookie token: expected 200, got %d (%s)", rec.Code, rec.Body)
	}
}
