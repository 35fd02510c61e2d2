package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edulink-ug/edulink/config"
	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers = append(handlers, func(ctx *gin.Context) {
		ctx.String(http.StatusOK, ctx.GetString(ContextUserIDKey))
	})
	r.GET("/", handlers...)
	return r
}

func get(r *gin.Engine, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	utils.SetRedis(nil)
	config.Set(config.AppConfig{App: config.AppSection{JWTSecret: "middleware-secret"}})
	token, err := utils.GenerateToken("user-1", "Amina", string(models.RoleStudent), time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	r := newEngine(AuthRequired())

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"empty token", "Bearer   ", http.StatusUnauthorized},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := get(r, c.header)
			if w.Code != c.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, c.status, w.Body.String())
			}
			if c.status == http.StatusOK && w.Body.String() != "user-1" {
				t.Fatalf("user id = %q", w.Body.String())
			}
		})
	}

	utils.BlacklistToken(token, time.Now().Add(time.Hour))
	if w := get(r, "Bearer "+token); w.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token accepted: %d", w.Code)
	}
}

func TestRequireRoles(t *testing.T) {
	withRole := func(role string) gin.HandlerFunc {
		return func(ctx *gin.Context) {
			if role != "" {
				ctx.Set(ContextRoleKey, role)
			}
			ctx.Next()
		}
	}
	cases := []struct {
		role   string
		status int
	}{
		{"", http.StatusUnauthorized},
		{"student", http.StatusForbidden},
		{"teacher", http.StatusOK},
		{"admin", http.StatusOK},
	}
	for _, c := range cases {
		r := newEngine(withRole(c.role), RequireRoles(models.RoleTeacher, models.RoleAdmin))
		if w := get(r, ""); w.Code != c.status {
			t.Errorf("role %q: status = %d, want %d", c.role, w.Code, c.status)
		}
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	// 4 per minute gives a burst of 2.
	r := newEngine(RateLimitMiddleware(4))
	for i := 0; i < 2; i++ {
		if w := get(r, ""); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, w.Code)
		}
	}
	if w := get(r, ""); w.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: status = %d, want 429", w.Code)
	}
}

func TestIPLimitersEvictIdleEntries(t *testing.T) {
	l := &ipLimiters{entries: map[string]*ipLimiter{}, limit: 1, burst: 1}
	now := time.Now()
	l.allow("10.0.0.1", now)
	l.allow("10.0.0.2", now.Add(limiterIdle+time.Second))
	if _, ok := l.entries["10.0.0.1"]; ok {
		t.Fatal("idle entry was not evicted")
	}
	if len(l.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(l.entries))
	}
}
