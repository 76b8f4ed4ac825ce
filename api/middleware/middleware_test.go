package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/scrapedeck/scrapedeck/session"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestAuth_OpenWhenNoKeys(t *testing.T) {
	r := setupTestRouter()
	r.Use(Auth(nil))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}

func TestAuth_RejectsMissingAndBadKeys(t *testing.T) {
	r := setupTestRouter()
	r.Use(Auth([]string{"secret"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		header map[string]string
		want   int
	}{
		{"no key", nil, http.StatusUnauthorized},
		{"wrong key", map[string]string{"X-API-Key": "nope"}, http.StatusUnauthorized},
		{"header key", map[string]string{"X-API-Key": "secret"}, http.StatusOK},
		{"bearer key", map[string]string{"Authorization": "Bearer secret"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestSession_MintsAndReusesCookie(t *testing.T) {
	store := session.NewStore(time.Hour)
	defer store.Stop()

	r := setupTestRouter()
	r.Use(Session(store, time.Hour))
	var seen []*session.Session
	r.GET("/x", func(c *gin.Context) {
		seen = append(seen, CurrentSession(c))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookie {
		t.Fatalf("cookies = %v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Error("session cookie must be http-only")
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if len(w.Result().Cookies()) != 0 {
		t.Error("known session must not be re-minted")
	}
	if len(seen) != 2 || seen[0] != seen[1] {
		t.Error("both requests must resolve to the same session")
	}
}

func TestSession_IgnoresForgedCookie(t *testing.T) {
	store := session.NewStore(time.Hour)
	defer store.Stop()

	r := setupTestRouter()
	r.Use(Session(store, time.Hour))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "forged"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value == "forged" {
		t.Errorf("forged ID must be replaced, cookies = %v", cookies)
	}
}
