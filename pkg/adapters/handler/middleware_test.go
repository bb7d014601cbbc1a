package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/config"
)

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.Config{
		JWTSecret:  "testservlet",
		EditorAuth: true,
	}
	mw := NewMiddleware(cfg, nil)

	tests := []struct {
		name           string
		path           string
		cookieName     string
		cookieValue    string
		expectedStatus int
	}{
		{
			name:           "No Cookie - API",
			path:           "/api/update-section",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "No Cookie - Browser",
			path:           "/edit/sec-hero",
			expectedStatus: http.StatusTemporaryRedirect,
		},
		{
			name:           "Invalid Cookie - API",
			path:           "/api/update-section",
			cookieName:     "auth_token",
			cookieValue:    "invalid",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong Secret - Browser",
			path:           "/edit/sec-hero",
			cookieName:     "auth_token",
			cookieValue:    generateTestToken(t, "other-secret"),
			expectedStatus: http.StatusTemporaryRedirect,
		},
		{
			name:           "Valid Cookie - API",
			path:           "/api/update-section",
			cookieName:     "auth_token",
			cookieValue:    generateTestToken(t, cfg.JWTSecret),
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.cookieName != "" {
				req.AddCookie(&http.Cookie{Name: tt.cookieName, Value: tt.cookieValue})
			}

			rr := httptest.NewRecorder()
			handler := mw.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			handler.ServeHTTP(rr, req)

			if status := rr.Code; status != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v",
					status, tt.expectedStatus)
			}
		})
	}
}

func TestAuthMiddlewareDisabled(t *testing.T) {
	mw := NewMiddleware(&config.Config{JWTSecret: "testservlet"}, nil)

	var email string
	handler := mw.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email = UserEmail(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/api/update-section", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
	if email != "" {
		t.Errorf("email = %q, want none", email)
	}
}

func TestAuthMiddlewareSetsEmail(t *testing.T) {
	cfg := &config.Config{JWTSecret: "testservlet", EditorAuth: true}
	mw := NewMiddleware(cfg, nil)

	var email string
	handler := mw.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email = UserEmail(r.Context())
	}))

	req := httptest.NewRequest("GET", "/edit/sec-hero", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: generateTestToken(t, cfg.JWTSecret)})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if email != "test@example.com" {
		t.Errorf("email = %q", email)
	}
}

func generateTestToken(t *testing.T, secret string) string {
	expirationTime := time.Now().Add(5 * time.Minute)
	claims := &jwt.RegisteredClaims{
		Subject:   "test@example.com",
		ExpiresAt: jwt.NewNumericDate(expirationTime),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return tokenString
}
