package jwtmw

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"shop_backend/internal/feature/auth/domain/entity"
	"shop_backend/internal/feature/auth/usecase"
)

// TestMain はテスト実行前にGinをテストモードに設定します。
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// resolverFunc は関数をIdentityResolverとして扱うためのアダプターです。
type resolverFunc func(ctx context.Context, token, userID string) (*entity.User, error)

func (f resolverFunc) Resolve(ctx context.Context, token, userID string) (*entity.User, error) {
	return f(ctx, token, userID)
}

// resolveAny はsubjectに一致するユーザーを常に返すリゾルバーです。
var resolveAny = resolverFunc(func(ctx context.Context, token, userID string) (*entity.User, error) {
	return &entity.User{ID: userID, Username: "alice"}, nil
})

func runMiddleware(t *testing.T, mw gin.HandlerFunc, authHeader string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		c.Request.Header.Set("Authorization", authHeader)
	}
	mw(c)
	return w, c
}

// TestAuthRequired_MissingBearerToken はBearerトークンがない場合やプレフィックスが不正な場合に403が返されることを検証します。
func TestAuthRequired_MissingBearerToken(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
	}{
		{"no header", ""},
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"bearer lowercase", "bearer token123"},
		{"no space after Bearer", "Bearertoken123"},
		{"bearer without token", "Bearer   "},
	}

	mw := AuthRequired(NewService("test-secret"), resolveAny)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, c := runMiddleware(t, mw, tt.authHeader)

			if w.Code != http.StatusForbidden {
				t.Errorf("expected status %d, got %d", http.StatusForbidden, w.Code)
			}
			if !c.IsAborted() {
				t.Error("expected request to be aborted")
			}
		})
	}
}

// TestAuthRequired_InvalidToken は不正なトークン（改ざん・期限切れ等）で403が返されることを検証します。
func TestAuthRequired_InvalidToken(t *testing.T) {
	const testSecret = "test-secret-key-for-invalid"

	resolverCalled := false
	resolver := resolverFunc(func(ctx context.Context, token, userID string) (*entity.User, error) {
		resolverCalled = true
		return &entity.User{ID: userID}, nil
	})

	tests := []struct {
		name  string
		token string
	}{
		{"malformed token", "not.a.valid.token"},
		{"wrong secret", createToken("wrong-secret", jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(time.Hour).Unix()})},
		{"expired token", createToken(testSecret, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Hour).Unix()})},
	}

	mw := AuthRequired(NewService(testSecret), resolver)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, c := runMiddleware(t, mw, "Bearer "+tt.token)

			if w.Code != http.StatusForbidden {
				t.Errorf("expected status %d, got %d", http.StatusForbidden, w.Code)
			}
			if !c.IsAborted() {
				t.Error("expected request to be aborted")
			}
		})
	}
	if resolverCalled {
		t.Error("resolver must not be called for an invalid token")
	}
}

// TestAuthRequired_IdentityResolution は識別子の解決結果に応じたステータスを検証します。
func TestAuthRequired_IdentityResolution(t *testing.T) {
	svc := NewService("test-secret")
	token, err := svc.Issue("u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name       string
		resolveErr error
		wantStatus int
	}{
		{"unknown identity", usecase.ErrUserNotFound, http.StatusForbidden},
		{"store failure", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := resolverFunc(func(ctx context.Context, tok, userID string) (*entity.User, error) {
				return nil, tt.resolveErr
			})

			w, c := runMiddleware(t, AuthRequired(svc, resolver), "Bearer "+token)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if !c.IsAborted() {
				t.Error("expected request to be aborted")
			}
		})
	}
}

// TestAuthRequired_ValidToken は有効なトークンでユーザーがコンテキストに設定されることを検証します。
func TestAuthRequired_ValidToken(t *testing.T) {
	svc := NewService("test-secret")
	token, err := svc.Issue("u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var gotToken, gotUserID string
	resolver := resolverFunc(func(ctx context.Context, tok, userID string) (*entity.User, error) {
		gotToken, gotUserID = tok, userID
		return &entity.User{ID: userID, Username: "alice"}, nil
	})

	r := gin.New()
	r.GET("/me", AuthRequired(svc, resolver), func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.String(http.StatusOK, u.ID+":"+c.GetString(ContextUserID))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if w.Body.String() != "u1:u1" {
		t.Errorf("expected body %q, got %q", "u1:u1", w.Body.String())
	}
	if gotToken != token || gotUserID != "u1" {
		t.Errorf("resolver received token=%q userID=%q", gotToken, gotUserID)
	}
}

// TestCurrentUser_Missing はミドルウェアを通過していないコンテキストでfalseが返されることを検証します。
func TestCurrentUser_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if _, ok := CurrentUser(c); ok {
		t.Error("expected no current user")
	}
}
