package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authentity "shop_backend/internal/feature/auth/domain/entity"
	"shop_backend/internal/feature/product/domain/entity"
	"shop_backend/internal/feature/product/usecase"
	jwtmw "shop_backend/internal/platform/jwt"
	"shop_backend/internal/platform/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validation.Init()
	os.Exit(m.Run())
}

// mockProductUsecase is a mock implementation of the ProductUsecase interface.
type mockProductUsecase struct {
	CreateFunc     func(ctx context.Context, in entity.NewProduct, ownerID string) (*entity.Product, error)
	FindByIDFunc   func(ctx context.Context, id string) (*entity.Product, error)
	ListFunc       func(ctx context.Context) ([]entity.Product, error)
	UpdateByIDFunc func(ctx context.Context, id string, patch entity.ProductPatch) (*entity.Product, error)
	DeleteByIDFunc func(ctx context.Context, id string) error
	calls          int
}

func (m *mockProductUsecase) Create(ctx context.Context, in entity.NewProduct, ownerID string) (*entity.Product, error) {
	m.calls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, in, ownerID)
	}
	return &entity.Product{ID: "p1", Name: in.Name, Price: *in.Price, OwnerID: ownerID}, nil
}

func (m *mockProductUsecase) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	m.calls++
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, usecase.ErrProductNotFound
}

func (m *mockProductUsecase) List(ctx context.Context) ([]entity.Product, error) {
	m.calls++
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []entity.Product{}, nil
}

func (m *mockProductUsecase) UpdateByID(ctx context.Context, id string, patch entity.ProductPatch) (*entity.Product, error) {
	m.calls++
	if m.UpdateByIDFunc != nil {
		return m.UpdateByIDFunc(ctx, id, patch)
	}
	p := &entity.Product{ID: id, Name: "Widget", Price: 9.99, OwnerID: "u1"}
	patch.Apply(p)
	return p, nil
}

func (m *mockProductUsecase) DeleteByID(ctx context.Context, id string) error {
	m.calls++
	if m.DeleteByIDFunc != nil {
		return m.DeleteByIDFunc(ctx, id)
	}
	return nil
}

// newProductRouter はテスト用に認証済みユーザーu1を設定したルーターを生成します。
func newProductRouter(uc ProductUsecase) *gin.Engine {
	h := NewProductHandler(uc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		jwtmw.SetCurrentUser(c, &authentity.User{ID: "u1"})
		c.Next()
	})
	r.GET("/products", h.List)
	r.GET("/products/:id", h.Get)
	r.POST("/products", h.Create)
	r.PATCH("/products/:id", h.Update)
	r.DELETE("/products/:id", h.Delete)
	return r
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, path, nil)
	} else {
		req, _ = http.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestProductHandler_List(t *testing.T) {
	tests := []struct {
		name           string
		listFunc       func(ctx context.Context) ([]entity.Product, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "success: empty catalog",
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
		{
			name: "failure: store error",
			listFunc: func(ctx context.Context) ([]entity.Product, error) {
				return nil, errors.New("connection refused")
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"failed to list products"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(newProductRouter(&mockProductUsecase{ListFunc: tt.listFunc}), http.MethodGet, "/products", "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestProductHandler_Get(t *testing.T) {
	tests := []struct {
		name           string
		findFunc       func(ctx context.Context, id string) (*entity.Product, error)
		expectedStatus int
		expectedError  string
	}{
		{
			name: "success",
			findFunc: func(ctx context.Context, id string) (*entity.Product, error) {
				return &entity.Product{ID: id, Name: "Widget", Price: 9.99, OwnerID: "u1"}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "failure: invalid or unknown id",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid product id",
		},
		{
			name: "failure: store error",
			findFunc: func(ctx context.Context, id string) (*entity.Product, error) {
				return nil, errors.New("timeout")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(newProductRouter(&mockProductUsecase{FindByIDFunc: tt.findFunc}), http.MethodGet, "/products/p1", "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			var got map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, got["error"])
				return
			}
			assert.Equal(t, "p1", got["id"])
			assert.Equal(t, "u1", got["userId"])
			assert.Equal(t, 9.99, got["price"])
		})
	}
}

func TestProductHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		createFunc     func(ctx context.Context, in entity.NewProduct, ownerID string) (*entity.Product, error)
		expectedStatus int
		expectCall     bool
	}{
		{
			name:           "success: owner is the caller",
			body:           `{"name":"Widget","price":9.99}`,
			expectedStatus: http.StatusCreated,
			expectCall:     true,
		},
		{
			name:           "success: zero price is allowed",
			body:           `{"name":"Freebie","price":0}`,
			expectedStatus: http.StatusCreated,
			expectCall:     true,
		},
		{
			name:           "failure: missing price",
			body:           `{"name":"Widget"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "failure: missing name",
			body:           `{"price":9.99}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "failure: negative quantity",
			body:           `{"name":"Widget","price":1,"quantity":-1}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "failure: blank name rejected by usecase",
			body: `{"name":"  ","price":1}`,
			createFunc: func(ctx context.Context, in entity.NewProduct, ownerID string) (*entity.Product, error) {
				return nil, usecase.ErrValidation
			},
			expectedStatus: http.StatusBadRequest,
			expectCall:     true,
		},
		{
			name: "failure: store error",
			body: `{"name":"Widget","price":9.99}`,
			createFunc: func(ctx context.Context, in entity.NewProduct, ownerID string) (*entity.Product, error) {
				return nil, errors.New("failed to create product: timeout")
			},
			expectedStatus: http.StatusInternalServerError,
			expectCall:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotOwner string
			uc := &mockProductUsecase{CreateFunc: func(ctx context.Context, in entity.NewProduct, ownerID string) (*entity.Product, error) {
				gotOwner = ownerID
				if tt.createFunc != nil {
					return tt.createFunc(ctx, in, ownerID)
				}
				return &entity.Product{ID: "p1", Name: in.Name, Price: *in.Price, OwnerID: ownerID}, nil
			}}

			w := doRequest(newProductRouter(uc), http.MethodPost, "/products", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectCall, uc.calls == 1)
			if tt.expectCall {
				assert.Equal(t, "u1", gotOwner)
			}
			if tt.expectedStatus == http.StatusCreated {
				assert.Contains(t, w.Body.String(), `"userId":"u1"`)
			}
		})
	}
}

func TestProductHandler_Update(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		updateFunc     func(ctx context.Context, id string, patch entity.ProductPatch) (*entity.Product, error)
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "success: partial update",
			body:           `{"price":5}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "failure: no fields",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "no fields provided for update",
		},
		{
			name:           "failure: negative price",
			body:           `{"price":-1}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid request",
		},
		{
			name: "failure: product vanished",
			body: `{"price":5}`,
			updateFunc: func(ctx context.Context, id string, patch entity.ProductPatch) (*entity.Product, error) {
				return nil, usecase.ErrProductNotFound
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  "product not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(newProductRouter(&mockProductUsecase{UpdateByIDFunc: tt.updateFunc}), http.MethodPatch, "/products/p1", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			var got map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, got["error"])
				return
			}
			assert.Equal(t, 5.0, got["price"])
			assert.Equal(t, "Widget", got["name"])
		})
	}
}

func TestProductHandler_Delete(t *testing.T) {
	tests := []struct {
		name           string
		deleteFunc     func(ctx context.Context, id string) error
		expectedStatus int
	}{
		{"success", nil, http.StatusNoContent},
		{"failure: unknown product", func(ctx context.Context, id string) error { return usecase.ErrProductNotFound }, http.StatusNotFound},
		{"failure: store error", func(ctx context.Context, id string) error { return errors.New("timeout") }, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(newProductRouter(&mockProductUsecase{DeleteByIDFunc: tt.deleteFunc}), http.MethodDelete, "/products/p1", "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusNoContent {
				assert.Empty(t, strings.TrimSpace(w.Body.String()))
			}
		})
	}
}
