// Package handler はproductフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"shop_backend/internal/api"
	"shop_backend/internal/feature/product/domain/entity"
	"shop_backend/internal/feature/product/transport/http/dto"
	"shop_backend/internal/feature/product/usecase"
	jwtmw "shop_backend/internal/platform/jwt"
	"shop_backend/internal/platform/validation"
)

// ProductUsecase は商品カタログのユースケースを定義します。
type ProductUsecase interface {
	Create(ctx context.Context, in entity.NewProduct, ownerID string) (*entity.Product, error)
	FindByID(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context) ([]entity.Product, error)
	UpdateByID(ctx context.Context, id string, patch entity.ProductPatch) (*entity.Product, error)
	DeleteByID(ctx context.Context, id string) error
}

// ProductHandler は商品関連のHTTPリクエストを処理します。
type ProductHandler struct {
	products ProductUsecase
}

// NewProductHandler はProductHandlerの新しいインスタンスを生成します。
func NewProductHandler(products ProductUsecase) *ProductHandler {
	return &ProductHandler{products: products}
}

// List は全商品を返します。取得失敗時は404を返却します。
func (h *ProductHandler) List(c *gin.Context) {
	ps, err := h.products.List(c.Request.Context())
	if err != nil {
		slog.Error("failed to list products", "error", err)
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "failed to list products"})
		return
	}
	c.JSON(http.StatusOK, dto.FromEntities(ps))
}

// Get はパスパラメータ:idの商品を返します。
// IDが不正または存在しない場合は400を返却します。
func (h *ProductHandler) Get(c *gin.Context) {
	id := c.Param("id")

	p, err := h.products.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrProductNotFound) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.MsgInvalidProductID})
			return
		}
		slog.Error("failed to get product", "error", err, "product_id", id)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: api.MsgInternal})
		return
	}
	c.JSON(http.StatusOK, dto.FromEntity(p))
}

// Create は認証済みユーザーを所有者として商品を登録します。
// - nameまたはpriceが無い場合は400を返却
// - 成功時は201を返却
func (h *ProductHandler) Create(c *gin.Context) {
	u, ok := jwtmw.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: api.MsgForbidden})
		return
	}

	var req dto.CreateProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("product create validation failed", "error", err, "user_id", u.ID)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.MsgNameAndPriceMissing, Details: validation.ToDetails(err)})
		return
	}

	p, err := h.products.Create(c.Request.Context(), req.ToNewProduct(), u.ID)
	if err != nil {
		if errors.Is(err, usecase.ErrValidation) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.MsgNameAndPriceMissing})
			return
		}
		slog.Error("failed to create product", "error", err, "user_id", u.ID)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: api.MsgInternal})
		return
	}

	slog.Info("product created", "product_id", p.ID, "user_id", u.ID)
	c.JSON(http.StatusCreated, dto.FromEntity(p))
}

// Update は指定されたフィールドのみを更新します。
// 所有者チェックはRequireOwnerミドルウェアで行います。
// - 更新フィールドが無い場合は400を返却
// - 商品が存在しない場合は404を返却
func (h *ProductHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req dto.UpdateProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("product update validation failed", "error", err, "product_id", id)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.MsgInvalidRequest, Details: validation.ToDetails(err)})
		return
	}
	patch := req.ToPatch()
	if patch.IsEmpty() {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.MsgNoFieldsToUpdate})
		return
	}

	p, err := h.products.UpdateByID(c.Request.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrProductNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: api.MsgProductNotFound})
		case errors.Is(err, usecase.ErrValidation):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.MsgInvalidRequest})
		default:
			slog.Error("failed to update product", "error", err, "product_id", id)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: api.MsgInternal})
		}
		return
	}

	slog.Info("product updated", "product_id", id)
	c.JSON(http.StatusOK, dto.FromEntity(p))
}

// Delete は商品を削除し、成功時は204を返却します。
func (h *ProductHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.products.DeleteByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, usecase.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: api.MsgProductNotFound})
			return
		}
		slog.Error("failed to delete product", "error", err, "product_id", id)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: api.MsgInternal})
		return
	}

	slog.Info("product deleted", "product_id", id)
	c.Status(http.StatusNoContent)
}
