// Package middleware はproductフィーチャーの所有者チェックミドルウェアを提供します。
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"shop_backend/internal/api"
	"shop_backend/internal/feature/product/domain/entity"
	"shop_backend/internal/feature/product/usecase"
	jwtmw "shop_backend/internal/platform/jwt"
)

// ContextProduct は所有者チェック済みの *entity.Product を保持するキーです。
const ContextProduct = "product"

// ProductFinder は所有者チェックに必要な商品の取得操作を定義します。
type ProductFinder interface {
	FindByID(ctx context.Context, id string) (*entity.Product, error)
}

// RequireOwner はパスパラメータ:idの商品を読み込み、認証済みユーザーが所有者の場合のみ通過させます。
// jwtmw.AuthRequiredの後に配置する必要があります。
// - 商品が存在しない場合は404
// - 所有者でない場合は403
// - 取得に失敗した場合は500
func RequireOwner(products ProductFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := jwtmw.CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, api.ErrorResponse{Error: api.MsgForbidden})
			return
		}

		id := c.Param("id")
		p, err := products.FindByID(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, usecase.ErrProductNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, api.ErrorResponse{Error: api.MsgProductNotFound})
				return
			}
			slog.Error("failed to load product for ownership check", "error", err, "product_id", id)
			c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{Error: api.MsgInternal})
			return
		}

		if !p.IsOwnedBy(u.ID) {
			slog.Warn("product ownership check failed", "user_id", u.ID, "product_id", id, "remote_addr", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusForbidden, api.ErrorResponse{Error: api.MsgForbidden})
			return
		}

		c.Set(ContextProduct, p)
		c.Next()
	}
}

// CurrentProduct はRequireOwnerが設定した商品を返します。
func CurrentProduct(c *gin.Context) (*entity.Product, bool) {
	v, ok := c.Get(ContextProduct)
	if !ok {
		return nil, false
	}
	p, ok := v.(*entity.Product)
	return p, ok && p != nil
}
