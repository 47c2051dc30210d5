// Package dto はproductフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import (
	"time"

	"shop_backend/internal/feature/product/domain/entity"
)

// CreateProductReq はPOST /productsのリクエストボディを表します。
// priceは0を許容するためポインタで受け取ります。
type CreateProductReq struct {
	Name        string   `json:"name" binding:"required"`
	Price       *float64 `json:"price" binding:"required,gte=0"`
	Quantity    *int     `json:"quantity" binding:"omitempty,gte=0"`
	Image       string   `json:"image"`
	Description string   `json:"description"`
}

// ToNewProduct はリクエストをエンティティの入力に変換します。
func (r CreateProductReq) ToNewProduct() entity.NewProduct {
	return entity.NewProduct{
		Name:        r.Name,
		Price:       r.Price,
		Quantity:    r.Quantity,
		Image:       r.Image,
		Description: r.Description,
	}
}

// UpdateProductReq はPATCH /products/:idのリクエストボディを表します。
// 指定されなかったフィールドは変更しません。
type UpdateProductReq struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	Quantity    *int     `json:"quantity" binding:"omitempty,gte=0"`
	Image       *string  `json:"image"`
	Description *string  `json:"description"`
}

// ToPatch はリクエストを部分更新に変換します。
func (r UpdateProductReq) ToPatch() entity.ProductPatch {
	return entity.ProductPatch{
		Name:        r.Name,
		Price:       r.Price,
		Quantity:    r.Quantity,
		Image:       r.Image,
		Description: r.Description,
	}
}

// ProductResponse はAPIに公開する商品表現です。
type ProductResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Quantity    int       `json:"quantity"`
	Price       float64   `json:"price"`
	Image       string    `json:"image"`
	Description string    `json:"description"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FromEntity はエンティティをProductResponseに変換します。
func FromEntity(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Quantity:    p.Quantity,
		Price:       p.Price,
		Image:       p.Image,
		Description: p.Description,
		UserID:      p.OwnerID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// FromEntities は商品一覧をレスポンス用に変換します。
func FromEntities(ps []entity.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(ps))
	for i := range ps {
		out = append(out, FromEntity(&ps[i]))
	}
	return out
}
