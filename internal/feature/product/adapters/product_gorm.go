// Package adapters は商品フィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shop_backend/internal/feature/product/domain/entity"
	"shop_backend/internal/feature/product/usecase"
)

// ProductModel はproductsテーブルのGORMモデルです。
type ProductModel struct {
	ID          string  `gorm:"primaryKey;type:varchar(36)"`
	Name        string  `gorm:"type:varchar(255);not null"`
	Quantity    int     `gorm:"not null;default:0"`
	Price       float64 `gorm:"not null"`
	Image       string  `gorm:"type:text"`
	Description string  `gorm:"type:text"`
	OwnerID     string  `gorm:"type:varchar(36);not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName はテーブル名を返します。
func (ProductModel) TableName() string { return "products" }

// ToEntity はモデルをドメインエンティティに変換します。
func (m *ProductModel) ToEntity() *entity.Product {
	return &entity.Product{
		ID:          m.ID,
		Name:        m.Name,
		Quantity:    m.Quantity,
		Price:       m.Price,
		Image:       m.Image,
		Description: m.Description,
		OwnerID:     m.OwnerID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// productGorm はProductRepositoryインターフェースのGORM実装です。
type productGorm struct {
	db *gorm.DB
}

// productGormがProductRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.ProductRepository = (*productGorm)(nil)

// NewProductGorm は指定されたgorm.DB接続でproductGormの新しいインスタンスを生成します。
func NewProductGorm(db *gorm.DB) *productGorm {
	return &productGorm{db: db}
}

// Create は商品を追加し、IDとタイムスタンプを p に反映します。
func (r *productGorm) Create(ctx context.Context, p *entity.Product) error {
	if p == nil {
		return errors.New("product is nil")
	}
	m := &ProductModel{
		ID:          uuid.NewString(),
		Name:        p.Name,
		Quantity:    p.Quantity,
		Price:       p.Price,
		Image:       p.Image,
		Description: p.Description,
		OwnerID:     p.OwnerID,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	p.ID = m.ID
	p.CreatedAt = m.CreatedAt
	p.UpdatedAt = m.UpdatedAt
	return nil
}

// FindByID はIDで商品を取得します。
// 商品が存在しない場合、usecase.ErrProductNotFoundを返します。
func (r *productGorm) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	var m ProductModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrProductNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// List は全商品を作成日時の昇順で取得します。
func (r *productGorm) List(ctx context.Context) ([]entity.Product, error) {
	var ms []ProductModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Product, 0, len(ms))
	for i := range ms {
		out = append(out, *ms[i].ToEntity())
	}
	return out, nil
}

// Update は patch で指定されたカラムのみを更新し、更新後の商品を返します。
func (r *productGorm) Update(ctx context.Context, id string, patch entity.ProductPatch) (*entity.Product, error) {
	values := patchColumns(patch)
	if len(values) == 0 {
		return nil, usecase.ErrValidation
	}

	var out *entity.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&ProductModel{}).Where("id = ?", id).Updates(values)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return usecase.ErrProductNotFound
		}
		var m ProductModel
		if err := tx.Where("id = ?", id).First(&m).Error; err != nil {
			return err
		}
		out = m.ToEntity()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete は商品を削除します。
func (r *productGorm) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&ProductModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrProductNotFound
	}
	return nil
}

// patchColumns は patch をカラム名と値のマップに変換します。
// ゼロ値も含めて更新するため、構造体ではなくマップを使用します。
func patchColumns(patch entity.ProductPatch) map[string]any {
	values := map[string]any{}
	if patch.Name != nil {
		values["name"] = *patch.Name
	}
	if patch.Price != nil {
		values["price"] = *patch.Price
	}
	if patch.Quantity != nil {
		values["quantity"] = *patch.Quantity
	}
	if patch.Image != nil {
		values["image"] = *patch.Image
	}
	if patch.Description != nil {
		values["description"] = *patch.Description
	}
	return values
}
