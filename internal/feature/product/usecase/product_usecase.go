package usecase

import (
	"context"
	"fmt"
	"strings"

	"shop_backend/internal/feature/product/domain/entity"
)

// ProductRepository は商品データの永続化レイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
// 存在しないIDに対しては ErrProductNotFound を返します。
type ProductRepository interface {
	// Create は商品を保存し、IDとタイムスタンプを p に反映します。
	Create(ctx context.Context, p *entity.Product) error
	FindByID(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context) ([]entity.Product, error)
	// Update は patch で指定されたフィールドのみを更新し、更新後の商品を返します。
	Update(ctx context.Context, id string, patch entity.ProductPatch) (*entity.Product, error)
	Delete(ctx context.Context, id string) error
}

// productUsecase は商品カタログのユースケースを定義します。
type productUsecase struct {
	products ProductRepository
}

// NewProductUsecase はproductUsecaseの新しいインスタンスを生成します。
func NewProductUsecase(products ProductRepository) *productUsecase {
	return &productUsecase{products: products}
}

// Create は ownerID を所有者として商品を登録します。
// name が空、または price が未指定・負数の場合は ErrValidation を返します。
func (u *productUsecase) Create(ctx context.Context, in entity.NewProduct, ownerID string) (*entity.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Price == nil {
		return nil, fmt.Errorf("%w: name and price are required", ErrValidation)
	}
	if *in.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrValidation)
	}

	quantity := 0
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return nil, fmt.Errorf("%w: quantity must not be negative", ErrValidation)
		}
		quantity = *in.Quantity
	}

	p := &entity.Product{
		Name:        name,
		Price:       *in.Price,
		Quantity:    quantity,
		Image:       in.Image,
		Description: in.Description,
		OwnerID:     ownerID,
	}
	if err := u.products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return p, nil
}

// FindByID はIDで商品を取得します。
func (u *productUsecase) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	return u.products.FindByID(ctx, id)
}

// List は全商品を取得します。
func (u *productUsecase) List(ctx context.Context) ([]entity.Product, error) {
	ps, err := u.products.List(ctx)
	if err != nil {
		return nil, err
	}
	if ps == nil {
		ps = []entity.Product{}
	}
	return ps, nil
}

// UpdateByID は指定されたフィールドのみを更新します（マージ更新）。
func (u *productUsecase) UpdateByID(ctx context.Context, id string, patch entity.ProductPatch) (*entity.Product, error) {
	if patch.IsEmpty() {
		return nil, fmt.Errorf("%w: no fields provided for update", ErrValidation)
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrValidation)
		}
		patch.Name = &name
	}
	if patch.Price != nil && *patch.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if patch.Quantity != nil && *patch.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrValidation)
	}
	return u.products.Update(ctx, id, patch)
}

// DeleteByID は商品を削除します。
func (u *productUsecase) DeleteByID(ctx context.Context, id string) error {
	return u.products.Delete(ctx, id)
}
