// Package entity はproductフィーチャーのドメインエンティティを定義します。
package entity

import "time"

// Product はただ1人のユーザーが所有するカタログ商品です。
// OwnerID は作成時に認証済みの呼び出し元から設定され、以後変更されません。
type Product struct {
	ID          string
	Name        string
	Quantity    int
	Price       float64
	Image       string
	Description string
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsOwnedBy は userID が p の所有者かどうかを返します。
func (p *Product) IsOwnedBy(userID string) bool {
	return userID != "" && p.OwnerID == userID
}

// NewProduct は作成する商品のクライアント指定項目を保持します。
// Price が nil の場合は未指定を表し、Quantity が nil の場合は0になります。
type NewProduct struct {
	Name        string
	Price       *float64
	Quantity    *int
	Image       string
	Description string
}

// ProductPatch は部分更新を表します。nil のフィールドは変更されません。
type ProductPatch struct {
	Name        *string
	Price       *float64
	Quantity    *int
	Image       *string
	Description *string
}

// IsEmpty は更新対象のフィールドが1つもないかどうかを返します。
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Price == nil && p.Quantity == nil &&
		p.Image == nil && p.Description == nil
}

// Apply は patch で指定されたフィールドを prod にマージします。
func (p ProductPatch) Apply(prod *Product) {
	if p.Name != nil {
		prod.Name = *p.Name
	}
	if p.Price != nil {
		prod.Price = *p.Price
	}
	if p.Quantity != nil {
		prod.Quantity = *p.Quantity
	}
	if p.Image != nil {
		prod.Image = *p.Image
	}
	if p.Description != nil {
		prod.Description = *p.Description
	}
}
