// Package usecase はproductフィーチャーのビジネスロジックを実装します。
package usecase

import "errors"

var (
	// ErrProductNotFound は指定されたIDの商品が存在しない場合に返されます。
	ErrProductNotFound = errors.New("product not found")

	// ErrValidation は商品の必須項目の欠落や範囲外の値の場合に返されます。
	ErrValidation = errors.New("validation failed")
)
