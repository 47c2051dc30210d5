// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import "errors"

var (
	// ErrUserNotFound はメールアドレス、ID、セッショントークンのいずれでもユーザーが見つからない場合に返されます。
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists は他のユーザーが使用中のメールアドレスを指定した場合に返されます。
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrValidation は必須項目の欠落や不正な入力の場合に返されます。
	ErrValidation = errors.New("validation failed")
)
