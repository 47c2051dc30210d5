// Package domain はauthフィーチャーのドメインエラーを定義します。
package domain

import "errors"

// ErrInvalidCredentials はメールアドレスが未登録、またはパスワードが誤っていることを示します。
// アカウントの存在を推測されないよう、両者を同じエラーで表します。
var ErrInvalidCredentials = errors.New("invalid email or password")
