// Package entity はauthフィーチャーのドメインエンティティを定義します。
package entity

import "time"

// User は登録済みのアカウントを表します。
// Email はログインキーであり、全ユーザーで一意です。
type User struct {
	ID       string
	Username string
	Email    string

	// 通常の読み取りでは Credential の一部のみが設定されます。PasswordHash と
	// Salt はログイン処理が明示的に要求した場合にのみ読み込まれます。
	Credential Credential

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Credential はユーザーに紐づく秘密情報を保持します。
type Credential struct {
	PasswordHash string
	Salt         string

	// SessionToken はこのユーザーの現在唯一有効なBearerトークンです。
	// ログインに成功するたびに上書きされます。
	SessionToken string
}

// HasPassword はパスワードハッシュとソルトが読み込まれているかを返します。
func (c Credential) HasPassword() bool {
	return c.PasswordHash != "" && c.Salt != ""
}

// Sanitized はパスワードハッシュとソルトを取り除いた u のコピーを返します。
func (u User) Sanitized() User {
	u.Credential.PasswordHash = ""
	u.Credential.Salt = ""
	return u
}

// ProfileUpdate はユーザーが編集できるプロフィール項目を保持します。
type ProfileUpdate struct {
	Username string
	Email    string
}
