package dto

import (
	"time"

	"shop_backend/internal/feature/auth/domain/entity"
)

// UserResponse はAPIに公開するユーザー表現です。
// パスワードハッシュ、ソルト、セッショントークンは含みません。
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LoginResponse はログイン成功時のレスポンスボディです。
type LoginResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// FromEntity はエンティティをUserResponseに変換します。
func FromEntity(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// FromEntities はユーザー一覧をレスポンス用に変換します。空の場合も空配列を返します。
func FromEntities(us []entity.User) []UserResponse {
	out := make([]UserResponse, 0, len(us))
	for i := range us {
		out = append(out, FromEntity(&us[i]))
	}
	return out
}
