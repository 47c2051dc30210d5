package usecase

import (
	"context"
	"fmt"
	"strings"

	"shop_backend/internal/feature/auth/domain/entity"
)

// IdentityMode は検証済みトークンをユーザーに解決する方式を表します。
// プロセスごとに有効なモードは1つだけです。
type IdentityMode string

const (
	// IdentityBySessionToken は直近のログインで保存されたトークンのみを受け付けます。
	IdentityBySessionToken IdentityMode = "session_token"

	// IdentityByUserID はsubjectが既存ユーザーである有効期限内のトークンをすべて受け付けます。
	IdentityByUserID IdentityMode = "user_id"
)

// ParseIdentityMode は s を解析します。空の場合は IdentityBySessionToken になります。
func ParseIdentityMode(s string) (IdentityMode, error) {
	switch IdentityMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", IdentityBySessionToken:
		return IdentityBySessionToken, nil
	case IdentityByUserID:
		return IdentityByUserID, nil
	default:
		return "", fmt.Errorf("unknown identity mode %q", s)
	}
}

// IdentityResolver は検証済みトークンを有効なユーザーに解決します。
type IdentityResolver struct {
	mode IdentityMode
	dir  *Directory
}

// NewIdentityResolver は mode で動作するIdentityResolverを生成します。
func NewIdentityResolver(mode IdentityMode, dir *Directory) *IdentityResolver {
	return &IdentityResolver{mode: mode, dir: dir}
}

// Mode は有効な解決方式を返します。
func (r *IdentityResolver) Mode() IdentityMode {
	return r.mode
}

// Resolve は署名検証済みのトークンが示すユーザーを返します。
// userID はトークンのsubjectクレームです。ErrUserNotFound は有効な利用者でないことを示します。
func (r *IdentityResolver) Resolve(ctx context.Context, token, userID string) (*entity.User, error) {
	if r.mode == IdentityByUserID {
		return r.dir.FindByID(ctx, userID)
	}

	u, err := r.dir.FindBySessionToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if u.ID != userID {
		return nil, ErrUserNotFound
	}
	return u, nil
}
