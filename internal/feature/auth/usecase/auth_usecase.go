package usecase

import (
	"context"
	"errors"
	"fmt"

	"shop_backend/internal/feature/auth/domain"
	"shop_backend/internal/feature/auth/domain/entity"
)

// dummyHash はメールアドレスが未登録の場合に照合されるハッシュです。
// アカウントの有無でログインの処理時間が変わらないようにします。
const (
	dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
	dummySalt = "$2a$10$N9qo8uLOickgx2ZMRZoMye"
)

// TokenIssuer は署名付きトークンの発行を定義します。
// Goの慣例に従い、インターフェースは提供側（platform/jwt）ではなく利用者（usecase）側で定義します。
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// authUsecase はユーザー登録とログインを実装します。
type authUsecase struct {
	dir    *Directory
	users  UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(dir *Directory, users UserRepository, hasher PasswordHasher, tokens TokenIssuer) *authUsecase {
	return &authUsecase{
		dir:    dir,
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register は新しいユーザーを登録します。返されるユーザーは認証情報を持ちません。
func (u *authUsecase) Register(ctx context.Context, username, email, password string) (*entity.User, error) {
	return u.dir.Create(ctx, username, email, password)
}

// Login はパスワードを検証し、ユーザーの唯一の有効なセッションとなるトークンを発行します。
// パスワード誤りや未登録のメールアドレスの場合は domain.ErrInvalidCredentials を返し、保存済みのセッションは変更しません。
func (u *authUsecase) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	user, err := u.users.FindByEmailWithCredential(ctx, normalizeEmail(email))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	hash, salt := dummyHash, dummySalt
	if err == nil {
		hash, salt = user.Credential.PasswordHash, user.Credential.Salt
	}

	// タイミング攻撃を防ぐため常に照合する
	ok := u.hasher.Verify(password, hash, salt)
	if err != nil || !ok {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := u.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	if err := u.users.SetSessionToken(ctx, user.ID, token); err != nil {
		return nil, "", fmt.Errorf("failed to store session token: %w", err)
	}

	user.Credential.SessionToken = token
	out := user.Sanitized()
	return &out, token, nil
}
