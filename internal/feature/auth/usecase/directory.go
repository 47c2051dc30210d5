package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shop_backend/internal/feature/auth/domain/entity"
)

// maxPasswordBytes はbcryptが受け付けるパスワードの最大バイト数です。
const maxPasswordBytes = 72

// UserRepository はユーザーエンティティの永続化レイヤーを抽象化します。
// Goの慣例に従い、インターフェースは提供側（adapters）ではなく利用者（usecase）側で定義します。
//
// 該当するユーザーがいない場合、読み取り系メソッドは ErrUserNotFound を返します。
// 特に記載がない限り、返されるユーザーはパスワードハッシュとソルトを持ちません。
type UserRepository interface {
	// Create は u を保存してIDを割り当てます。メールアドレスが重複する場合は ErrEmailAlreadyExists を返します。
	Create(ctx context.Context, u *entity.User) error

	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindBySessionToken(ctx context.Context, token string) (*entity.User, error)

	// FindByEmailWithCredential はパスワードハッシュとソルトも読み込みます。
	FindByEmailWithCredential(ctx context.Context, email string) (*entity.User, error)

	List(ctx context.Context) ([]entity.User, error)

	// UpdateProfile はユーザー名とメールアドレスを上書きし、保存後のユーザーを返します。
	UpdateProfile(ctx context.Context, id string, upd entity.ProfileUpdate) (*entity.User, error)
	UpdatePassword(ctx context.Context, id, hash, salt string) error
	SetSessionToken(ctx context.Context, id, token string) error

	Delete(ctx context.Context, id string) error
}

// PasswordHasher は一方向のパスワードハッシュ化を定義します。
type PasswordHasher interface {
	Hash(plaintext string) (digest, salt string, err error)
	Verify(plaintext, digest, salt string) bool
}

// Directory はユーザーディレクトリです。ユーザーレコードの検索と更新を担います。
// ハッシュ化を行うのは Create と UpdatePassword のみです。
type Directory struct {
	users  UserRepository
	hasher PasswordHasher
}

// NewDirectory は users を永続化先とするDirectoryを生成します。
func NewDirectory(users UserRepository, hasher PasswordHasher) *Directory {
	return &Directory{users: users, hasher: hasher}
}

// FindByEmail はメールアドレスでユーザーを取得します。
func (d *Directory) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return d.users.FindByEmail(ctx, normalizeEmail(email))
}

// FindByID はIDでユーザーを取得します。
func (d *Directory) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return d.users.FindByID(ctx, id)
}

// FindBySessionToken は有効なセッショントークンが token であるユーザーを取得します。
func (d *Directory) FindBySessionToken(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, ErrUserNotFound
	}
	return d.users.FindBySessionToken(ctx, token)
}

// List は全ユーザーを取得します。
func (d *Directory) List(ctx context.Context) ([]entity.User, error) {
	return d.users.List(ctx)
}

// Create はパスワードをハッシュ化してユーザーを登録します。
// 返されるユーザーはパスワードハッシュとソルトを持ちません。
func (d *Directory) Create(ctx context.Context, username, email, password string) (*entity.User, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", ErrValidation)
	}
	if err := checkPasswordLength(password); err != nil {
		return nil, err
	}

	// 一意インデックスが最終的な判定。ここでは無駄なハッシュ計算を避けるだけ。
	if _, err := d.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	digest, salt, err := d.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	u := &entity.User{
		Username: username,
		Email:    email,
		Credential: entity.Credential{
			PasswordHash: digest,
			Salt:         salt,
		},
	}
	if err := d.users.Create(ctx, u); err != nil {
		return nil, err
	}

	out := u.Sanitized()
	return &out, nil
}

// UpdateByID は id のユーザーのプロフィール項目を置き換えます。
func (d *Directory) UpdateByID(ctx context.Context, id string, upd entity.ProfileUpdate) (*entity.User, error) {
	upd.Username = strings.TrimSpace(upd.Username)
	upd.Email = normalizeEmail(upd.Email)
	if upd.Username == "" || upd.Email == "" {
		return nil, fmt.Errorf("%w: username and email are required", ErrValidation)
	}

	if other, err := d.users.FindByEmail(ctx, upd.Email); err == nil && other.ID != id {
		return nil, ErrEmailAlreadyExists
	} else if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	return d.users.UpdateProfile(ctx, id, upd)
}

// UpdatePassword は password を再ハッシュ化して id のユーザーに保存します。
func (d *Directory) UpdatePassword(ctx context.Context, id, password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}
	if err := checkPasswordLength(password); err != nil {
		return err
	}
	digest, salt, err := d.hasher.Hash(password)
	if err != nil {
		return err
	}
	return d.users.UpdatePassword(ctx, id, digest, salt)
}

// DeleteByID は id のユーザーを削除します。
func (d *Directory) DeleteByID(ctx context.Context, id string) error {
	return d.users.Delete(ctx, id)
}

func checkPasswordLength(password string) error {
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, maxPasswordBytes)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
