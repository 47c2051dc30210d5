// Package adapters はauthフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shop_backend/internal/feature/auth/domain/entity"
	"shop_backend/internal/feature/auth/usecase"
)

// UserModel はusersテーブルのGORMモデルです。
type UserModel struct {
	ID           string `gorm:"primaryKey;type:varchar(36)"`
	Username     string `gorm:"type:varchar(255);not null"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	Salt         string `gorm:"type:varchar(64);not null"`
	SessionToken string `gorm:"type:varchar(512);index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName はテーブル名を返します。
func (UserModel) TableName() string { return "users" }

// ToEntity はモデルをドメインエンティティに変換します。
func (m *UserModel) ToEntity() *entity.User {
	return &entity.User{
		ID:       m.ID,
		Username: m.Username,
		Email:    m.Email,
		Credential: entity.Credential{
			PasswordHash: m.PasswordHash,
			Salt:         m.Salt,
			SessionToken: m.SessionToken,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// publicUserColumns はパスワードハッシュとソルトを除いたカラム一覧です。
var publicUserColumns = []string{"id", "username", "email", "session_token", "created_at", "updated_at"}

// userGorm はUserRepositoryインターフェースのGORM実装です。
// PostgreSQLとSQLiteの両方で動作します。
type userGorm struct {
	db *gorm.DB
}

// userGormがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm は指定されたgorm.DB接続でuserGormの新しいインスタンスを生成します。
// db は TranslateError: true で開かれている必要があります。
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create はユーザーをデータベースに追加し、IDとタイムスタンプを u に反映します。
// 同じメールアドレスのユーザーが既に存在する場合、usecase.ErrEmailAlreadyExistsを返します。
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("user is nil")
	}
	m := &UserModel{
		ID:           uuid.NewString(),
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.Credential.PasswordHash,
		Salt:         u.Credential.Salt,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return usecase.ErrEmailAlreadyExists
		}
		return err
	}
	u.ID = m.ID
	u.CreatedAt = m.CreatedAt
	u.UpdatedAt = m.UpdatedAt
	return nil
}

// FindByID はIDでユーザーを取得します。
func (r *userGorm) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.first(ctx, publicUserColumns, "id = ?", id)
}

// FindByEmail はメールアドレスでユーザーを取得します。
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.first(ctx, publicUserColumns, "email = ?", email)
}

// FindBySessionToken はセッショントークンでユーザーを取得します。
func (r *userGorm) FindBySessionToken(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, usecase.ErrUserNotFound
	}
	return r.first(ctx, publicUserColumns, "session_token = ?", token)
}

// FindByEmailWithCredential はパスワードハッシュとソルトを含めてユーザーを取得します。
// ログイン処理専用です。
func (r *userGorm) FindByEmailWithCredential(ctx context.Context, email string) (*entity.User, error) {
	return r.first(ctx, nil, "email = ?", email)
}

// List は全ユーザーを作成日時の昇順で取得します。
func (r *userGorm) List(ctx context.Context) ([]entity.User, error) {
	var ms []UserModel
	if err := r.db.WithContext(ctx).Select(publicUserColumns).Order("created_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	users := make([]entity.User, 0, len(ms))
	for i := range ms {
		users = append(users, *ms[i].ToEntity())
	}
	return users, nil
}

// UpdateProfile はユーザー名とメールアドレスを更新し、更新後のユーザーを返します。
func (r *userGorm) UpdateProfile(ctx context.Context, id string, upd entity.ProfileUpdate) (*entity.User, error) {
	res := r.db.WithContext(ctx).Model(&UserModel{}).Where("id = ?", id).Updates(map[string]any{
		"username": upd.Username,
		"email":    upd.Email,
	})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, usecase.ErrEmailAlreadyExists
		}
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, usecase.ErrUserNotFound
	}
	return r.FindByID(ctx, id)
}

// UpdatePassword はパスワードハッシュとソルトを更新します。
func (r *userGorm) UpdatePassword(ctx context.Context, id, hash, salt string) error {
	return r.update(ctx, id, map[string]any{"password_hash": hash, "salt": salt})
}

// SetSessionToken はユーザーの有効なセッショントークンを置き換えます。
func (r *userGorm) SetSessionToken(ctx context.Context, id, token string) error {
	return r.update(ctx, id, map[string]any{"session_token": token})
}

// Delete はユーザーを削除します。
func (r *userGorm) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&UserModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

func (r *userGorm) first(ctx context.Context, columns []string, query string, arg any) (*entity.User, error) {
	q := r.db.WithContext(ctx)
	if columns != nil {
		q = q.Select(columns)
	}
	var m UserModel
	if err := q.Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

func (r *userGorm) update(ctx context.Context, id string, values map[string]any) error {
	res := r.db.WithContext(ctx).Model(&UserModel{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}
