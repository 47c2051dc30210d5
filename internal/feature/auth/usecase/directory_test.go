package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"shop_backend/internal/feature/auth/domain/entity"
	"shop_backend/internal/platform/hasher"
)

func newTestDirectory(repo *mockUserRepository) *Directory {
	return NewDirectory(repo, hasher.NewBcryptHasher(bcrypt.MinCost))
}

func TestDirectory_FindByEmail_Normalizes(t *testing.T) {
	var got string
	repo := &mockUserRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*entity.User, error) {
			got = email
			return &entity.User{ID: "u1", Email: email}, nil
		},
	}

	u, err := newTestDirectory(repo).FindByEmail(context.Background(), "  Alice@Example.COM ")

	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got)
	assert.Equal(t, "u1", u.ID)
}

func TestDirectory_FindBySessionToken(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		repoFn  func(ctx context.Context, token string) (*entity.User, error)
		wantID  string
		wantErr error
	}{
		{
			name:    "empty token never matches",
			token:   "",
			repoFn:  func(ctx context.Context, token string) (*entity.User, error) { return &entity.User{ID: "u1"}, nil },
			wantErr: ErrUserNotFound,
		},
		{
			name:   "matching token",
			token:  "tok",
			repoFn: func(ctx context.Context, token string) (*entity.User, error) { return &entity.User{ID: "u1"}, nil },
			wantID: "u1",
		},
		{
			name:    "unknown token",
			token:   "tok",
			repoFn:  func(ctx context.Context, token string) (*entity.User, error) { return nil, ErrUserNotFound },
			wantErr: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockUserRepository{FindBySessionTokenFunc: tt.repoFn}

			u, err := newTestDirectory(repo).FindBySessionToken(context.Background(), tt.token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, u.ID)
		})
	}
}

func TestDirectory_List(t *testing.T) {
	repo := &mockUserRepository{
		ListFunc: func(ctx context.Context) ([]entity.User, error) {
			return []entity.User{{ID: "u1"}, {ID: "u2"}}, nil
		},
	}

	users, err := newTestDirectory(repo).List(context.Background())

	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestDirectory_UpdateByID(t *testing.T) {
	tests := []struct {
		name        string
		upd         entity.ProfileUpdate
		findByEmail func(ctx context.Context, email string) (*entity.User, error)
		wantErr     error
		wantUpdate  bool
	}{
		{
			name:       "new email is free",
			upd:        entity.ProfileUpdate{Username: "b", Email: "b@x.com"},
			wantUpdate: true,
		},
		{
			name: "keeping own email",
			upd:  entity.ProfileUpdate{Username: "b", Email: "a@x.com"},
			findByEmail: func(ctx context.Context, email string) (*entity.User, error) {
				return &entity.User{ID: "u1", Email: email}, nil
			},
			wantUpdate: true,
		},
		{
			name: "email owned by another user",
			upd:  entity.ProfileUpdate{Username: "b", Email: "taken@x.com"},
			findByEmail: func(ctx context.Context, email string) (*entity.User, error) {
				return &entity.User{ID: "u2", Email: email}, nil
			},
			wantErr: ErrEmailAlreadyExists,
		},
		{
			name:    "missing username",
			upd:     entity.ProfileUpdate{Email: "b@x.com"},
			wantErr: ErrValidation,
		},
		{
			name:    "missing email",
			upd:     entity.ProfileUpdate{Username: "b"},
			wantErr: ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated := false
			repo := &mockUserRepository{
				FindByEmailFunc: tt.findByEmail,
				UpdateProfileFunc: func(ctx context.Context, id string, upd entity.ProfileUpdate) (*entity.User, error) {
					updated = true
					return &entity.User{ID: id, Username: upd.Username, Email: upd.Email}, nil
				},
			}

			u, err := newTestDirectory(repo).UpdateByID(context.Background(), "u1", tt.upd)

			assert.Equal(t, tt.wantUpdate, updated)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.upd.Username, u.Username)
		})
	}

	t.Run("unknown id", func(t *testing.T) {
		repo := &mockUserRepository{}

		_, err := newTestDirectory(repo).UpdateByID(context.Background(), "missing", entity.ProfileUpdate{Username: "b", Email: "b@x.com"})

		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestDirectory_UpdatePassword(t *testing.T) {
	t.Run("stores a fresh hash", func(t *testing.T) {
		var gotHash, gotSalt string
		repo := &mockUserRepository{
			UpdatePasswordFunc: func(ctx context.Context, id, hash, salt string) error {
				gotHash, gotSalt = hash, salt
				return nil
			},
		}

		err := newTestDirectory(repo).UpdatePassword(context.Background(), "u1", "new-pass")

		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(gotHash), []byte("new-pass")))
		assert.Contains(t, gotHash, gotSalt)
	})

	t.Run("empty password", func(t *testing.T) {
		err := newTestDirectory(&mockUserRepository{}).UpdatePassword(context.Background(), "u1", "")

		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("password longer than 72 bytes", func(t *testing.T) {
		called := false
		repo := &mockUserRepository{
			UpdatePasswordFunc: func(ctx context.Context, id, hash, salt string) error {
				called = true
				return nil
			},
		}

		err := newTestDirectory(repo).UpdatePassword(context.Background(), "u1", strings.Repeat("a", 73))

		assert.ErrorIs(t, err, ErrValidation)
		assert.False(t, called)
	})
}

func TestDirectory_Create_PasswordLength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"72 bytes accepted", strings.Repeat("a", 72), nil},
		{"73 bytes rejected", strings.Repeat("a", 73), ErrValidation},
		{"multibyte over 72 bytes rejected", strings.Repeat("あ", 25), ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestDirectory(&mockUserRepository{}).Create(context.Background(), "a", "a@x.com", tt.password)

			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDirectory_DeleteByID(t *testing.T) {
	expectedErr := errors.New("delete failed")
	repo := &mockUserRepository{
		DeleteFunc: func(ctx context.Context, id string) error {
			assert.Equal(t, "u1", id)
			return expectedErr
		},
	}

	err := newTestDirectory(repo).DeleteByID(context.Background(), "u1")

	assert.ErrorIs(t, err, expectedErr)
}
