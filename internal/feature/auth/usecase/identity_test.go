package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop_backend/internal/feature/auth/domain/entity"
)

func TestParseIdentityMode(t *testing.T) {
	tests := []struct {
		in      string
		want    IdentityMode
		wantErr bool
	}{
		{"", IdentityBySessionToken, false},
		{"session_token", IdentityBySessionToken, false},
		{" USER_ID ", IdentityByUserID, false},
		{"cookie", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseIdentityMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdentityResolver_Resolve(t *testing.T) {
	stored := &entity.User{
		ID:         "u1",
		Credential: entity.Credential{SessionToken: "current"},
	}

	repo := &mockUserRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*entity.User, error) {
			if id == stored.ID {
				return stored, nil
			}
			return nil, ErrUserNotFound
		},
		FindBySessionTokenFunc: func(ctx context.Context, token string) (*entity.User, error) {
			if token == stored.Credential.SessionToken {
				return stored, nil
			}
			return nil, ErrUserNotFound
		},
	}
	dir := newTestDirectory(repo)

	tests := []struct {
		name    string
		mode    IdentityMode
		token   string
		userID  string
		wantErr error
	}{
		{"session mode accepts the latest token", IdentityBySessionToken, "current", "u1", nil},
		{"session mode rejects a superseded token", IdentityBySessionToken, "previous", "u1", ErrUserNotFound},
		{"session mode rejects a subject mismatch", IdentityBySessionToken, "current", "u2", ErrUserNotFound},
		{"user id mode accepts any token for a live user", IdentityByUserID, "previous", "u1", nil},
		{"user id mode rejects an unknown user", IdentityByUserID, "current", "u2", ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewIdentityResolver(tt.mode, dir)
			assert.Equal(t, tt.mode, r.Mode())

			u, err := r.Resolve(context.Background(), tt.token, tt.userID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "u1", u.ID)
		})
	}
}
