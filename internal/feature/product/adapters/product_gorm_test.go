package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"shop_backend/internal/feature/product/domain/entity"
	"shop_backend/internal/feature/product/usecase"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to initialize test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&ProductModel{}), "failed to migrate table")
	return db
}

func ptr[T any](v T) *T { return &v }

func createProduct(t *testing.T, repo *productGorm, name string, price float64, owner string) *entity.Product {
	t.Helper()

	p := &entity.Product{Name: name, Price: price, Quantity: 1, OwnerID: owner}
	require.NoError(t, repo.Create(context.Background(), p), "failed to create test data")
	return p
}

func TestProductGorm_Create(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		repo := NewProductGorm(setupTestDB(t))

		p := createProduct(t, repo, "Widget", 9.99, "owner-1")

		assert.Len(t, p.ID, 36, "ID should be a uuid")
		assert.False(t, p.CreatedAt.IsZero(), "CreatedAt is not set")
	})

	t.Run("nil product error", func(t *testing.T) {
		repo := NewProductGorm(setupTestDB(t))

		assert.Error(t, repo.Create(context.Background(), nil))
	})
}

func TestProductGorm_FindByID(t *testing.T) {
	repo := NewProductGorm(setupTestDB(t))
	created := createProduct(t, repo, "Widget", 9.99, "owner-1")

	found, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", found.Name)
	assert.Equal(t, 9.99, found.Price)
	assert.Equal(t, "owner-1", found.OwnerID)

	// Idempotent reads return identical content
	again, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, found, again)

	_, err = repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, usecase.ErrProductNotFound)
}

func TestProductGorm_List(t *testing.T) {
	repo := NewProductGorm(setupTestDB(t))

	empty, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	createProduct(t, repo, "A", 1, "owner-1")
	createProduct(t, repo, "B", 2, "owner-2")

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestProductGorm_Update(t *testing.T) {
	t.Run("merge leaves unspecified fields unchanged", func(t *testing.T) {
		repo := NewProductGorm(setupTestDB(t))
		p := createProduct(t, repo, "Widget", 9.99, "owner-1")

		updated, err := repo.Update(context.Background(), p.ID, entity.ProductPatch{Price: ptr(5.0), Description: ptr("cheaper")})

		require.NoError(t, err)
		assert.Equal(t, "Widget", updated.Name)
		assert.Equal(t, 5.0, updated.Price)
		assert.Equal(t, 1, updated.Quantity)
		assert.Equal(t, "cheaper", updated.Description)
		assert.Equal(t, "owner-1", updated.OwnerID)
	})

	t.Run("zero values are written", func(t *testing.T) {
		repo := NewProductGorm(setupTestDB(t))
		p := createProduct(t, repo, "Widget", 9.99, "owner-1")

		updated, err := repo.Update(context.Background(), p.ID, entity.ProductPatch{Quantity: ptr(0), Price: ptr(0.0)})

		require.NoError(t, err)
		assert.Equal(t, 0, updated.Quantity)
		assert.Equal(t, 0.0, updated.Price)
	})

	t.Run("unknown id", func(t *testing.T) {
		repo := NewProductGorm(setupTestDB(t))

		_, err := repo.Update(context.Background(), "missing", entity.ProductPatch{Name: ptr("x")})

		assert.ErrorIs(t, err, usecase.ErrProductNotFound)
	})

	t.Run("empty patch", func(t *testing.T) {
		repo := NewProductGorm(setupTestDB(t))
		p := createProduct(t, repo, "Widget", 9.99, "owner-1")

		_, err := repo.Update(context.Background(), p.ID, entity.ProductPatch{})

		assert.ErrorIs(t, err, usecase.ErrValidation)
	})
}

func TestProductGorm_Delete(t *testing.T) {
	repo := NewProductGorm(setupTestDB(t))
	p := createProduct(t, repo, "Widget", 9.99, "owner-1")

	require.NoError(t, repo.Delete(context.Background(), p.ID))

	_, err := repo.FindByID(context.Background(), p.ID)
	assert.ErrorIs(t, err, usecase.ErrProductNotFound)
	assert.ErrorIs(t, repo.Delete(context.Background(), p.ID), usecase.ErrProductNotFound)
}
