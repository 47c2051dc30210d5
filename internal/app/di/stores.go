// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"shop_backend/internal/app/config"
	authadapters "shop_backend/internal/feature/auth/adapters"
	authusecase "shop_backend/internal/feature/auth/usecase"
	productadapters "shop_backend/internal/feature/product/adapters"
	productusecase "shop_backend/internal/feature/product/usecase"
	"shop_backend/internal/platform/cache"
	"shop_backend/internal/platform/db"
	platformhandler "shop_backend/internal/platform/http/handler"
	"shop_backend/internal/platform/mongodb"
)

// Stores bundles the repositories of one storage backend.
type Stores struct {
	Users    authusecase.UserRepository
	Products productusecase.ProductRepository

	// Ping checks that the backend is reachable.
	Ping platformhandler.Pinger
	// Close releases the backend's connections.
	Close func(ctx context.Context) error
}

// OpenStores connects to the backend selected by the DATABASE_URL scheme:
// mongodb:// and mongodb+srv:// use MongoDB, postgres:// and sqlite:// use GORM.
func OpenStores(ctx context.Context, cfg config.Config) (*Stores, error) {
	if mongodb.IsMongoURL(cfg.DatabaseURL) {
		client, err := mongodb.Connect(ctx, cfg.DatabaseURL, cfg.DBConnectTimeout)
		if err != nil {
			return nil, err
		}
		name := cfg.MongoDatabase
		if name == "" {
			name = mongodb.DefaultDatabase
		}
		s, err := MongoStores(ctx, client.Database(name))
		if err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		s.Close = client.Disconnect
		return s, nil
	}

	gdb, err := db.Open(cfg.DatabaseURL, cfg.DBConnectTimeout)
	if err != nil {
		return nil, err
	}
	if cfg.RunMigrations {
		if err := migrateOrClose(gdb); err != nil {
			return nil, err
		}
	}
	return GormStores(gdb)
}

// migrateOrClose runs the schema migration and closes gdb when it fails.
func migrateOrClose(gdb *gorm.DB) error {
	err := db.Migrate(gdb)
	if err == nil {
		return nil
	}
	if sqlDB, dbErr := gdb.DB(); dbErr == nil {
		_ = sqlDB.Close()
	}
	return err
}

// GormStores builds the relational repositories on gdb.
func GormStores(gdb *gorm.DB) (*Stores, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return &Stores{
		Users:    authadapters.NewUserGorm(gdb),
		Products: productadapters.NewProductGorm(gdb),
		Ping:     platformhandler.PingFunc(sqlDB.PingContext),
		Close:    func(context.Context) error { return sqlDB.Close() },
	}, nil
}

// MongoStores builds the document repositories on database and ensures their indexes.
func MongoStores(ctx context.Context, database *mongo.Database) (*Stores, error) {
	users := authadapters.NewUserMongo(database)
	if err := users.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create user indexes: %w", err)
	}
	products := productadapters.NewProductMongo(database)
	if err := products.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create product indexes: %w", err)
	}
	client := database.Client()
	return &Stores{
		Users:    users,
		Products: products,
		Ping:     platformhandler.PingFunc(func(ctx context.Context) error { return client.Ping(ctx, nil) }),
		Close:    client.Disconnect,
	}, nil
}

// NewProductRepository wraps products with the Redis cache when rdb is set.
func NewProductRepository(rdb *redis.Client, cfg config.Config, products productusecase.ProductRepository) productusecase.ProductRepository {
	if rdb == nil {
		return products
	}
	return cache.NewCachingProductRepository(rdb, cfg.CacheTTL, products, "products")
}
