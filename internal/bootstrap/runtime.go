// Package bootstrap connects the configured stores and assembles the
// repositories every command runs against.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"agora/internal/cache"
	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/middleware"
	"agora/internal/repository"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"gorm.io/gorm"
)

// Runtime holds the connected stores. Posts and Users are already wrapped in
// the Redis read-through cache.
type Runtime struct {
	Posts repository.PostRepository
	Users repository.UserRepository
	Redis *redis.Client

	// Ping checks the primary store.
	Ping func(ctx context.Context) error
	// Close releases every connection opened by InitRuntime.
	Close func(ctx context.Context) error
}

// InitRuntime connects the store selected by cfg.DBDriver and Redis. Redis is
// optional: when it cannot be reached Runtime.Redis is nil and the cache is
// bypassed.
func InitRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	var (
		rt  *Runtime
		err error
	)
	switch cfg.DBDriver {
	case config.DriverMongo:
		rt, err = mongoRuntime(ctx, cfg)
	case config.DriverPostgres, config.DriverSQLite:
		rt, err = gormRuntime(cfg)
	default:
		err = fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if err != nil {
		return nil, err
	}

	cache.InitRedis(cfg.RedisURL)
	rt.Redis = cache.GetClient()
	rt.Posts = repository.NewCachedPostRepository(rt.Posts)
	rt.Users = repository.NewCachedUserRepository(rt.Users)

	closeStore := rt.Close
	rt.Close = func(ctx context.Context) error {
		return errors.Join(closeStore(ctx), cache.Close())
	}

	middleware.Logger.Info("runtime initialized",
		slog.String("driver", cfg.DBDriver),
		slog.Bool("redis", rt.Redis != nil),
	)
	return rt, nil
}

func mongoRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	client, db, err := database.ConnectMongo(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return MongoRuntime(client, db), nil
}

// MongoRuntime builds an uncached Runtime over an open mongo database.
func MongoRuntime(client *mongo.Client, db *mongo.Database) *Runtime {
	return &Runtime{
		Posts: repository.NewMongoPostRepository(db),
		Users: repository.NewMongoUserRepository(db),
		Ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		Close: func(ctx context.Context) error {
			return client.Disconnect(ctx)
		},
	}
}

func gormRuntime(cfg *config.Config) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return GormRuntime(db), nil
}

// GormRuntime builds an uncached Runtime over an open relational database.
func GormRuntime(db *gorm.DB) *Runtime {
	return &Runtime{
		Posts: repository.NewPostRepository(db),
		Users: repository.NewUserRepository(db),
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		Close: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}
