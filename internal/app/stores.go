package app

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/repositories"
)

// storeSet groups the repositories of one backing store.
type storeSet struct {
	users         repositories.UserRepository
	videos        repositories.VideoRepository
	comments      repositories.CommentRepository
	subscriptions repositories.SubscriptionRepository
	likes         repositories.LikeRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

func openStores(ctx context.Context, cfg config.Config) (storeSet, error) {
	switch cfg.Store {
	case config.StorePostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return storeSet{}, err
		}
		stores := postgresStores(pool)
		stores.ping = pool.Ping
		return stores, nil
	default:
		client, database, err := db.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return storeSet{}, err
		}
		if err := repositories.EnsureMongoIndexes(ctx, database); err != nil {
			_ = client.Disconnect(context.Background())
			return storeSet{}, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		return mongoStores(client, database), nil
	}
}

func postgresStores(pool db.Pool) storeSet {
	return storeSet{
		users:         repositories.NewPostgresUserRepository(pool),
		videos:        repositories.NewPostgresVideoRepository(pool),
		comments:      repositories.NewPostgresCommentRepository(pool),
		subscriptions: repositories.NewPostgresSubscriptionRepository(pool),
		likes:         repositories.NewPostgresLikeRepository(pool),
		close: func(context.Context) error {
			pool.Close()
			return nil
		},
	}
}

func mongoStores(client *mongo.Client, database *mongo.Database) storeSet {
	return storeSet{
		users:         repositories.NewMongoUserRepository(database),
		videos:        repositories.NewMongoVideoRepository(database),
		comments:      repositories.NewMongoCommentRepository(database),
		subscriptions: repositories.NewMongoSubscriptionRepository(database),
		likes:         repositories.NewMongoLikeRepository(database),
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		close: client.Disconnect,
	}
}
