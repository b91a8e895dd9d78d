// Package mongostore implements store.Repository on MongoDB. Documents use
// ObjectID hex strings as _id so ids are plain strings on the wire.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/aTrapDeer/portfolio-backend/internal/logger"
	"github.com/aTrapDeer/portfolio-backend/internal/models"
	"github.com/aTrapDeer/portfolio-backend/internal/store"
)

const connectTimeout = 10 * time.Second

// Open connects to uri, verifies the connection, ensures indexes on dbName
// and returns a Store.
func Open(ctx context.Context, uri, dbName string, log *logger.Logger) (*store.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongostore: ping: %w", err)
	}

	db := client.Database(dbName)
	if err := EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	if log != nil {
		log.Info("Mongo store ready", "database", dbName)
	}
	return New(client, db), nil
}

func New(client *mongo.Client, db *mongo.Database) *store.Store {
	return &store.Store{
		Users:           newRepo[models.User](db),
		Projects:        newRepo[models.Project](db),
		Blogs:           newRepo[models.Blog](db),
		SkillCategories: newRepo[models.SkillCategory](db),
		Skills:          newRepo[models.Skill](db),
		Services:        newRepo[models.Service](db),
		Education:       newRepo[models.Education](db),
		Experience:      newRepo[models.Experience](db),
		Testimonials:    newRepo[models.Testimonial](db),
		ContactMessages: newRepo[models.ContactMessage](db),
		ResetTokens:     newRepo[models.PasswordResetToken](db),
		Backend:         &backend{client: client},
	}
}

type backend struct {
	client *mongo.Client
}

func (b *backend) Name() string { return "mongo" }

func (b *backend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx, readpref.Primary())
}

func (b *backend) Close(ctx context.Context) error {
	return b.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique slug/email indexes and the lookup
// indexes the services query by.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)
	specs := map[string][]mongo.IndexModel{
		models.User{}.TableName(): {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		models.Project{}.TableName(): {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "order", Value: 1}}},
		},
		models.Blog{}.TableName(): {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "published", Value: 1}, {Key: "published_at", Value: -1}}},
		},
		models.SkillCategory{}.TableName(): {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
		},
		models.Testimonial{}.TableName(): {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		models.PasswordResetToken{}.TableName(): {
			{Keys: bson.D{{Key: "email", Value: 1}, {Key: "used", Value: 1}}},
		},
	}
	for coll, idx := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("mongostore: indexes on %s: %w", coll, err)
		}
	}
	return nil
}
