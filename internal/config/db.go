package config

import (
	"context"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	client *mongo.Client
	dbMu   sync.Mutex
)

// ConnectDB initializes the shared Mongo client (idempotent) and returns the
// application database handle.
func ConnectDB(env Env) *mongo.Database {
	dbMu.Lock()
	defer dbMu.Unlock()

	if client != nil {
		return client.Database(env.MongoDB)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(env.MongoURI).
		SetMaxPoolSize(25).
		SetServerSelectionTimeout(5 * time.Second)

	c, err := mongo.Connect(ctx, opts)
	if err != nil {
		log.Fatalf("failed to open mongo connection: %v", err)
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer pingCancel()
	if err := c.Ping(pingCtx, nil); err != nil {
		log.Fatalf("failed to ping mongo: %v", err)
	}

	client = c
	log.Println("connected to MongoDB")
	return client.Database(env.MongoDB)
}

func CloseDB() {
	dbMu.Lock()
	defer dbMu.Unlock()

	if client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
		client = nil
	}
}

// EnsureIndexes creates the indexes the query paths rely on. Safe to call on
// every startup; Mongo treats existing identical indexes as a no-op.
func EnsureIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	tourIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "price", Value: 1}, {Key: "ratingsAverage", Value: -1}}},
		{Keys: bson.D{{Key: "slug", Value: 1}}},
		{Keys: bson.D{{Key: "startLocation", Value: "2dsphere"}}},
	}
	if _, err := db.Collection("tours").Indexes().CreateMany(ctx, tourIndexes); err != nil {
		return err
	}

	unique := true
	reviewIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "tour", Value: 1}, {Key: "user", Value: 1}},
		Options: &options.IndexOptions{Unique: &unique},
	}
	if _, err := db.Collection("reviews").Indexes().CreateOne(ctx, reviewIndex); err != nil {
		return err
	}

	userIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: &options.IndexOptions{Unique: &unique},
	}
	if _, err := db.Collection("users").Indexes().CreateOne(ctx, userIndex); err != nil {
		return err
	}

	return nil
}
