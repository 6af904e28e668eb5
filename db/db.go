package db

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// extractDBName parses the database name from the URI, defaulting to
// "clawcypher".
func extractDBName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "clawcypher"
	}
	if u.Path != "" && u.Path != "/" {
		return u.Path[1:]
	}
	return "clawcypher"
}

// Connect establishes a MongoDB connection and returns the database
// handle named in the URI.
func Connect(ctx context.Context, uri string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	dbName := extractDBName(uri)
	log.Printf("Using database: %s", dbName)
	return client.Database(dbName), nil
}
