package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Database holds the client and the four entity collections.
type Database struct {
	Client *mongo.Client

	RestaurantsCollection *mongo.Collection
	HotelsCollection      *mongo.Collection
	RoomsCollection       *mongo.Collection
	BookingsCollection    *mongo.Collection
}

// Connect dials MongoDB and verifies the primary is reachable.
func Connect(ctx context.Context, uri, name string) (*Database, error) {
	clientOptions := options.Client().ApplyURI(uri).SetServerSelectionTimeout(10 * time.Second)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	database := client.Database(name)
	return &Database{
		Client:                client,
		RestaurantsCollection: database.Collection("restaurants"),
		HotelsCollection:      database.Collection("hotels"),
		RoomsCollection:       database.Collection("rooms"),
		BookingsCollection:    database.Collection("bookings"),
	}, nil
}

// EnsureIndexes creates the secondary indexes the list filters rely on.
func (d *Database) EnsureIndexes(ctx context.Context) error {
	if _, err := d.BookingsCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "bookingType", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "hotelId", Value: 1}}},
		{Keys: bson.D{{Key: "restaurantId", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("booking indexes: %w", err)
	}

	if _, err := d.RoomsCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "hotelId", Value: 1}, {Key: "roomNumber", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("room indexes: %w", err)
	}
	return nil
}

func (d *Database) Ping(ctx context.Context) error {
	return d.Client.Ping(ctx, readpref.Primary())
}

func (d *Database) Disconnect(ctx context.Context) error {
	return d.Client.Disconnect(ctx)
}
