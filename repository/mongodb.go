package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/amu-telemed/telemed-backend/models"
)

func ConnectMongoDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	return client, nil
}

// LocationArchive is the append-only taxi position history. The latest
// position lives in the taxis table; every tick lands here as well.
type LocationArchive struct {
	collection *mongo.Collection
}

func NewLocationArchive(client *mongo.Client, database string) *LocationArchive {
	return &LocationArchive{
		collection: client.Database(database).Collection("taxi_locations"),
	}
}

func (a *LocationArchive) Append(ctx context.Context, loc models.TaxiLocation) error {
	_, err := a.collection.InsertOne(ctx, loc)
	return err
}
