package db

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	Client             *mongo.Client
	ActivityCollection *mongo.Collection
)

// Init connects to MongoDB. An empty uri leaves Client nil and the audit
// trail in memory.
func Init(ctx context.Context, uri, name string) error {
	if uri == "" {
		log.Println("[db] MONGO_URI not set; activity is kept in memory")
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return err
	}
	Client = client
	ActivityCollection = client.Database(name).Collection("admin_activity")
	log.Println("[db] connected to", name)
	return nil
}

func Close(ctx context.Context) error {
	if Client == nil {
		return nil
	}
	return Client.Disconnect(ctx)
}
