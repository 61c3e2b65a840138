package db

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const NO_SINGLE_DOCUMENT = "mongo: no documents in result"

// Connect attempts
const CONNECT_RETRIES = 5
const CONNECT_TIMEOUT = time.Second * 10

type MongoConnection struct {
	client   *mongo.Client
	database *mongo.Database
}

func (m *MongoConnection) Database() *mongo.Database {
	return m.database
}

func (m *MongoConnection) GetCollection(collection string) *mongo.Collection {
	return m.database.Collection(collection)
}

func (m *MongoConnection) GetCollections(ctx context.Context) ([]string, error) {
	return m.database.ListCollectionNames(ctx, bson.D{})
}

func (m *MongoConnection) CreateCollection(
	ctx context.Context,
	name string,
	opts *options.CreateCollectionOptions,
) error {
	return m.database.CreateCollection(ctx, name, opts)
}

func (m *MongoConnection) Disconnect(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// Build the connection string, credentials are optional
func MongoURI(connection, username, password, host string) string {
	if username == "" {
		return fmt.Sprintf("%s://%s", connection, host)
	}
	return fmt.Sprintf(
		"%s://%s:%s@%s",
		connection,
		url.QueryEscape(username),
		url.QueryEscape(password),
		host,
	)
}

// Client Connection
func NewConnection(ctx context.Context, uri, dbName string) (*MongoConnection, error) {
	client, err := mongo.NewClient(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	connectCtx, cancel := context.WithTimeout(ctx, CONNECT_TIMEOUT)
	defer cancel()
	if err := client.Connect(connectCtx); err != nil {
		return nil, err
	}
	// Wait for the server
	retryBackoff := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), CONNECT_RETRIES),
		connectCtx,
	)
	err = backoff.Retry(func() error {
		return client.Ping(connectCtx, readpref.Primary())
	}, retryBackoff)
	if err != nil {
		return nil, err
	}
	return &MongoConnection{
		client:   client,
		database: client.Database(dbName),
	}, nil
}
