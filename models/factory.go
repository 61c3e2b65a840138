package models

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Collection interface {
	Use() *mongo.Collection
	GetByID(ctx context.Context, id primitive.ObjectID) *mongo.SingleResult
	Aggregate(ctx context.Context, pipeline mongo.Pipeline) (*mongo.Cursor, error)
	NewDocument(ctx context.Context, data interface{}) (*mongo.InsertOneResult, error)
}
