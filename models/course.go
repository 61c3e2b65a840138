package models

import (
	"context"
	"time"

	"github.com/CPU-commits/Intranet_BCourses/db"
	"github.com/CPU-commits/Intranet_BCourses/forms"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const COURSES_COLLECTION = "courses"

type Course struct {
	ID          primitive.ObjectID   `json:"_id" bson:"_id,omitempty" example:"637d5de216f58bc8ec7f7f51"`
	Title       string               `json:"title" bson:"title" example:"Basic English"`
	Description string               `json:"description" bson:"description"`
	Price       float64              `json:"price" bson:"price" example:"299"`
	Duration    string               `json:"duration" bson:"duration" example:"3 months"`
	Level       string               `json:"level" bson:"level" example:"beginner"`
	Teacher     primitive.ObjectID   `json:"teacher" bson:"teacher" example:"63785424db1efbc237faecca"`
	Students    []primitive.ObjectID `json:"students" bson:"students"`
	CreatedAt   primitive.DateTime   `json:"created_at" bson:"created_at"`
	UpdatedAt   primitive.DateTime   `json:"updated_at" bson:"updated_at"`
}

// List shape, only the teacher is populated
type CourseWithTeacher struct {
	ID          primitive.ObjectID   `json:"_id" bson:"_id"`
	Title       string               `json:"title" bson:"title"`
	Description string               `json:"description" bson:"description"`
	Price       float64              `json:"price" bson:"price"`
	Duration    string               `json:"duration" bson:"duration"`
	Level       string               `json:"level" bson:"level"`
	Teacher     *SimpleUser          `json:"teacher" bson:"teacher"`
	Students    []primitive.ObjectID `json:"students" bson:"students"`
	CreatedAt   primitive.DateTime   `json:"created_at" bson:"created_at"`
	UpdatedAt   primitive.DateTime   `json:"updated_at" bson:"updated_at"`
}

type CourseWithLookup struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	Price       float64            `json:"price" bson:"price"`
	Duration    string             `json:"duration" bson:"duration"`
	Level       string             `json:"level" bson:"level"`
	Teacher     *SimpleUser        `json:"teacher" bson:"teacher"`
	Students    []SimpleUser       `json:"students" bson:"students"`
	CreatedAt   primitive.DateTime `json:"created_at" bson:"created_at"`
	UpdatedAt   primitive.DateTime `json:"updated_at" bson:"updated_at"`
}

// Allow-listed fields of an update
type CourseUpdate struct {
	Title       *string
	Description *string
	Price       *float64
	Duration    *string
	Level       *string
}

func (u *CourseUpdate) ToSet(now time.Time) bson.M {
	set := bson.M{
		"updated_at": primitive.NewDateTimeFromTime(now),
	}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Price != nil {
		set["price"] = *u.Price
	}
	if u.Duration != nil {
		set["duration"] = *u.Duration
	}
	if u.Level != nil {
		set["level"] = *u.Level
	}
	return set
}

func (u *CourseUpdate) ApplyTo(course *Course, now time.Time) {
	if u.Title != nil {
		course.Title = *u.Title
	}
	if u.Description != nil {
		course.Description = *u.Description
	}
	if u.Price != nil {
		course.Price = *u.Price
	}
	if u.Duration != nil {
		course.Duration = *u.Duration
	}
	if u.Level != nil {
		course.Level = *u.Level
	}
	course.UpdatedAt = primitive.NewDateTimeFromTime(now)
}

func NewCourseUpdate(form *forms.CourseUpdateForm) *CourseUpdate {
	return &CourseUpdate{
		Title:       form.Title,
		Description: form.Description,
		Price:       form.Price,
		Duration:    form.Duration,
		Level:       form.Level,
	}
}

func NewModelCourse(course *forms.CourseForm, teacher primitive.ObjectID) *Course {
	now := primitive.NewDateTimeFromTime(time.Now())
	return &Course{
		Title:       course.Title,
		Description: course.Description,
		Price:       course.Price,
		Duration:    course.Duration,
		Level:       course.Level,
		Teacher:     teacher,
		Students:    []primitive.ObjectID{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

type CourseModel struct {
	collection *mongo.Collection
}

func (course *CourseModel) Use() *mongo.Collection {
	return course.collection
}

func (course *CourseModel) GetByID(ctx context.Context, id primitive.ObjectID) *mongo.SingleResult {
	cursor := course.Use().FindOne(ctx, bson.D{
		{
			Key:   "_id",
			Value: id,
		},
	})
	return cursor
}

func (course *CourseModel) Aggregate(ctx context.Context, pipeline mongo.Pipeline) (*mongo.Cursor, error) {
	cursor, err := course.Use().Aggregate(ctx, pipeline)
	return cursor, err
}

func (course *CourseModel) NewDocument(ctx context.Context, data interface{}) (*mongo.InsertOneResult, error) {
	result, err := course.Use().InsertOne(ctx, data)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func NewCourseModel(database *mongo.Database) *CourseModel {
	return &CourseModel{
		collection: database.Collection(COURSES_COLLECTION),
	}
}

var _ Collection = (*CourseModel)(nil)

// Creates the collection with its schema on first run
func EnsureCourseCollection(ctx context.Context, conn *db.MongoConnection) error {
	collections, err := conn.GetCollections(ctx)
	if err != nil {
		return err
	}
	exists := false
	for _, collection := range collections {
		if collection == COURSES_COLLECTION {
			exists = true
			break
		}
	}
	if !exists {
		var jsonSchema = bson.M{
			"bsonType": "object",
			"required": []string{
				"title",
				"teacher",
				"students",
			},
			"properties": bson.M{
				"title":       bson.M{"bsonType": "string"},
				"description": bson.M{"bsonType": "string"},
				"price":       bson.M{"bsonType": bson.A{"double", "int", "long", "decimal"}},
				"duration":    bson.M{"bsonType": "string"},
				"level":       bson.M{"bsonType": "string"},
				"teacher":     bson.M{"bsonType": "objectId"},
				"students": bson.M{
					"bsonType":    bson.A{"array"},
					"uniqueItems": true,
					"items":       bson.M{"bsonType": "objectId"},
				},
				"created_at": bson.M{"bsonType": "date"},
				"updated_at": bson.M{"bsonType": "date"},
			},
		}
		var validators = bson.M{
			"$jsonSchema": jsonSchema,
		}
		opts := &options.CreateCollectionOptions{
			Validator: validators,
		}
		if err := conn.CreateCollection(ctx, COURSES_COLLECTION, opts); err != nil {
			return err
		}
	}
	// Roster lookups
	_, err = conn.GetCollection(COURSES_COLLECTION).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{
				Key:   "students",
				Value: 1,
			},
		},
	})
	return err
}
