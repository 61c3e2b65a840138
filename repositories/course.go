package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/CPU-commits/Intranet_BCourses/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CourseRepository struct {
	courseModel *models.CourseModel
}

func (c *CourseRepository) GetCourses(ctx context.Context) ([]models.CourseWithTeacher, error) {
	courses := []models.CourseWithTeacher{}

	cursor, err := c.courseModel.Aggregate(ctx, mongo.Pipeline{
		c.getSortByID(),
		c.getLookupTeacher(),
		c.getSetTeacher(),
	})
	if err != nil {
		return nil, err
	}
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (c *CourseRepository) GetCoursesFromIDs(
	ctx context.Context,
	ids []primitive.ObjectID,
) ([]models.CourseWithTeacher, error) {
	courses := []models.CourseWithTeacher{}

	match := bson.D{{
		Key: "$match",
		Value: bson.M{
			"_id": bson.M{
				"$in": ids,
			},
		},
	}}
	cursor, err := c.courseModel.Aggregate(ctx, mongo.Pipeline{
		match,
		c.getLookupTeacher(),
		c.getSetTeacher(),
	})
	if err != nil {
		return nil, err
	}
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (c *CourseRepository) GetStudentCourses(
	ctx context.Context,
	idStudent primitive.ObjectID,
) ([]models.CourseWithTeacher, error) {
	courses := []models.CourseWithTeacher{}

	match := bson.D{{
		Key: "$match",
		Value: bson.M{
			"students": idStudent,
		},
	}}
	cursor, err := c.courseModel.Aggregate(ctx, mongo.Pipeline{
		match,
		c.getSortByID(),
		c.getLookupTeacher(),
		c.getSetTeacher(),
	})
	if err != nil {
		return nil, err
	}
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (c *CourseRepository) GetCourseFromID(ctx context.Context, idCourse primitive.ObjectID) (*models.Course, error) {
	var course *models.Course
	cursor := c.courseModel.GetByID(ctx, idCourse)
	if err := cursor.Decode(&course); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return course, nil
}

func (c *CourseRepository) GetCourse(ctx context.Context, idCourse primitive.ObjectID) (*models.CourseWithLookup, error) {
	var courses []models.CourseWithLookup

	match := bson.D{{
		Key: "$match",
		Value: bson.M{
			"_id": idCourse,
		},
	}}
	cursor, err := c.courseModel.Aggregate(ctx, mongo.Pipeline{
		match,
		c.getLookupTeacher(),
		c.getSetTeacher(),
		c.getLookupStudents(),
		c.getSetStudents(),
		c.getUnsetStudentsLookup(),
	})
	if err != nil {
		return nil, err
	}
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return nil, ErrNotFound
	}
	course := courses[0]
	if course.Students == nil {
		course.Students = []models.SimpleUser{}
	}
	return &course, nil
}

func (c *CourseRepository) InsertCourse(ctx context.Context, course *models.Course) (*models.Course, error) {
	inserted, err := c.courseModel.NewDocument(ctx, course)
	if err != nil {
		return nil, err
	}
	created := *course
	created.ID = inserted.InsertedID.(primitive.ObjectID)
	return &created, nil
}

// Filtered by the loaded teacher so the merge only lands on the
// document the caller was authorized against
func (c *CourseRepository) UpdateCourse(
	ctx context.Context,
	idCourse,
	idTeacher primitive.ObjectID,
	update *models.CourseUpdate,
) (*models.Course, error) {
	var course *models.Course

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	result := c.courseModel.Use().FindOneAndUpdate(
		ctx,
		bson.D{
			{Key: "_id", Value: idCourse},
			{Key: "teacher", Value: idTeacher},
		},
		bson.D{{
			Key:   "$set",
			Value: update.ToSet(time.Now()),
		}},
		opts,
	)
	if err := result.Decode(&course); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return course, nil
}

// Single conditional push; a miss is either an unknown course or a
// student already in the roster
func (c *CourseRepository) AddStudent(
	ctx context.Context,
	idCourse,
	idStudent primitive.ObjectID,
) (*models.Course, error) {
	var course *models.Course

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	result := c.courseModel.Use().FindOneAndUpdate(
		ctx,
		bson.D{
			{Key: "_id", Value: idCourse},
			{Key: "students", Value: bson.M{"$ne": idStudent}},
		},
		bson.D{
			{
				Key: "$push",
				Value: bson.M{
					"students": idStudent,
				},
			},
			{
				Key: "$set",
				Value: bson.M{
					"updated_at": primitive.NewDateTimeFromTime(time.Now()),
				},
			},
		},
		opts,
	)
	err := result.Decode(&course)
	if err == nil {
		return course, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	total, err := c.courseModel.Use().CountDocuments(ctx, bson.D{{
		Key:   "_id",
		Value: idCourse,
	}})
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrAlreadyRegistered
}

func (c *CourseRepository) DeleteCourse(ctx context.Context, idCourse primitive.ObjectID) error {
	result, err := c.courseModel.Use().DeleteOne(ctx, bson.M{
		"_id": idCourse,
	})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func NewCourseRepository(courseModel *models.CourseModel) *CourseRepository {
	return &CourseRepository{
		courseModel: courseModel,
	}
}
