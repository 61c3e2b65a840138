package models

import (
	"testing"
	"time"

	"github.com/CPU-commits/Intranet_BCourses/forms"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNewModelCourse(t *testing.T) {
	teacher := primitive.NewObjectID()
	course := NewModelCourse(&forms.CourseForm{
		Title:    "Basic English",
		Price:    299,
		Duration: "3 months",
		Level:    "beginner",
	}, teacher)

	assert.True(t, course.ID.IsZero())
	assert.Equal(t, teacher, course.Teacher)
	assert.NotNil(t, course.Students)
	assert.Empty(t, course.Students)
	assert.Equal(t, "Basic English", course.Title)
	assert.Equal(t, float64(299), course.Price)
	assert.Equal(t, course.CreatedAt, course.UpdatedAt)
}

func TestCourseUpdateToSet(t *testing.T) {
	title := "Business English"
	price := 499.0
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	set := NewCourseUpdate(&forms.CourseUpdateForm{
		Title: &title,
		Price: &price,
	}).ToSet(now)

	assert.Equal(t, "Business English", set["title"])
	assert.Equal(t, 499.0, set["price"])
	assert.Equal(t, primitive.NewDateTimeFromTime(now), set["updated_at"])
	assert.NotContains(t, set, "description")
	assert.NotContains(t, set, "teacher")
	assert.NotContains(t, set, "students")
}

func TestCourseUpdateApplyTo(t *testing.T) {
	teacher := primitive.NewObjectID()
	student := primitive.NewObjectID()
	course := &Course{
		Title:       "Basic English",
		Description: "Grammar",
		Level:       "beginner",
		Teacher:     teacher,
		Students:    []primitive.ObjectID{student},
	}
	level := "intermediate"
	now := time.Now()

	NewCourseUpdate(&forms.CourseUpdateForm{Level: &level}).ApplyTo(course, now)

	assert.Equal(t, "intermediate", course.Level)
	assert.Equal(t, "Basic English", course.Title)
	assert.Equal(t, "Grammar", course.Description)
	assert.Equal(t, teacher, course.Teacher)
	assert.Equal(t, []primitive.ObjectID{student}, course.Students)
	assert.Equal(t, primitive.NewDateTimeFromTime(now), course.UpdatedAt)
}
