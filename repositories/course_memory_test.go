package repositories

import (
	"context"
	"sync"
	"testing"

	"github.com/CPU-commits/Intranet_BCourses/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func insertCourse(t *testing.T, repo *CourseMemoryRepository, title string, teacher primitive.ObjectID) *models.Course {
	course, err := repo.InsertCourse(context.Background(), &models.Course{
		Title:    title,
		Teacher:  teacher,
		Students: []primitive.ObjectID{},
	})
	require.NoError(t, err)
	return course
}

func TestCourseMemoryRepository_GetCourse(t *testing.T) {
	ctx := context.Background()
	repo := NewCourseMemoryRepository()
	teacher := repo.AddUser("teacher")
	ana := repo.AddUser("ana")
	bob := repo.AddUser("bob")
	course := insertCourse(t, repo, "Basic English", teacher)

	_, err := repo.AddStudent(ctx, course.ID, bob)
	require.NoError(t, err)
	_, err = repo.AddStudent(ctx, course.ID, ana)
	require.NoError(t, err)

	got, err := repo.GetCourse(ctx, course.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Teacher)
	assert.Equal(t, "teacher", got.Teacher.Username)
	assert.Equal(t, []models.SimpleUser{
		{ID: bob, Username: "bob"},
		{ID: ana, Username: "ana"},
	}, got.Students)

	_, err = repo.GetCourse(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCourseMemoryRepository_GetCourses(t *testing.T) {
	ctx := context.Background()
	repo := NewCourseMemoryRepository()
	teacher := repo.AddUser("teacher")
	first := insertCourse(t, repo, "Basic English", teacher)
	second := insertCourse(t, repo, "Business English", primitive.NewObjectID())

	courses, err := repo.GetCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, first.ID, courses[0].ID)
	assert.Equal(t, "teacher", courses[0].Teacher.Username)
	assert.Equal(t, second.ID, courses[1].ID)
	assert.Nil(t, courses[1].Teacher)

	subset, err := repo.GetCoursesFromIDs(ctx, []primitive.ObjectID{second.ID})
	require.NoError(t, err)
	require.Len(t, subset, 1)
	assert.Equal(t, second.ID, subset[0].ID)
}

func TestCourseMemoryRepository_AddStudent(t *testing.T) {
	ctx := context.Background()
	repo := NewCourseMemoryRepository()
	course := insertCourse(t, repo, "Basic English", primitive.NewObjectID())
	student := primitive.NewObjectID()

	updated, err := repo.AddStudent(ctx, course.ID, student)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{student}, updated.Students)

	_, err = repo.AddStudent(ctx, course.ID, student)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	stored, err := repo.GetCourseFromID(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{student}, stored.Students)

	_, err = repo.AddStudent(ctx, primitive.NewObjectID(), student)
	assert.ErrorIs(t, err, ErrNotFound)

	courses, err := repo.GetStudentCourses(ctx, student)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, course.ID, courses[0].ID)
}

func TestCourseMemoryRepository_AddStudentConcurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewCourseMemoryRepository()
	course := insertCourse(t, repo, "Basic English", primitive.NewObjectID())
	student := primitive.NewObjectID()

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.AddStudent(ctx, course.ID, student)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrAlreadyRegistered)
		}
	}
	assert.Equal(t, 1, succeeded)

	stored, err := repo.GetCourseFromID(ctx, course.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Students, 1)
}

func TestCourseMemoryRepository_UpdateCourse(t *testing.T) {
	ctx := context.Background()
	repo := NewCourseMemoryRepository()
	teacher := primitive.NewObjectID()
	course := insertCourse(t, repo, "Basic English", teacher)
	title := "Business English"

	updated, err := repo.UpdateCourse(ctx, course.ID, teacher, &models.CourseUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Business English", updated.Title)
	assert.Equal(t, teacher, updated.Teacher)

	_, err = repo.UpdateCourse(ctx, course.ID, primitive.NewObjectID(), &models.CourseUpdate{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCourseMemoryRepository_DeleteCourse(t *testing.T) {
	ctx := context.Background()
	repo := NewCourseMemoryRepository()
	course := insertCourse(t, repo, "Basic English", primitive.NewObjectID())

	require.NoError(t, repo.DeleteCourse(ctx, course.ID))
	assert.ErrorIs(t, repo.DeleteCourse(ctx, course.ID), ErrNotFound)

	_, err := repo.GetCourseFromID(ctx, course.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
