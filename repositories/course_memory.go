package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/CPU-commits/Intranet_BCourses/funct"
	"github.com/CPU-commits/Intranet_BCourses/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CourseMemoryRepository keeps courses in process. It honours the same
// not found and duplicate registration contracts as CourseRepository.
type CourseMemoryRepository struct {
	mu      sync.RWMutex
	courses map[primitive.ObjectID]models.Course
	users   map[primitive.ObjectID]string
}

func (c *CourseMemoryRepository) AddUser(username string) primitive.ObjectID {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := primitive.NewObjectID()
	c.users[id] = username
	return id
}

func (c *CourseMemoryRepository) lookupUser(id primitive.ObjectID) *models.SimpleUser {
	username, ok := c.users[id]
	if !ok {
		return nil
	}
	return &models.SimpleUser{
		ID:       id,
		Username: username,
	}
}

func (c *CourseMemoryRepository) withTeacher(course models.Course) models.CourseWithTeacher {
	return models.CourseWithTeacher{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		Price:       course.Price,
		Duration:    course.Duration,
		Level:       course.Level,
		Teacher:     c.lookupUser(course.Teacher),
		Students:    copyIDs(course.Students),
		CreatedAt:   course.CreatedAt,
		UpdatedAt:   course.UpdatedAt,
	}
}

func (c *CourseMemoryRepository) sorted() []models.Course {
	courses := make([]models.Course, 0, len(c.courses))
	for _, course := range c.courses {
		courses = append(courses, course)
	}
	sort.Slice(courses, func(i, j int) bool {
		return courses[i].ID.Hex() < courses[j].ID.Hex()
	})
	return courses
}

func copyIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	copied := make([]primitive.ObjectID, len(ids))
	copy(copied, ids)
	return copied
}

func (c *CourseMemoryRepository) GetCourses(ctx context.Context) ([]models.CourseWithTeacher, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	courses := []models.CourseWithTeacher{}
	for _, course := range c.sorted() {
		courses = append(courses, c.withTeacher(course))
	}
	return courses, nil
}

func (c *CourseMemoryRepository) GetCoursesFromIDs(
	ctx context.Context,
	ids []primitive.ObjectID,
) ([]models.CourseWithTeacher, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	courses := []models.CourseWithTeacher{}
	for _, course := range c.sorted() {
		wanted := funct.Some(ids, func(id primitive.ObjectID) bool {
			return id == course.ID
		})
		if wanted {
			courses = append(courses, c.withTeacher(course))
		}
	}
	return courses, nil
}

func (c *CourseMemoryRepository) GetStudentCourses(
	ctx context.Context,
	idStudent primitive.ObjectID,
) ([]models.CourseWithTeacher, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	courses := []models.CourseWithTeacher{}
	for _, course := range c.sorted() {
		registered := funct.Some(course.Students, func(id primitive.ObjectID) bool {
			return id == idStudent
		})
		if registered {
			courses = append(courses, c.withTeacher(course))
		}
	}
	return courses, nil
}

func (c *CourseMemoryRepository) GetCourseFromID(ctx context.Context, idCourse primitive.ObjectID) (*models.Course, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	course, ok := c.courses[idCourse]
	if !ok {
		return nil, ErrNotFound
	}
	course.Students = copyIDs(course.Students)
	return &course, nil
}

func (c *CourseMemoryRepository) GetCourse(ctx context.Context, idCourse primitive.ObjectID) (*models.CourseWithLookup, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	course, ok := c.courses[idCourse]
	if !ok {
		return nil, ErrNotFound
	}
	students := []models.SimpleUser{}
	for _, idStudent := range course.Students {
		if student := c.lookupUser(idStudent); student != nil {
			students = append(students, *student)
		}
	}
	return &models.CourseWithLookup{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		Price:       course.Price,
		Duration:    course.Duration,
		Level:       course.Level,
		Teacher:     c.lookupUser(course.Teacher),
		Students:    students,
		CreatedAt:   course.CreatedAt,
		UpdatedAt:   course.UpdatedAt,
	}, nil
}

func (c *CourseMemoryRepository) InsertCourse(ctx context.Context, course *models.Course) (*models.Course, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	created := *course
	created.ID = primitive.NewObjectID()
	created.Students = copyIDs(course.Students)
	c.courses[created.ID] = created

	result := created
	result.Students = copyIDs(created.Students)
	return &result, nil
}

func (c *CourseMemoryRepository) UpdateCourse(
	ctx context.Context,
	idCourse,
	idTeacher primitive.ObjectID,
	update *models.CourseUpdate,
) (*models.Course, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	course, ok := c.courses[idCourse]
	if !ok || course.Teacher != idTeacher {
		return nil, ErrNotFound
	}
	update.ApplyTo(&course, time.Now())
	c.courses[idCourse] = course

	result := course
	result.Students = copyIDs(course.Students)
	return &result, nil
}

func (c *CourseMemoryRepository) AddStudent(
	ctx context.Context,
	idCourse,
	idStudent primitive.ObjectID,
) (*models.Course, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	course, ok := c.courses[idCourse]
	if !ok {
		return nil, ErrNotFound
	}
	index := funct.Index(course.Students, func(id primitive.ObjectID) bool {
		return id == idStudent
	})
	if index != -1 {
		return nil, ErrAlreadyRegistered
	}
	course.Students = append(copyIDs(course.Students), idStudent)
	course.UpdatedAt = primitive.NewDateTimeFromTime(time.Now())
	c.courses[idCourse] = course

	result := course
	result.Students = copyIDs(course.Students)
	return &result, nil
}

func (c *CourseMemoryRepository) DeleteCourse(ctx context.Context, idCourse primitive.ObjectID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.courses[idCourse]; !ok {
		return ErrNotFound
	}
	delete(c.courses, idCourse)
	return nil
}

func NewCourseMemoryRepository() *CourseMemoryRepository {
	return &CourseMemoryRepository{
		courses: make(map[primitive.ObjectID]models.Course),
		users:   make(map[primitive.ObjectID]string),
	}
}
