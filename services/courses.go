package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/CPU-commits/Intranet_BCourses/forms"
	"github.com/CPU-commits/Intranet_BCourses/funct"
	"github.com/CPU-commits/Intranet_BCourses/models"
	"github.com/CPU-commits/Intranet_BCourses/repositories"
	"github.com/CPU-commits/Intranet_BCourses/res"
	"github.com/CPU-commits/Intranet_BCourses/stack"
	"github.com/nats-io/nats.go"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	ErrCourseNotFound    = errors.New("Course not found")
	ErrNotAuthorized     = errors.New("Not authorized")
	ErrAlreadyRegistered = errors.New("Already registered")
	ErrServer            = errors.New("Server error")
	ErrSearchUnavailable = errors.New("Search unavailable")
	ErrEmptyQuery        = errors.New("Search query is required")
)

type CourseRepository interface {
	GetCourses(ctx context.Context) ([]models.CourseWithTeacher, error)
	GetCoursesFromIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.CourseWithTeacher, error)
	GetStudentCourses(ctx context.Context, idStudent primitive.ObjectID) ([]models.CourseWithTeacher, error)
	GetCourseFromID(ctx context.Context, idCourse primitive.ObjectID) (*models.Course, error)
	GetCourse(ctx context.Context, idCourse primitive.ObjectID) (*models.CourseWithLookup, error)
	InsertCourse(ctx context.Context, course *models.Course) (*models.Course, error)
	UpdateCourse(
		ctx context.Context,
		idCourse,
		idTeacher primitive.ObjectID,
		update *models.CourseUpdate,
	) (*models.Course, error)
	AddStudent(ctx context.Context, idCourse, idStudent primitive.ObjectID) (*models.Course, error)
	DeleteCourse(ctx context.Context, idCourse primitive.ObjectID) error
}

type CourseIndex interface {
	IndexCourse(ctx context.Context, course *models.Course) error
	DeleteCourse(ctx context.Context, idCourse string) error
	Search(ctx context.Context, q string) ([]string, error)
}

type CourseService struct {
	repository CourseRepository
	index      CourseIndex
	publisher  EventPublisher
	logger     *zap.Logger
}

func (c *CourseService) internalError(operation string, idCourse string, err error) *res.ErrorRes {
	c.logger.Error(
		operation,
		zap.String("course", idCourse),
		zap.Error(err),
	)
	return &res.ErrorRes{
		Err:        ErrServer,
		StatusCode: http.StatusInternalServerError,
	}
}

func (c *CourseService) publish(subject string, data interface{}) {
	if c.publisher == nil {
		return
	}
	message, err := formatRequestToNestjsNats(data)
	if err != nil {
		c.logger.Warn("format event", zap.String("subject", subject), zap.Error(err))
		return
	}
	if err := c.publisher.Publish(subject, message); err != nil {
		c.logger.Warn("publish event", zap.String("subject", subject), zap.Error(err))
	}
}

func (c *CourseService) syncIndex(ctx context.Context, course *models.Course) {
	if err := c.index.IndexCourse(ctx, course); err != nil {
		c.logger.Warn("index course", zap.String("course", course.ID.Hex()), zap.Error(err))
	}
}

func (c *CourseService) GetCourses(ctx context.Context) ([]models.CourseWithTeacher, *res.ErrorRes) {
	courses, err := c.repository.GetCourses(ctx)
	if err != nil {
		return nil, c.internalError("get courses", "", err)
	}
	return courses, nil
}

func (c *CourseService) GetCourse(ctx context.Context, idCourse string) (*models.CourseWithLookup, *res.ErrorRes) {
	idObjCourse, err := primitive.ObjectIDFromHex(idCourse)
	if err != nil {
		return nil, c.internalError("get course", idCourse, err)
	}
	course, err := c.repository.GetCourse(ctx, idObjCourse)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &res.ErrorRes{
				Err:        ErrCourseNotFound,
				StatusCode: http.StatusNotFound,
			}
		}
		return nil, c.internalError("get course", idCourse, err)
	}
	return course, nil
}

func (c *CourseService) AuthorizeNewCourse(claims *Claims) *res.ErrorRes {
	if !CanCreateCourse(claims) {
		return &res.ErrorRes{
			Err:        ErrNotAuthorized,
			StatusCode: http.StatusForbidden,
		}
	}
	return nil
}

func (c *CourseService) NewCourse(
	ctx context.Context,
	course *forms.CourseForm,
	claims *Claims,
) (*models.Course, *res.ErrorRes) {
	if errRes := c.AuthorizeNewCourse(claims); errRes != nil {
		return nil, errRes
	}
	idTeacher, err := claims.UserID()
	if err != nil {
		return nil, c.internalError("new course", "", err)
	}
	created, err := c.repository.InsertCourse(ctx, models.NewModelCourse(course, idTeacher))
	if err != nil {
		return nil, c.internalError("new course", "", err)
	}
	c.syncIndex(ctx, created)
	c.publish(COURSE_CREATED_SUBJECT, created)
	return created, nil
}

// Loads the course and runs the owner-or-admin guard. Missing course wins
// over a failed guard
func (c *CourseService) GetCourseForMutation(
	ctx context.Context,
	idCourse string,
	claims *Claims,
) (*models.Course, *res.ErrorRes) {
	idObjCourse, err := primitive.ObjectIDFromHex(idCourse)
	if err != nil {
		return nil, c.internalError("load course", idCourse, err)
	}
	course, err := c.repository.GetCourseFromID(ctx, idObjCourse)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &res.ErrorRes{
				Err:        ErrCourseNotFound,
				StatusCode: http.StatusNotFound,
			}
		}
		return nil, c.internalError("load course", idCourse, err)
	}
	if !CanMutateCourse(course, claims) {
		return nil, &res.ErrorRes{
			Err:        ErrNotAuthorized,
			StatusCode: http.StatusForbidden,
		}
	}
	return course, nil
}

// The merge only lands if the course still has the teacher it was
// authorized against
func (c *CourseService) UpdateCourse(
	ctx context.Context,
	course *models.Course,
	form *forms.CourseUpdateForm,
) (*models.Course, *res.ErrorRes) {
	updated, err := c.repository.UpdateCourse(
		ctx,
		course.ID,
		course.Teacher,
		models.NewCourseUpdate(form),
	)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &res.ErrorRes{
				Err:        ErrCourseNotFound,
				StatusCode: http.StatusNotFound,
			}
		}
		return nil, c.internalError("update course", course.ID.Hex(), err)
	}
	c.syncIndex(ctx, updated)
	c.publish(COURSE_UPDATED_SUBJECT, updated)
	return updated, nil
}

func (c *CourseService) DeleteCourse(ctx context.Context, course *models.Course) *res.ErrorRes {
	idCourse := course.ID.Hex()
	if err := c.repository.DeleteCourse(ctx, course.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return &res.ErrorRes{
				Err:        ErrCourseNotFound,
				StatusCode: http.StatusNotFound,
			}
		}
		return c.internalError("delete course", idCourse, err)
	}
	if err := c.index.DeleteCourse(ctx, idCourse); err != nil {
		c.logger.Warn("unindex course", zap.String("course", idCourse), zap.Error(err))
	}
	c.publish(COURSE_DELETED_SUBJECT, map[string]string{
		"_id": idCourse,
	})
	return nil
}

func (c *CourseService) RegisterCourse(
	ctx context.Context,
	idCourse string,
	claims *Claims,
) (*models.Course, *res.ErrorRes) {
	idObjCourse, err := primitive.ObjectIDFromHex(idCourse)
	if err != nil {
		return nil, c.internalError("register course", idCourse, err)
	}
	idStudent, err := claims.UserID()
	if err != nil {
		return nil, c.internalError("register course", idCourse, err)
	}
	course, err := c.repository.AddStudent(ctx, idObjCourse, idStudent)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &res.ErrorRes{
				Err:        ErrCourseNotFound,
				StatusCode: http.StatusNotFound,
			}
		}
		if errors.Is(err, repositories.ErrAlreadyRegistered) {
			return nil, &res.ErrorRes{
				Err:        ErrAlreadyRegistered,
				StatusCode: http.StatusBadRequest,
			}
		}
		return nil, c.internalError("register course", idCourse, err)
	}
	c.publish(COURSE_REGISTERED_SUBJECT, map[string]string{
		"course":  course.ID.Hex(),
		"student": idStudent.Hex(),
	})
	return course, nil
}

// Hits come back in relevance order; ids no longer in the store are skipped
func (c *CourseService) SearchCourses(ctx context.Context, q string) ([]models.CourseWithTeacher, *res.ErrorRes) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, &res.ErrorRes{
			Err:        ErrEmptyQuery,
			StatusCode: http.StatusBadRequest,
		}
	}
	hits, err := c.index.Search(ctx, q)
	if err != nil {
		if errors.Is(err, repositories.ErrSearchUnavailable) {
			return nil, &res.ErrorRes{
				Err:        ErrSearchUnavailable,
				StatusCode: http.StatusServiceUnavailable,
			}
		}
		return nil, c.internalError("search courses", "", err)
	}
	ids := make([]primitive.ObjectID, 0, len(hits))
	for _, hit := range hits {
		id, err := primitive.ObjectIDFromHex(hit)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return []models.CourseWithTeacher{}, nil
	}
	found, err := c.repository.GetCoursesFromIDs(ctx, ids)
	if err != nil {
		return nil, c.internalError("search courses", "", err)
	}

	courses := make([]models.CourseWithTeacher, 0, len(found))
	for _, id := range ids {
		index := funct.Index(found, func(course models.CourseWithTeacher) bool {
			return course.ID == id
		})
		if index != -1 {
			courses = append(courses, found[index])
		}
	}
	return courses, nil
}

// Replies to get_student_courses with the courses the user is registered in
func (c *CourseService) RespondStudentCourses(m *nats.Msg) {
	payload, err := stack.DecodeDataNest(m.Data)
	if err != nil {
		c.logger.Warn("student courses payload", zap.Error(err))
		return
	}
	idUser, _ := payload["_id"].(string)
	idStudent, err := primitive.ObjectIDFromHex(idUser)
	if err != nil {
		c.logger.Warn("student courses payload", zap.String("user", idUser), zap.Error(err))
		return
	}
	courses, err := c.repository.GetStudentCourses(context.Background(), idStudent)
	if err != nil {
		c.logger.Error("student courses", zap.String("user", idUser), zap.Error(err))
		return
	}
	coursesJson, err := json.Marshal(courses)
	if err != nil {
		c.logger.Error("student courses", zap.String("user", idUser), zap.Error(err))
		return
	}
	if err := m.Respond(coursesJson); err != nil {
		c.logger.Warn("student courses reply", zap.String("user", idUser), zap.Error(err))
	}
}

func NewCourseService(
	repository CourseRepository,
	index CourseIndex,
	publisher EventPublisher,
	logger *zap.Logger,
) *CourseService {
	if index == nil {
		index = repositories.NoopCourseIndex{}
	}
	return &CourseService{
		repository: repository,
		index:      index,
		publisher:  publisher,
		logger:     logger,
	}
}
