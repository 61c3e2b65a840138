package controllers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/CPU-commits/Intranet_BCourses/forms"
	"github.com/CPU-commits/Intranet_BCourses/res"
	"github.com/CPU-commits/Intranet_BCourses/services"
	"github.com/gin-gonic/gin"
)

type CourseController struct {
	courseService *services.CourseService
}

func abortWithErrorRes(c *gin.Context, errRes *res.ErrorRes) {
	message := errRes.Err.Error()
	// Internal details never leave the service
	if errRes.StatusCode == http.StatusInternalServerError {
		message = services.ErrServer.Error()
	}
	c.AbortWithStatusJSON(errRes.StatusCode, &res.Response{
		Success: false,
		Message: message,
	})
}

func claimsOrAbort(c *gin.Context) (*services.Claims, bool) {
	claims, ok := services.NewClaimsFromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, &res.Response{
			Success: false,
			Message: "Unauthorized",
		})
	}
	return claims, ok
}

// Query
// GetCourses godoc
// @Summary Get courses
// @Desc    Get every course with its teacher. The list is wrapped in the
// @Desc    response envelope under body.courses, not returned as a bare array
// @Tags    courses
// @Accept  json
// @Produce json
// @Success 200 {object} res.Response{body=smaps.CoursesMap}
// @Failure 500 {object} res.Response{} "Server error"
// @Router  / [get]
func (course *CourseController) GetCourses(c *gin.Context) {
	courses, err := course.courseService.GetCourses(c.Request.Context())
	if err != nil {
		abortWithErrorRes(c, err)
		return
	}
	// Response
	response := make(map[string]interface{})
	response["courses"] = courses
	c.JSON(http.StatusOK, &res.Response{
		Success: true,
		Data:    response,
	})
}

// GetCourse godoc
// @Summary Get course
// @Desc    Get course with its teacher and students
// @Tags    courses
// @Accept  json
// @Produce json
// @Param   id  path     string true "MongoID"
// @Success 200 {object} res.Response{body=smaps.CourseMap}
// @Failure 404 {object} res.Response{} "Course not found"
// @Failure 500 {object} res.Response{} "Server error"
// @Router  /{id} [get]
func (course *CourseController) GetCourse(c *gin.Context) {
	idCourse := c.Param("id")

	courseData, err := course.courseService.GetCourse(c.Request.Context(), idCourse)
	if err != nil {
		abortWithErrorRes(c, err)
		return
	}
	// Response
	response := make(map[string]interface{})
	response["course"] = courseData
	c.JSON(http.StatusOK, &res.Response{
		Success: true,
		Data:    response,
	})
}

// SearchCourses godoc
// @Summary Search courses
// @Desc    Full text search over title and description
// @Tags    courses
// @Accept  json
// @Produce json
// @Param   q   query    string true "Search terms"
// @Success 200 {object} res.Response{body=smaps.CoursesMap}
// @Failure 400 {object} res.Response{} "Search query is required"
// @Failure 503 {object} res.Response{} "Search unavailable"
// @Router  /search [get]
func (course *CourseController) SearchCourses(c *gin.Context) {
	q := c.Query("q")

	courses, err := course.courseService.SearchCourses(c.Request.Context(), q)
	if err != nil {
		abortWithErrorRes(c, err)
		return
	}
	response := make(map[string]interface{})
	response["courses"] = courses
	c.JSON(http.StatusOK, &res.Response{
		Success: true,
		Data:    response,
	})
}

// Feed
// NewCourse godoc
// @Summary     New course
// @Desc        Create a course owned by the caller
// @Tags        courses
// @Tags        roles.teacher
// @Tags        roles.admin
// @Accept      json
// @Produce     json
// @Param       course body     forms.CourseForm true "Course"
// @Success     201    {object} res.Response{body=smaps.CourseMutatedMap}
// @Failure     400    {object} res.Response{} "Bad request"
// @Failure     401    {object} res.Response{} "Unauthorized"
// @Failure     403    {object} res.Response{} "Not authorized"
// @Failure     500    {object} res.Response{} "Server error"
// @Security    ApiKeyAuth
// @Router      / [post]
func (course *CourseController) NewCourse(c *gin.Context) {
	claims, ok := claimsOrAbort(c)
	if !ok {
		return
	}
	// Role before body
	if err := course.courseService.AuthorizeNewCourse(claims); err != nil {
		abortWithErrorRes(c, err)
		return
	}
	var courseData forms.CourseForm
	if err := c.ShouldBindJSON(&courseData); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, &res.Response{
			Success: false,
			Message: err.Error(),
		})
		return
	}
	// Insert
	created, err := course.courseService.NewCourse(c.Request.Context(), &courseData, claims)
	if err != nil {
		abortWithErrorRes(c, err)
		return
	}
	response := make(map[string]interface{})
	response["course"] = created
	c.JSON(http.StatusCreated, &res.Response{
		Success: true,
		Data:    response,
	})
}

// UpdateCourse godoc
// @Summary     Update course
// @Desc        Merge the allowed fields into a course of the caller
// @Tags        courses
// @Tags        roles.teacher
// @Tags        roles.admin
// @Accept      json
// @Produce     json
// @Param       id     path     string                 true "MongoID"
// @Param       course body     forms.CourseUpdateForm true "Fields to update"
// @Success     200    {object} res.Response{body=smaps.CourseMutatedMap}
// @Failure     400    {object} res.Response{} "Bad request"
// @Failure     403    {object} res.Response{} "Not authorized"
// @Failure     404    {object} res.Response{} "Course not found"
// @Failure     500    {object} res.Response{} "Server error"
// @Security    ApiKeyAuth
// @Router      /{id} [put]
func (course *CourseController) UpdateCourse(c *gin.Context) {
	idCourse := c.Param("id")
	claims, ok := claimsOrAbort(c)
	if !ok {
		return
	}
	courseData, err := course.courseService.GetCourseForMutation(c.Request.Context(), idCourse, claims)
	if err != nil {
		abortWithErrorRes(c, err)
		return
	}
	var updateData forms.CourseUpdateForm
	if err := c.ShouldBindJSON(&updateData); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, &res.Response{
			Success: false,
			Message: err.Error(),
		})
		return
	}
	// Update
	updated, err := course.courseService.UpdateCourse(c.Request.Context(), courseData, &updateData)
	if err != nil {
		abortWithErrorRes(c, err)
		return
	}
	response := make(map[string]interface{})
	response["course"] = updated
	c.JSON(http.StatusOK, &res.Response{
		Success: true,
		Data:    response,
	})
}

// DeleteCourse godoc
// @Summary     Delete course
// @Tags        courses
// @Tags        roles.teacher
// @Tags        roles.admin
// @Accept      json
// @Produce     json
// @Param       id  path     string true "MongoID"
// @Success     200 {object} res.Response{} "Course removed"
// @Failure     403 {object} res.Response{} "Not authorized"
// @Failure     404 {object} res.Response{} "Course not found"
// @Failure     500 {object} res.Response{} "Server error"
// @Security    ApiKeyAuth
// @Router      /{id} [delete]
func (course *CourseController) DeleteCourse(c *gin.Context) {
	idCourse := c.Param("id")
	claims, ok := claimsOrAbort(c)
	if !ok {
		return
	}
	courseData, err := course.courseService.GetCourseForMutation(c.Request.Context(), idCourse, claims)
	if err != nil {
		abortWithErrorRes(c, err)
		return
	}
	if err := course.courseService.DeleteCourse(c.Request.Context(), courseData); err != nil {
		abortWithErrorRes(c, err)
		return
	}
	c.JSON(http.StatusOK, &res.Response{
		Success: true,
		Message: "Course removed",
	})
}

// RegisterCourse godoc
// @Summary     Register in course
// @Desc        Add the caller to the course students
// @Tags        courses
// @Accept      json
// @Produce     json
// @Param       id  path     string true "MongoID"
// @Success     200 {object} res.Response{body=smaps.CourseMutatedMap}
// @Failure     400 {object} res.Response{} "Already registered"
// @Failure     404 {object} res.Response{} "Course not found"
// @Failure     500 {object} res.Response{} "Server error"
// @Security    ApiKeyAuth
// @Router      /{id}/register [post]
func (course *CourseController) RegisterCourse(c *gin.Context) {
	idCourse := c.Param("id")
	claims, ok := claimsOrAbort(c)
	if !ok {
		return
	}
	registered, err := course.courseService.RegisterCourse(c.Request.Context(), idCourse, claims)
	if err != nil {
		abortWithErrorRes(c, err)
		return
	}
	response := make(map[string]interface{})
	response["course"] = registered
	c.JSON(http.StatusOK, &res.Response{
		Success: true,
		Data:    response,
	})
}

// ExportStudents godoc
// @Summary     Export students
// @Desc        Download the course roster as a spreadsheet or pdf
// @Tags        courses
// @Tags        roles.teacher
// @Tags        roles.admin
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce     application/pdf
// @Param       id     path  string true  "MongoID"
// @Param       format query string false "xlsx or pdf" default(xlsx)
// @Success     200
// @Failure     400 {object} res.Response{} "Format must be xlsx or pdf"
// @Failure     403 {object} res.Response{} "Not authorized"
// @Failure     404 {object} res.Response{} "Course not found"
// @Failure     500 {object} res.Response{} "Server error"
// @Security    ApiKeyAuth
// @Router      /{id}/students/export [get]
func (course *CourseController) ExportStudents(c *gin.Context) {
	idCourse := c.Param("id")
	format := c.DefaultQuery("format", services.ROSTER_XLSX)
	claims, ok := claimsOrAbort(c)
	if !ok {
		return
	}
	courseData, err := course.courseService.GetCourseForMutation(c.Request.Context(), idCourse, claims)
	if err != nil {
		abortWithErrorRes(c, err)
		return
	}
	var buf bytes.Buffer
	if err := course.courseService.ExportStudents(c.Request.Context(), courseData, format, &buf); err != nil {
		abortWithErrorRes(c, err)
		return
	}
	c.Header(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=students_%s.%s", courseData.ID.Hex(), format),
	)
	c.Data(http.StatusOK, services.RosterContentTypes[format], buf.Bytes())
}

func NewCourseController(courseService *services.CourseService) *CourseController {
	return &CourseController{
		courseService: courseService,
	}
}
