package smaps

import "github.com/CPU-commits/Intranet_BCourses/models"

type CoursesMap struct {
	Courses []models.CourseWithTeacher `json:"courses"`
}

type CourseMap struct {
	Course *models.CourseWithLookup `json:"course"`
}

type CourseMutatedMap struct {
	Course *models.Course `json:"course"`
}
