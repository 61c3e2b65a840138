package services

import "github.com/CPU-commits/Intranet_BCourses/models"

func CanCreateCourse(claims *Claims) bool {
	if claims == nil {
		return false
	}
	return claims.Role == models.TEACHER || claims.Role == models.ADMIN
}

// Owner or admin. Shared by update, delete and the roster export
func CanMutateCourse(course *models.Course, claims *Claims) bool {
	if course == nil || claims == nil {
		return false
	}
	if claims.Role == models.ADMIN {
		return true
	}
	idUser, err := claims.UserID()
	return err == nil && idUser == course.Teacher
}
