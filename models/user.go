package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const USERS_COLLECTION = "users"

// Roles
const (
	STUDENT = "student"
	TEACHER = "teacher"
	ADMIN   = "admin"
)

type SimpleUser struct {
	ID       primitive.ObjectID `json:"_id" bson:"_id" example:"63785424db1efbc237faecca"`
	Username string             `json:"username" bson:"username" example:"jdoe"`
}
