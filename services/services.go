package services

import (
	"encoding/json"

	"github.com/google/uuid"
)

// NATS subjects
const (
	COURSE_CREATED_SUBJECT    = "course_created"
	COURSE_UPDATED_SUBJECT    = "course_updated"
	COURSE_DELETED_SUBJECT    = "course_deleted"
	COURSE_REGISTERED_SUBJECT = "course_registered"
	STUDENT_COURSES_SUBJECT   = "get_student_courses"
	MESSAGES_SUBJECT          = "course_messages"
)

type EventPublisher interface {
	Publish(subject string, data []byte) error
}

func formatRequestToNestjsNats(data interface{}) ([]byte, error) {
	id, err := uuid.NewUUID()
	if err != nil {
		return nil, err
	}
	request := make(map[string]interface{})
	request["id"] = id.String()
	if data != nil {
		request["data"] = data
	}
	jsonMarshal, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}
	return jsonMarshal, nil
}
