package services

import (
	"strings"
	"testing"

	"github.com/CPU-commits/Intranet_BCourses/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCanCreateCourse(t *testing.T) {
	id := primitive.NewObjectID().Hex()

	assert.True(t, CanCreateCourse(&Claims{ID: id, Role: models.TEACHER}))
	assert.True(t, CanCreateCourse(&Claims{ID: id, Role: models.ADMIN}))
	assert.False(t, CanCreateCourse(&Claims{ID: id, Role: models.STUDENT}))
	assert.False(t, CanCreateCourse(&Claims{ID: id, Role: ""}))
	assert.False(t, CanCreateCourse(nil))
}

func TestCanMutateCourse(t *testing.T) {
	teacher := primitive.NewObjectID()
	course := &models.Course{
		ID:      primitive.NewObjectID(),
		Teacher: teacher,
	}

	tests := []struct {
		name   string
		claims *Claims
		want   bool
	}{
		{"owner", &Claims{ID: teacher.Hex(), Role: models.TEACHER}, true},
		{"owner uppercase id", &Claims{ID: strings.ToUpper(teacher.Hex()), Role: models.TEACHER}, true},
		{"malformed id", &Claims{ID: "not-an-id", Role: models.TEACHER}, false},
		{"admin", &Claims{ID: primitive.NewObjectID().Hex(), Role: models.ADMIN}, true},
		{"other teacher", &Claims{ID: primitive.NewObjectID().Hex(), Role: models.TEACHER}, false},
		{"student", &Claims{ID: primitive.NewObjectID().Hex(), Role: models.STUDENT}, false},
		{"empty id", &Claims{Role: models.TEACHER}, false},
		{"no claims", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanMutateCourse(course, tt.claims))
		})
	}
	assert.False(t, CanMutateCourse(nil, &Claims{Role: models.ADMIN}))
}
