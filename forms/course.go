package forms

// Teacher and students are never read from the body
type CourseForm struct {
	Title       string  `json:"title" binding:"required,notblank" example:"Basic English"`
	Description string  `json:"description" example:"Learn basic English grammar and vocabulary"`
	Price       float64 `json:"price" example:"299"`
	Duration    string  `json:"duration" example:"3 months"`
	Level       string  `json:"level" example:"beginner"`
}

// Only the present fields are merged
type CourseUpdateForm struct {
	Title       *string  `json:"title" binding:"omitempty,notblank" example:"Business English"`
	Description *string  `json:"description" example:"English for professional environment"`
	Price       *float64 `json:"price" example:"499"`
	Duration    *string  `json:"duration" example:"6 months"`
	Level       *string  `json:"level" example:"intermediate"`
}
