package res

type Response struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"body,omitempty"`
}

type ErrorRes struct {
	Err        error
	StatusCode int
}

func (e *ErrorRes) Error() string {
	return e.Err.Error()
}

func (e *ErrorRes) Unwrap() error {
	return e.Err
}
