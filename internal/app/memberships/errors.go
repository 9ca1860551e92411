package memberships

const (
	CodeValidation = "VALIDATION_ERROR"
	CodeNotFound   = "MEMBERSHIP_NOT_FOUND"
)

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

func notFoundError() *Error {
	return &Error{
		Status:  404,
		Code:    CodeNotFound,
		Message: "membership not found",
	}
}

func validationError(field string, message string) *Error {
	return &Error{
		Status:  422,
		Code:    CodeValidation,
		Message: "invalid " + field,
		Details: map[string]any{field: message},
	}
}
