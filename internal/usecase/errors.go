package usecase

import (
	"errors"
	"fmt"
)

// HTTPError はhandlerにそのまま返せる業務エラー。
// Fieldが入っている場合は {"<field>": {"message": ...}} の形で返す。
type HTTPError struct {
	Status  int
	Field   string
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

// フィールド単位のバリデーションエラー
func NewFieldHTTPError(status int, field string, message string) error {
	return &HTTPError{
		Status:  status,
		Field:   field,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}
