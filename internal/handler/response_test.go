package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestWriteError_MessageBody(t *testing.T) {
	c, rec := newTestContext(t)

	err := writeError(c, usecase.NewHTTPError(http.StatusBadRequest, "your basket is empty"))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message": "your basket is empty"}`, rec.Body.String())
}

func TestWriteError_FieldKeyedBody(t *testing.T) {
	c, rec := newTestContext(t)

	err := writeError(c, usecase.NewFieldHTTPError(
		http.StatusBadRequest, "discount", "your code is not correct"))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t,
		`{"discount": {"message": "your code is not correct"}}`,
		rec.Body.String())
}

func TestWriteError_UnknownError_500(t *testing.T) {
	c, rec := newTestContext(t)

	err := writeError(c, errors.New("boom"))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message": "internal error"}`, rec.Body.String())
}
