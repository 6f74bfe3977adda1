package services

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type TestStruct struct {
	Title   string `validate:"required,max=10"`
	Content string `validate:"required"`
}

func TestValidationHelper_ValidateStruct(t *testing.T) {
	vh := NewValidationHelper()

	t.Run("valid struct", func(t *testing.T) {
		valid := TestStruct{Title: "Day 1", Content: "Hello"}

		err := vh.ValidateStruct(&valid)
		assert.NoError(t, err)
	})

	t.Run("invalid struct - missing required fields", func(t *testing.T) {
		invalid := TestStruct{}

		err := vh.ValidateStruct(&invalid)
		assert.Error(t, err)

		validationErrors, ok := err.(validator.ValidationErrors)
		assert.True(t, ok)
		assert.Len(t, validationErrors, 2)
	})

	t.Run("title too long", func(t *testing.T) {
		invalid := TestStruct{Title: "A much longer title", Content: "x"}

		err := vh.ValidateStruct(&invalid)
		assert.Error(t, err)

		validationErrors, ok := err.(validator.ValidationErrors)
		assert.True(t, ok)
		assert.Len(t, validationErrors, 1)
		assert.Equal(t, "max", validationErrors[0].Tag())
	})
}

func TestSendErrorResponse(t *testing.T) {
	t.Run("plain error", func(t *testing.T) {
		w := httptest.NewRecorder()

		SendErrorResponse(w, "Entry not found", http.StatusNotFound, nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response ErrorResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.False(t, response.Success)
		assert.Equal(t, "Entry not found", response.Error)
		assert.Nil(t, response.Details)
		assert.Contains(t, w.Body.String(), `"success":false`)
	})

	t.Run("with validation errors", func(t *testing.T) {
		vh := NewValidationHelper()
		verr := vh.ValidateStruct(&TestStruct{Content: "x"})

		w := httptest.NewRecorder()
		SendErrorResponse(w, "Title and content are required", http.StatusBadRequest, verr)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response ErrorResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "Title and content are required", response.Error)
		assert.Equal(t, "Field Validation Failed on 'required' tag", response.Details["Title"])
	})

	t.Run("non validation error adds no details", func(t *testing.T) {
		w := httptest.NewRecorder()
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, errors.New("unexpected EOF"))

		var response ErrorResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Nil(t, response.Details)
	})
}

func TestSendJSON(t *testing.T) {
	w := httptest.NewRecorder()

	SendJSON(w, http.StatusCreated, map[string]any{"success": true})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
}
