package validation

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"devconnector/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerInput struct {
	Name     string `json:"name" validate:"required" msg:"Name is required"`
	Email    string `json:"email" validate:"required,email" msg:"Please include a valid email"`
	Password string `json:"password" validate:"min=6" msg:"Please enter a password with 6 or more characters"`
}

func TestStruct(t *testing.T) {
	t.Run("Valid input", func(t *testing.T) {
		assert.NoError(t, Struct(&registerInput{Name: "Ada", Email: "ada@example.com", Password: "secret"}))
	})

	t.Run("Every failure reported in field order", func(t *testing.T) {
		err := Struct(registerInput{Email: "nope", Password: "123"})
		require.Error(t, err)

		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.CodeValidation, appErr.Code)
		assert.Equal(t, []models.FieldError{
			{Param: "name", Msg: "Name is required"},
			{Param: "email", Msg: "Please include a valid email"},
			{Param: "password", Msg: "Please enter a password with 6 or more characters"},
		}, appErr.Fields)
	})
}

func TestSplitSkills(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"js, node , react", []string{"js", "node", "react"}},
		{"go,rust", []string{"go", "rust"}},
		{"  single  ", []string{"single"}},
		{"a,,b, ", []string{"a", "b"}},
		{"", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSkills(tt.in))
		})
	}
}

func TestSkillList_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    SkillList
		wantErr bool
	}{
		{"Comma string", `{"skills":"js, node , react"}`, SkillList{"js", "node", "react"}, false},
		{"Array", `{"skills":[" go ","rust",""]}`, SkillList{"go", "rust"}, false},
		{"Null", `{"skills":null}`, nil, false},
		{"Number", `{"skills":42}`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload struct {
				Skills SkillList `json:"skills"`
			}
			err := json.Unmarshal([]byte(tt.body), &payload)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, payload.Skills)
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"example.com", "https://example.com"},
		{"http://Example.com/", "https://example.com"},
		{"HTTPS://www.Example.com/Path/", "https://www.example.com/Path"},
		{"//cdn.example.com/a", "https://cdn.example.com/a"},
		{" twitter.com/ada ", "https://twitter.com/ada"},
		{"https://example.com?q=1", "https://example.com?q=1"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeURL(tt.in))
		})
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2020-01-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseDate("2021-06-01T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 6, 1, 8, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("15/01/2020")
	assert.Error(t, err)
	_, err = ParseDate("")
	assert.Error(t, err)
}
